package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"suitectl/internal/config"
	"suitectl/internal/discovery"
	"suitectl/internal/domain"
	"suitectl/internal/execution"
	"suitectl/internal/logging"
	"suitectl/internal/metrics"
	"suitectl/internal/report"
	"suitectl/internal/storage"
	"suitectl/internal/ui"
	"suitectl/internal/workspace"
)

// environment is the wired state of one engine-driving command
type environment struct {
	cfg    *config.Config
	rc     domain.RunContext
	logger *slog.Logger
	closer io.Closer
}

// prepare lays out the output directories, clearing them first when clear is
// set, and only then opens the log file below logs/.
func prepare(cfg *config.Config, clear bool) (*environment, error) {
	rc := cfg.RunContext()

	ws := workspace.New(rc, logging.New(os.Stderr, slog.LevelWarn))
	if err := ws.Prepare(clear); err != nil {
		return nil, err
	}

	logger, closer := logging.Configure(cfg.Log, cfg.GetLogPath(), cfg.Flags.Verbose)
	logger.Debug("workspace ready", "root", rc.Root, "cleared", clear)
	return &environment{cfg: cfg, rc: rc, logger: logger, closer: closer}, nil
}

func (e *environment) Close() {
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// driver wires the engine, session store, publishers and retry progress
func (e *environment) driver(stdout, stderr io.Writer) (*execution.Driver, execution.Options, error) {
	extra, err := execution.SplitArgs(e.cfg.EngineArgs)
	if err != nil {
		return nil, execution.Options{}, fmt.Errorf("invalid engine args: %w", err)
	}
	env, err := e.cfg.EngineEnv()
	if err != nil {
		return nil, execution.Options{}, err
	}

	engine := execution.NewCommandEngine(e.cfg.Engine, stdout, stderr, e.logger)
	store := storage.NewJSONStorage(e.rc.Sessions, e.logger)
	resolver := discovery.NewResolver(e.rc.Root, discovery.NewScanner(e.cfg.PathsToIgnore, e.cfg.Pattern))

	d := execution.NewDriver(engine, store, resolver, e.rc, e.logger)
	d.AddPublisher(report.NewPublisher(e.rc, e.logger))
	d.AddPublisher(metrics.NewExporter(filepath.Join(e.rc.Reports, metrics.TextfileName), e.logger))
	d.SetObserver(ui.NewRetryProgressTo(stderr))

	opts := execution.Options{
		Markers:   e.cfg.Flags.Markers,
		Keyword:   e.cfg.Flags.KExpr,
		Parallel:  e.cfg.Parallel,
		Retries:   e.cfg.Retries,
		ExtraArgs: extra,
		Env:       env,
	}
	return d, opts, nil
}

// relativeTargets passes targets below root to the engine as root-relative paths
func relativeTargets(root string, targets []string) []string {
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		abs, err := filepath.Abs(target)
		if err != nil {
			out = append(out, target)
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			out = append(out, abs)
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

// consoleLogger is used by commands that never start the engine
func consoleLogger() *slog.Logger {
	return logging.New(os.Stderr, slog.LevelWarn)
}
