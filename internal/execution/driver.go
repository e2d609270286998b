package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"suitectl/internal/domain"
	"suitectl/internal/parser"
	"suitectl/internal/storage"
)

var (
	// ErrNoSession is returned by Resume when the store holds no session.
	ErrNoSession = errors.New("no previous session found to resume")
	// ErrNothingToResume is returned by Resume when the latest session has no failures.
	ErrNothingToResume = errors.New("no failed tests in last session")
)

// Publisher consumes the documents of a finished invocation (chart, metrics, recordings).
type Publisher interface {
	Publish(report domain.RunReport)
}

// Observer follows the retry loop.
type Observer interface {
	Retry(attempt, budget, targets int)
	Finish()
}

// Options are the engine options shared by every invocation of one command.
type Options struct {
	Markers   string
	Keyword   string
	Parallel  int
	Retries   int
	ExtraArgs []string
	Env       []string
}

// Driver runs the engine, tracks failures across retries and persists sessions.
type Driver struct {
	engine     Engine
	store      storage.Store
	locator    parser.Locator
	rc         domain.RunContext
	publishers []Publisher
	observer   Observer
	logger     *slog.Logger
	now        func() time.Time
}

// NewDriver creates a Driver writing its documents below rc.Reports
func NewDriver(engine Engine, store storage.Store, locator parser.Locator, rc domain.RunContext, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		engine:  engine,
		store:   store,
		locator: locator,
		rc:      rc,
		logger:  logger,
		now:     time.Now,
	}
}

// AddPublisher registers a publisher run after every invocation
func (d *Driver) AddPublisher(p Publisher) {
	d.publishers = append(d.publishers, p)
}

// SetObserver sets the retry observer
func (d *Driver) SetObserver(o Observer) {
	d.observer = o
}

// Run executes targets, retries the failing identities up to opts.Retries
// times and publishes the initial report.
func (d *Driver) Run(ctx context.Context, targets []string, opts Options) (domain.RunReport, error) {
	runID := storage.NewRunID(d.now())
	report := domain.RunReport{
		RunID:       runID,
		Title:       "Run " + runID,
		ReportPath:  filepath.Join(d.rc.Reports, "report_"+runID+".html"),
		ResultsPath: filepath.Join(d.rc.Reports, "report_"+runID+".xml"),
		ChartPath:   filepath.Join(d.rc.Reports, "chart_"+runID+".pdf"),
		Env:         d.environment(),
	}

	inv := d.invocation(targets, opts, report.ReportPath, report.ResultsPath)
	inv.Markers = opts.Markers
	inv.Keyword = opts.Keyword

	exitCode, duration, err := d.engine.Execute(ctx, inv)
	if err != nil {
		return report, err
	}

	summary := d.parse(report.ResultsPath)
	failed := parser.FailedIdentities(summary, d.rc.Root, d.locator)

	session := &domain.RunSession{
		RunID:         runID,
		CreatedAt:     d.now().UTC(),
		Stats:         summary,
		FailedNodeIDs: domain.Strings(failed),
		Duration:      duration.Seconds(),
		Env:           report.Env,
		ExitCode:      exitCode,
		ReportPath:    report.ReportPath,
		ResultsPath:   report.ResultsPath,
	}
	d.save(session)

	report.Stats = summary
	report.Failed = failed
	report.Duration = duration.Seconds()

	exitCode, attempts, err := d.retry(ctx, session, failed, exitCode, opts)
	report.ExitCode = exitCode
	report.Attempts = attempts
	report.Remaining = session.FailedIdentities()

	// The initial documents are complete even when a retry could not run
	d.publish(report)
	return report, err
}

// retry re-invokes the failing set until it is empty or the budget is spent.
// It returns the exit status of the last invocation.
func (d *Driver) retry(ctx context.Context, session *domain.RunSession, failed []domain.TestIdentity, exitCode int, opts Options) (int, int, error) {
	budget := opts.Retries
	attempt := 0
	if d.observer != nil {
		defer d.observer.Finish()
	}

	for budget > 0 && len(failed) > 0 {
		if ctx.Err() != nil {
			d.logger.Warn("retries interrupted", "completed", attempt, "remaining", budget, "error", ctx.Err())
			break
		}
		attempt++
		if d.observer != nil {
			d.observer.Retry(attempt, opts.Retries, len(failed))
		}
		d.logger.Info("retrying failed tests", "attempt", attempt, "tests", len(failed))

		stem := fmt.Sprintf("retry_%s_%d", session.RunID, attempt)
		reportPath := filepath.Join(d.rc.Reports, stem+".html")
		resultsPath := filepath.Join(d.rc.Reports, stem+".xml")

		// Markers and keyword are not reapplied: the targets are exact identities
		inv := d.invocation(domain.Strings(failed), opts, reportPath, resultsPath)
		code, _, err := d.engine.Execute(ctx, inv)
		if err != nil {
			return exitCode, attempt, err
		}
		exitCode = code

		budget--
		if exists(resultsPath) {
			summary := d.parse(resultsPath)
			failed = parser.FailedIdentities(summary, d.rc.Root, d.locator)
			session.RecordAttempt(attempt, summary, failed, exitCode)
		} else {
			// No retries entry: an empty summary would read as an attempt that ran nothing
			d.logger.Warn("retry produced no results, keeping failed set", "attempt", attempt, "results", resultsPath)
			session.ExitCode = exitCode
		}
		d.save(session)
	}

	return exitCode, attempt, nil
}

// Resume re-invokes the failing set of the latest session into
// rerun_<session>.{xml,html}. The stored session is not modified.
func (d *Driver) Resume(ctx context.Context, opts Options) (domain.RunReport, error) {
	entry := d.store.LoadLatest()
	if entry == nil {
		return domain.RunReport{}, ErrNoSession
	}
	failed := entry.Session.FailedIdentities()
	if len(failed) == 0 {
		return domain.RunReport{}, ErrNothingToResume
	}

	stem := entry.Stem()
	report := domain.RunReport{
		RunID:       entry.Session.RunID,
		Title:       "Retry " + stem,
		ReportPath:  filepath.Join(d.rc.Reports, "rerun_"+stem+".html"),
		ResultsPath: filepath.Join(d.rc.Reports, "rerun_"+stem+".xml"),
		ChartPath:   filepath.Join(d.rc.Reports, "chart_rerun_"+stem+".pdf"),
		Failed:      failed,
		Env:         d.environment(),
	}
	d.logger.Info("resuming session", "session", entry.Path, "tests", len(failed))

	inv := d.invocation(domain.Strings(failed), opts, report.ReportPath, report.ResultsPath)
	exitCode, duration, err := d.engine.Execute(ctx, inv)
	if err != nil {
		return report, err
	}

	report.Stats = d.parse(report.ResultsPath)
	report.Remaining = parser.FailedIdentities(report.Stats, d.rc.Root, d.locator)
	report.ExitCode = exitCode
	report.Attempts = 1
	report.Duration = duration.Seconds()

	d.publish(report)
	return report, nil
}

func (d *Driver) invocation(targets []string, opts Options, reportPath, resultsPath string) Invocation {
	return Invocation{
		Targets:     targets,
		Parallel:    opts.Parallel,
		ReportPath:  reportPath,
		ResultsPath: resultsPath,
		ExtraArgs:   opts.ExtraArgs,
		Env:         opts.Env,
		Dir:         d.rc.Root,
	}
}

// parse treats an unreadable or broken results document as empty.
func (d *Driver) parse(path string) domain.RunSummary {
	summary, err := parser.Parse(path)
	if err != nil {
		d.logger.Error("cannot parse results", "path", path, "error", err)
		return domain.RunSummary{}
	}
	return summary
}

func (d *Driver) save(session *domain.RunSession) {
	if err := d.store.Save(session); err != nil {
		d.logger.Error("cannot save session", "run_id", session.RunID, "error", err)
	}
}

func (d *Driver) publish(report domain.RunReport) {
	for _, p := range d.publishers {
		p.Publish(report)
	}
}

func (d *Driver) environment() domain.Environment {
	environment := domain.Environment{
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Runtime:  runtime.Version(),
	}
	if v, ok := d.engine.(Versioner); ok {
		engineVersion, err := v.Version()
		if err != nil {
			d.logger.Warn("cannot probe engine version", "error", err)
		} else {
			environment.EngineVersion = engineVersion
		}
	}
	return environment
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
