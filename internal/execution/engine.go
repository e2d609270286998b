package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	version "github.com/hashicorp/go-version"
	shellquote "github.com/kballard/go-shellquote"
)

// Engine runs one test engine invocation to completion
type Engine interface {
	// Execute returns the exit status of the engine. A non-zero status is not an
	// error; only failing to start the engine is.
	Execute(ctx context.Context, inv Invocation) (int, time.Duration, error)
}

// Versioner is implemented by engines that can report their version
type Versioner interface {
	Version() (string, error)
}

// Invocation is everything one engine call needs
type Invocation struct {
	Targets     []string
	Markers     string
	Keyword     string
	Parallel    int
	ReportPath  string
	ResultsPath string
	ExtraArgs   []string
	Env         []string
	Dir         string
}

// Args builds the engine argument list. Report and results outputs are always requested.
func (inv Invocation) Args() []string {
	var args []string
	if inv.Parallel > 0 {
		args = append(args, "-n", strconv.Itoa(inv.Parallel))
	}
	args = append(args, inv.Targets...)
	if inv.Markers != "" {
		args = append(args, "-m", inv.Markers)
	}
	if inv.Keyword != "" {
		args = append(args, "-k", inv.Keyword)
	}
	args = append(args, inv.ExtraArgs...)
	args = append(args,
		"--html="+inv.ReportPath,
		"--self-contained-html",
		"--junitxml="+inv.ResultsPath,
		"-o", "junit_family=xunit1",
	)
	return args
}

// SplitArgs splits a shell quoted argument string, e.g. `--maxfail=2 --browser "firefox"`.
func SplitArgs(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	args, err := shellquote.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid engine args %q: %w", raw, err)
	}
	return args, nil
}

// CommandEngine runs the engine binary as a child process
type CommandEngine struct {
	binary  string
	factory command.Factory
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

// NewCommandEngine creates an engine that streams the child output to stdout and stderr
func NewCommandEngine(binary string, stdout, stderr io.Writer, logger *slog.Logger) *CommandEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandEngine{
		binary:  binary,
		factory: command.NewFactory(env.NewRepository()),
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger,
	}
}

// Execute runs the engine and measures its wall clock
func (e *CommandEngine) Execute(ctx context.Context, inv Invocation) (int, time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return -1, 0, fmt.Errorf("engine not started: %w", err)
	}

	cmd := e.factory.Create(e.binary, inv.Args(), &command.Opts{
		Stdout: e.stdout,
		Stderr: e.stderr,
		Env:    inv.Env,
		Dir:    inv.Dir,
	})
	e.logger.Info("running engine", "command", cmd.PrintableCommandArgs())

	start := time.Now()
	exitCode, err := cmd.RunAndReturnExitCode()
	duration := time.Since(start)

	// A process that ran and died from a signal reports -1 with an exit error;
	// only an error without a process state means the engine never started.
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return exitCode, duration, fmt.Errorf("run %s: %w", e.binary, err)
	}
	e.logger.Info("engine finished", "exit_code", exitCode, "duration", duration)
	return exitCode, duration, nil
}

var versionPattern = regexp.MustCompile(`\d+(\.\d+)+(\S*)`)

// Version probes "<binary> --version"
func (e *CommandEngine) Version() (string, error) {
	cmd := e.factory.Create(e.binary, []string{"--version"}, nil)
	out, err := cmd.RunAndReturnTrimmedCombinedOutput()
	if err != nil {
		return "", err
	}
	return ParseVersion(out)
}

// ParseVersion extracts a semantic version from engine banner output, e.g. "pytest 8.2.1".
func ParseVersion(out string) (string, error) {
	raw := versionPattern.FindString(out)
	if raw == "" {
		return "", fmt.Errorf("no version in %q", out)
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}
