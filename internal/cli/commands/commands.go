package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"suitectl/internal/cli"
	"suitectl/internal/config"
)

// ErrTestsFailed is returned when the final engine attempt exited non-zero.
// The summary has already been printed, so callers only set the exit status.
var ErrTestsFailed = errors.New("tests failed")

// NewRootCommand builds the suitectl command tree around v
func NewRootCommand(version string, v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "suitectl",
		Short:         "pytest run orchestrator",
		Long:          `Runs pytest suites, retries the failing tests, keeps a session per run and merges recorded videos into the HTML report.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	NewCommands(v, &flags).Register(rootCmd, &flags)
	return rootCmd
}

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	Resume   *ResumeCommand
	List     *ListCommand
	Failures *FailuresCommand
}

// NewCommands creates all commands sharing one viper instance and flag set
func NewCommands(v *viper.Viper, flags *cli.Flags) *Commands {
	resume := NewResumeCommand(v, flags)
	return &Commands{
		Run:      NewRunCommand(v, flags, resume),
		Resume:   resume,
		List:     NewListCommand(v, flags),
		Failures: NewFailuresCommand(v, flags),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().StringVarP(&flags.Path, "path", "p", "", "Test file or folder where test detection should start")
	rootCmd.PersistentFlags().StringVar(&flags.Pattern, "pattern", config.DefaultPattern, "File name pattern of test modules")
	rootCmd.PersistentFlags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., '*login*' or 'test_cart*.py')")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Write debug entries to the log file")

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run pytest and retry failures",
		Long:  "Discover test modules, run them through pytest, retry the failing tests and merge recordings into the HTML report",
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().IntVarP(&flags.Parallel, "parallel", "n", config.DefaultParallel, "Number of pytest-xdist workers (0 runs serially)")
	runCmd.Flags().IntVarP(&flags.Retries, "retries", "r", config.DefaultRetries, "Number of times the failing tests are retried")
	runCmd.Flags().BoolVar(&flags.Clear, "clear", config.DefaultClear, "Clear reports, logs, videos and screenshots before running")
	runCmd.Flags().BoolVar(&flags.NoClear, "no-clear", false, "Keep the outputs of previous runs")
	runCmd.Flags().BoolVar(&flags.Resume, "resume", false, "Rerun the failing tests of the latest session instead of discovering tests")
	runCmd.Flags().StringVarP(&flags.Markers, "markers", "m", "", "Only run tests matching the given mark expression")
	runCmd.Flags().StringVarP(&flags.KExpr, "kexpr", "k", "", "Only run tests matching the given keyword expression")
	runCmd.Flags().StringVar(&flags.EngineArgs, "engine-args", "", "Extra arguments passed to pytest (shell quoted)")
	rootCmd.AddCommand(runCmd)

	// Resume command
	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Rerun the failures of the latest session",
		Long:  "Rerun exactly the tests that were still failing at the end of the latest session and write rerun_<session> reports",
		RunE:  c.Resume.Execute,
	}
	resumeCmd.Flags().IntVarP(&flags.Parallel, "parallel", "n", config.DefaultParallel, "Number of pytest-xdist workers (0 runs serially)")
	resumeCmd.Flags().StringVar(&flags.EngineArgs, "engine-args", "", "Extra arguments passed to pytest (shell quoted)")
	rootCmd.AddCommand(resumeCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Scan and list all test modules without executing them. Modules that failed in the latest session are marked with [F]",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases of every module")
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View test failures interactively",
		Long:  "Display the failures of the latest session with their retry history and recordings",
		RunE:  c.Failures.Execute,
	}
	rootCmd.AddCommand(failuresCmd)
}
