package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"suitectl/internal/cli"
	"suitectl/internal/discovery"
	"suitectl/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	viper  *viper.Viper
	flags  *cli.Flags
	filter *discovery.Filter
	resume *ResumeCommand
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(v *viper.Viper, flags *cli.Flags, resume *ResumeCommand) *RunCommand {
	return &RunCommand{
		viper:  v,
		flags:  flags,
		filter: discovery.NewFilter(),
		resume: resume,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig(rc.viper, cmd.Flags(), rc.flags)
	if err != nil {
		return err
	}

	if cfg.Flags.Resume {
		return rc.resume.run(cmd, cfg)
	}

	// Discover tests
	scanner := discovery.NewScanner(cfg.PathsToIgnore, cfg.Pattern)
	tests, err := scanner.Targets(cfg.GetTestPath())
	if err != nil {
		return err
	}

	// Filter tests
	tests = rc.filter.FilterByName(tests, cfg.Flags.NameFilter)

	if len(tests) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	env, err := prepare(cfg, cfg.Clear)
	if err != nil {
		return err
	}
	defer env.Close()

	driver, opts, err := env.driver(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	env.logger.Info("starting run", "targets", len(tests), "retries", opts.Retries, "parallel", opts.Parallel)
	report, err := driver.Run(cmd.Context(), relativeTargets(env.rc.Root, tests), opts)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	ui.NewFormatter(cmd.OutOrStdout(), env.rc.Root, discovery.NewParser()).PrintRunSummary(report)
	if !report.Succeeded() {
		return ErrTestsFailed
	}
	return nil
}
