package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"suitectl/internal/cli"
	"suitectl/internal/config"
	"suitectl/internal/discovery"
	"suitectl/internal/execution"
	"suitectl/internal/ui"
)

// ResumeCommand handles the resume command
type ResumeCommand struct {
	viper *viper.Viper
	flags *cli.Flags
}

// NewResumeCommand creates a new ResumeCommand
func NewResumeCommand(v *viper.Viper, flags *cli.Flags) *ResumeCommand {
	return &ResumeCommand{viper: v, flags: flags}
}

// Execute runs the command
func (rc *ResumeCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig(rc.viper, cmd.Flags(), rc.flags)
	if err != nil {
		return err
	}
	return rc.run(cmd, cfg)
}

// run reruns the latest failing set. Outputs of the resumed run are kept so
// its report and recordings stay next to the rerun documents.
func (rc *ResumeCommand) run(cmd *cobra.Command, cfg *config.Config) error {
	env, err := prepare(cfg, false)
	if err != nil {
		return err
	}
	defer env.Close()

	driver, opts, err := env.driver(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	report, err := driver.Resume(cmd.Context(), opts)
	switch {
	case errors.Is(err, execution.ErrNoSession):
		color.Yellow("No previous session found to resume")
		return nil
	case errors.Is(err, execution.ErrNothingToResume):
		color.Green("No failed tests in the latest session")
		return nil
	case err != nil:
		return fmt.Errorf("resume failed: %w", err)
	}

	ui.NewFormatter(cmd.OutOrStdout(), env.rc.Root, discovery.NewParser()).PrintRunSummary(report)
	if !report.Succeeded() {
		return ErrTestsFailed
	}
	return nil
}
