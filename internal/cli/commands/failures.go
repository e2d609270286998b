package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"suitectl/internal/artifacts"
	"suitectl/internal/cli"
	"suitectl/internal/storage"
	"suitectl/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	viper *viper.Viper
	flags *cli.Flags
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(v *viper.Viper, flags *cli.Flags) *FailuresCommand {
	return &FailuresCommand{viper: v, flags: flags}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig(fc.viper, cmd.Flags(), fc.flags)
	if err != nil {
		return err
	}

	rc := cfg.RunContext()
	logger := consoleLogger()

	entry := storage.NewJSONStorage(rc.Sessions, logger).LoadLatest()
	if entry == nil {
		color.Yellow("No previous session found")
		return nil
	}
	if len(entry.Session.Stats.FailedOutcomes()) == 0 {
		color.Green("No failures in the latest session")
		return nil
	}

	recordings := artifacts.NewCorrelator(rc.Root, logger).Correlate(rc.Videos)

	var viewer ui.Viewer = ui.NewFailuresViewer(rc.Root)
	return viewer.View(entry.Session, recordings)
}
