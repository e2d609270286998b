package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"suitectl/internal/cli"
	"suitectl/internal/discovery"
	"suitectl/internal/storage"
	"suitectl/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	viper  *viper.Viper
	flags  *cli.Flags
	filter *discovery.Filter
}

// NewListCommand creates a new ListCommand
func NewListCommand(v *viper.Viper, flags *cli.Flags) *ListCommand {
	return &ListCommand{
		viper:  v,
		flags:  flags,
		filter: discovery.NewFilter(),
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig(lc.viper, cmd.Flags(), lc.flags)
	if err != nil {
		return err
	}

	scanner := discovery.NewScanner(cfg.PathsToIgnore, cfg.Pattern)
	tests, err := scanner.Targets(cfg.GetTestPath())
	if err != nil {
		return err
	}

	// Filter tests
	tests = lc.filter.FilterByName(tests, cfg.Flags.NameFilter)

	if len(tests) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	rc := cfg.RunContext()

	// Modules still failing in the latest session are marked
	var failedModules map[string]struct{}
	if entry := storage.NewJSONStorage(rc.Sessions, consoleLogger()).LoadLatest(); entry != nil {
		failedModules = make(map[string]struct{})
		for _, id := range entry.Session.FailedIdentities() {
			failedModules[id.ModulePath()] = struct{}{}
		}
	}

	formatter := ui.NewFormatter(cmd.OutOrStdout(), rc.Root, discovery.NewParser())
	formatter.PrintTestList(tests, cfg.Flags.TestCases, failedModules)
	return nil
}
