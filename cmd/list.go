package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/vimg/internal/app"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/presentation"
)

var (
	listMode   string
	listHidden bool
	listJSON   bool
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the available commands",
	Long: `List the commands available in each mode.

Commands of the global group are available in image, library and
thumbnail mode and are listed once.`,
	Example: `  vimg commands
  vimg commands --mode library
  vimg commands --json`,
	RunE: runCommands,
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the status bar modules",
	Long:  `List the {name} tokens that can be used in the status bar texts.`,
	RunE:  runModules,
}

func init() {
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(modulesCmd)

	commandsCmd.Flags().StringVarP(&listMode, "mode", "m", "",
		"only list commands of this mode (global, image, library, thumbnail, command, manipulate)")
	commandsCmd.Flags().BoolVar(&listHidden, "hidden", false, "include hidden commands")
	commandsCmd.Flags().BoolVar(&listJSON, "json", false, "output JSON")
	modulesCmd.Flags().BoolVar(&listJSON, "json", false, "output JSON")
}

// inspect builds an application that only registers commands and modules.
func inspect() (*app.Model, error) {
	return app.New(app.Options{Config: cfg, Inspect: true})
}

func runCommands(cmd *cobra.Command, _ []string) error {
	modes := mode.All()
	if listMode != "" {
		m, err := mode.ByName(listMode)
		if err != nil {
			return fmt.Errorf("invalid --mode: %w", err)
		}
		modes = []mode.Mode{m}
	}

	model, err := inspect()
	if err != nil {
		return err
	}
	defer func() { _ = model.Close() }()

	dtos := presentation.FromRegistry(model.Commands(), modes, listHidden)
	return presentation.NewFormatter(cmd.OutOrStdout(), listJSON).FormatCommands(dtos)
}

func runModules(cmd *cobra.Command, _ []string) error {
	model, err := inspect()
	if err != nil {
		return err
	}
	defer func() { _ = model.Close() }()

	dtos := presentation.FromModules(model.Status().Modules())
	return presentation.NewFormatter(cmd.OutOrStdout(), listJSON).FormatModules(dtos)
}
