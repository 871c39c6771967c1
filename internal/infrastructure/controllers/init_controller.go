package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// InitController handles the "init" subcommand.
type InitController struct {
	command commands.Init
}

// NewInitController creates a new InitController.
func NewInitController(command commands.Init) *InitController {
	return &InitController{command: command}
}

// GetBind returns the Cobra command metadata for the init controller.
func (it *InitController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "init",
		Short: "Scaffold the relforge configuration",
		Long: `Write a commented repo.config.yaml with the built-in defaults and
create the changeset directories. Refuses to overwrite an existing
configuration file.`,
	}
}

// Execute scaffolds the configuration. Init deliberately skips loading the
// settings: there is nothing to load yet.
func (it *InitController) Execute(cmd *cobra.Command, _ []string) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	root, _ := cmd.Flags().GetString("root")

	if err := it.command.Execute(cmd.Context(), commands.InitOptions{Root: root}); err != nil {
		fail(err)
	}
}
