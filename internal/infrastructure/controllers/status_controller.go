package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// StatusController handles the "status" subcommand.
type StatusController struct {
	command commands.Status
}

// NewStatusController creates a new StatusController.
func NewStatusController(command commands.Status) *StatusController {
	return &StatusController{command: command}
}

// GetBind returns the Cobra command metadata for the status controller.
func (it *StatusController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "status",
		Short: "Show the workspace and changeset state",
		Long: `Print the workspace classification, its packages with their versions,
any dependency cycles, and the pending changeset of the current branch.`,
	}
}

// Execute prints the status report.
func (it *StatusController) Execute(cmd *cobra.Command, _ []string) {
	settings, root, err := loadSettings(cmd)
	if err != nil {
		fail(err)
		return
	}

	if err := it.command.Execute(cmd.Context(), settings, commands.StatusOptions{Root: root}); err != nil {
		fail(err)
	}
}
