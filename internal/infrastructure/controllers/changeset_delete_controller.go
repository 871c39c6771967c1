package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// ChangesetDeleteController handles the "changeset delete" subcommand.
type ChangesetDeleteController struct {
	command commands.ChangesetDelete
}

// NewChangesetDeleteController creates a new ChangesetDeleteController.
func NewChangesetDeleteController(command commands.ChangesetDelete) *ChangesetDeleteController {
	return &ChangesetDeleteController{command: command}
}

// GetBind returns the Cobra command metadata for the delete controller.
func (it *ChangesetDeleteController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "delete",
		Short: "Discard a pending changeset",
		Long: `Remove the pending changeset of the current branch (or of --branch)
without releasing it. Deleting a branch without one is a no-op.`,
		Group: "changeset",
	}
}

// Execute deletes the changeset.
func (it *ChangesetDeleteController) Execute(cmd *cobra.Command, _ []string) {
	settings, root, err := loadSettings(cmd)
	if err != nil {
		fail(err)
		return
	}

	branch, _ := cmd.Flags().GetString("branch")

	if err := it.command.Execute(cmd.Context(), settings, commands.ChangesetDeleteOptions{
		Root:   root,
		Branch: branch,
	}); err != nil {
		fail(err)
	}
}

// AddFlags adds the delete-specific flags to the given Cobra command.
func (it *ChangesetDeleteController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("branch", "", "Branch whose changeset to delete (default: current branch)")
}
