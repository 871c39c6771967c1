package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// ChangesetListController handles the "changeset list" subcommand.
type ChangesetListController struct {
	command commands.ChangesetList
}

// NewChangesetListController creates a new ChangesetListController.
func NewChangesetListController(command commands.ChangesetList) *ChangesetListController {
	return &ChangesetListController{command: command}
}

// GetBind returns the Cobra command metadata for the list controller.
func (it *ChangesetListController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "list",
		Short: "List pending or archived changesets",
		Long: `List the pending changesets, or the release archive with --archived:
who applied each changeset, when, and the versions it produced.`,
		Group: "changeset",
	}
}

// Execute lists the requested partition.
func (it *ChangesetListController) Execute(cmd *cobra.Command, _ []string) {
	settings, root, err := loadSettings(cmd)
	if err != nil {
		fail(err)
		return
	}

	archived, _ := cmd.Flags().GetBool("archived")

	if err := it.command.Execute(cmd.Context(), settings, commands.ChangesetListOptions{
		Root:     root,
		Archived: archived,
	}); err != nil {
		fail(err)
	}
}

// AddFlags adds the list-specific flags to the given Cobra command.
func (it *ChangesetListController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("archived", false, "List the release archive instead of the pending changesets")
}
