package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// ChangesetCreateController handles the "changeset create" subcommand.
type ChangesetCreateController struct {
	command commands.ChangesetCreate
}

// NewChangesetCreateController creates a new ChangesetCreateController.
func NewChangesetCreateController(command commands.ChangesetCreate) *ChangesetCreateController {
	return &ChangesetCreateController{command: command}
}

// GetBind returns the Cobra command metadata for the create controller.
func (it *ChangesetCreateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "create",
		Short: "Create a changeset for the current branch",
		Long: `Create the pending changeset keyed by the current git branch.

The changeset records which packages changed and how their versions move on
the next release. Packages, commits and environments can be amended later
with "changeset add".`,
		Group: "changeset",
	}
}

// Execute creates the changeset.
func (it *ChangesetCreateController) Execute(cmd *cobra.Command, _ []string) {
	settings, root, err := loadSettings(cmd)
	if err != nil {
		fail(err)
		return
	}

	bump, _ := cmd.Flags().GetString("bump")
	packages, _ := cmd.Flags().GetStringSlice("package")
	environments, _ := cmd.Flags().GetStringSlice("env")

	if err := it.command.Execute(cmd.Context(), settings, commands.ChangesetCreateOptions{
		Root:         root,
		Bump:         bump,
		Packages:     packages,
		Environments: environments,
	}); err != nil {
		fail(err)
	}
}

// AddFlags adds the create-specific flags to the given Cobra command.
func (it *ChangesetCreateController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("bump", "b", "patch", "Version bump for the release (major, minor, patch, none)")
	cmd.Flags().StringSliceP("package", "p", nil, "Package to include (repeatable)")
	cmd.Flags().StringSliceP("env", "e", nil, "Target environment (repeatable)")
}
