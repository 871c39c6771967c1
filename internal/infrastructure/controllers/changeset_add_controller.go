package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// ChangesetAddController handles the "changeset add" subcommand.
type ChangesetAddController struct {
	command commands.ChangesetAdd
}

// NewChangesetAddController creates a new ChangesetAddController.
func NewChangesetAddController(command commands.ChangesetAdd) *ChangesetAddController {
	return &ChangesetAddController{command: command}
}

// GetBind returns the Cobra command metadata for the add controller.
func (it *ChangesetAddController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "add",
		Short: "Amend the pending changeset",
		Long: `Add packages or commits to the pending changeset of the current branch,
raise or lower its bump, or replace its target environments.`,
		Group: "changeset",
	}
}

// Execute amends the changeset. The environment set is only replaced when
// the flag was given, so "add -p pkg" keeps the environments untouched.
func (it *ChangesetAddController) Execute(cmd *cobra.Command, _ []string) {
	settings, root, err := loadSettings(cmd)
	if err != nil {
		fail(err)
		return
	}

	bump, _ := cmd.Flags().GetString("bump")
	packages, _ := cmd.Flags().GetStringSlice("package")
	commits, _ := cmd.Flags().GetStringSlice("commit")
	var environments []string
	if cmd.Flags().Changed("env") {
		environments, _ = cmd.Flags().GetStringSlice("env")
		if environments == nil {
			environments = []string{}
		}
	}

	if err := it.command.Execute(cmd.Context(), settings, commands.ChangesetAddOptions{
		Root:         root,
		Packages:     packages,
		Commits:      commits,
		Bump:         bump,
		Environments: environments,
	}); err != nil {
		fail(err)
	}
}

// AddFlags adds the add-specific flags to the given Cobra command.
func (it *ChangesetAddController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("bump", "b", "", "New version bump (major, minor, patch, none)")
	cmd.Flags().StringSliceP("package", "p", nil, "Package to add (repeatable)")
	cmd.Flags().StringSlice("commit", nil, "Commit hash to record (repeatable)")
	cmd.Flags().StringSliceP("env", "e", nil, "Replace the target environments (repeatable)")
}
