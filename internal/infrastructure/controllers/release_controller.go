package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// ReleaseController handles the "release" subcommand.
type ReleaseController struct {
	command commands.Release
}

// NewReleaseController creates a new ReleaseController.
func NewReleaseController(command commands.Release) *ReleaseController {
	return &ReleaseController{command: command}
}

// GetBind returns the Cobra command metadata for the release controller.
func (it *ReleaseController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "release",
		Short: "Apply the pending changeset",
		Long: `Compute the version plan for the current branch's changeset, rewrite the
manifests, archive the changeset and tag the released packages.

On branches outside version.release_branches the run writes snapshot
versions instead: no archive, no tags, and the changeset stays pending.
Use --dry-run to inspect the plan without touching any file.`,
	}
}

// Execute runs the release.
func (it *ReleaseController) Execute(cmd *cobra.Command, _ []string) {
	settings, root, err := loadSettings(cmd)
	if err != nil {
		fail(err)
		return
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	snapshot, _ := cmd.Flags().GetBool("snapshot")

	if err := it.command.Execute(cmd.Context(), settings, commands.ReleaseOptions{
		Root:     root,
		DryRun:   dryRun,
		Snapshot: snapshot,
	}); err != nil {
		fail(err)
	}
}

// AddFlags adds the release-specific flags to the given Cobra command.
func (it *ReleaseController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Show the version plan without writing anything")
	cmd.Flags().Bool("snapshot", false, "Force snapshot versions even on a release branch")
}
