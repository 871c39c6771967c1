package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// UpgradeController handles the "upgrade" subcommand.
type UpgradeController struct {
	command commands.Upgrade
}

// NewUpgradeController creates a new UpgradeController.
func NewUpgradeController(command commands.Upgrade) *UpgradeController {
	return &UpgradeController{command: command}
}

// GetBind returns the Cobra command metadata for the upgrade controller.
func (it *UpgradeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "upgrade",
		Short: "Upgrade external dependencies to their latest versions",
		Long: `Query the registry for every external dependency, classify the available
upgrades and rewrite the manifests, preserving each declared range prefix.
When upgrade.auto_changeset is set the touched packages are folded into the
branch changeset. Use --dry-run to inspect the plan first.`,
	}
}

// Execute runs the upgrade.
func (it *UpgradeController) Execute(cmd *cobra.Command, _ []string) {
	settings, root, err := loadSettings(cmd)
	if err != nil {
		fail(err)
		return
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if err := it.command.Execute(cmd.Context(), settings, commands.UpgradeOptions{
		Root:   root,
		DryRun: dryRun,
	}); err != nil {
		fail(err)
	}
}

// AddFlags adds the upgrade-specific flags to the given Cobra command.
func (it *UpgradeController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Show the upgrade plan without writing anything")
}
