package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// AuditController handles the "audit" subcommand.
type AuditController struct {
	command commands.Audit
}

// NewAuditController creates a new AuditController.
func NewAuditController(command commands.Audit) *AuditController {
	return &AuditController{command: command}
}

// GetBind returns the Cobra command metadata for the audit controller.
func (it *AuditController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "audit",
		Short: "Audit the workspace health",
		Long: `Run the read-only health passes: dependency cycles, available upgrades
and deprecations, unreleased breaking changes, and internal version drift.
Findings roll up into a weighted 0-100 score. An unreachable registry or
missing git history degrades into a finding, never a failure.`,
	}
}

// Execute runs the audit.
func (it *AuditController) Execute(cmd *cobra.Command, _ []string) {
	settings, root, err := loadSettings(cmd)
	if err != nil {
		fail(err)
		return
	}

	if err := it.command.Execute(cmd.Context(), settings, commands.AuditOptions{Root: root}); err != nil {
		fail(err)
	}
}
