package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// ChangelogController handles the "changelog" subcommand.
type ChangelogController struct {
	command commands.Changelog
}

// NewChangelogController creates a new ChangelogController.
func NewChangelogController(command commands.Changelog) *ChangelogController {
	return &ChangelogController{command: command}
}

// GetBind returns the Cobra command metadata for the changelog controller.
func (it *ChangelogController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "changelog",
		Short: "Generate a changelog from the commit history",
		Long: `Collect the commits since the package's last release tag, classify them
by conventional-commit type and fold the rendered release section into the
package's changelog file. Use --stdout to print instead of writing.`,
	}
}

// Execute generates the changelog.
func (it *ChangelogController) Execute(cmd *cobra.Command, _ []string) {
	settings, root, err := loadSettings(cmd)
	if err != nil {
		fail(err)
		return
	}

	pkg, _ := cmd.Flags().GetString("package")
	version, _ := cmd.Flags().GetString("version")
	fromRef, _ := cmd.Flags().GetString("from")
	toRef, _ := cmd.Flags().GetString("to")
	stdout, _ := cmd.Flags().GetBool("stdout")

	if err := it.command.Execute(cmd.Context(), settings, commands.ChangelogOptions{
		Root:    root,
		Package: pkg,
		Version: version,
		FromRef: fromRef,
		ToRef:   toRef,
		Stdout:  stdout,
	}); err != nil {
		fail(err)
	}
}

// AddFlags adds the changelog-specific flags to the given Cobra command.
func (it *ChangelogController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("package", "p", "", "Package to collect for (required in a monorepo)")
	cmd.Flags().String("version", "", "Version for the release heading (default: current package version)")
	cmd.Flags().String("from", "", "Start ref, exclusive (default: last release tag)")
	cmd.Flags().String("to", "", "End ref, inclusive (default: HEAD)")
	cmd.Flags().Bool("stdout", false, "Print the release section instead of updating the file")
}
