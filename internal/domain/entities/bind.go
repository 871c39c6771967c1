package entities

import "github.com/spf13/cobra"

// ControllerBind carries the cobra metadata a controller registers under.
// Group names a parent command ("changeset") for nested subcommands and is
// empty for top-level commands.
type ControllerBind struct {
	Use   string
	Short string
	Long  string
	Group string
}

// Controller is implemented by every CLI entrypoint.
type Controller interface {
	GetBind() ControllerBind
	Execute(cmd *cobra.Command, args []string)
}
