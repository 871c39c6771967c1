// Package controllers adapts the cobra CLI surface to the domain commands.
// Controllers read flags, load the settings and translate failures into
// sysexits process codes; business logic stays in the commands.
package controllers

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// loadSettings applies the persistent flags and loads the configuration for
// the requested workspace root.
func loadSettings(cmd *cobra.Command) (*config.Settings, string, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	root, _ := cmd.Flags().GetString("root")
	settings, err := config.Load(root)
	return settings, root, err
}

// fail logs the error and terminates the process with its sysexits code.
func fail(err error) {
	logger.Errorf("%v", err)
	os.Exit(entities.ExitCodeFor(err))
}
