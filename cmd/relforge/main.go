package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/relforge/internal"
)

// flagAdder is implemented by controllers that contribute their own flags.
type flagAdder interface {
	AddFlags(cmd *cobra.Command)
}

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "relforge",
		Short: "Version, changeset and release toolchain for JS/TS workspaces",
		Long: `relforge manages versions, changesets, changelogs, dependency upgrades
and release workflows for JavaScript/TypeScript projects, from single
packages to npm, yarn, pnpm, bun, deno and lerna monorepos.

Typical flow:
  relforge init                        Scaffold the configuration
  relforge changeset create -b minor   Start a changeset on a feature branch
  relforge release --dry-run           Inspect the version plan
  relforge release                     Apply, archive and tag`,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("root", "r", ".",
		"Workspace root directory")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	groups := make(map[string]*cobra.Command)
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}

		// Add controller-specific flags
		if adder, ok := ctrl.(flagAdder); ok {
			adder.AddFlags(subCmd)
		}

		parent := rootCmd
		if bind.Group != "" {
			parent = groupCommand(rootCmd, groups, bind.Group)
		}
		parent.AddCommand(subCmd)
	}
}

// groupCommand returns the parent command for a bind group, creating it on
// first use so "changeset create" and friends nest under one "changeset".
func groupCommand(rootCmd *cobra.Command, groups map[string]*cobra.Command, name string) *cobra.Command {
	if parent, ok := groups[name]; ok {
		return parent
	}
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	parent := &cobra.Command{
		Use:   name,
		Short: "Manage " + name + "s",
	}
	rootCmd.AddCommand(parent)
	groups[name] = parent
	return parent
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	cobraRoot := buildRootCommand()

	// Inject controllers via DIG
	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cobraRoot.ExecuteContext(ctx); err != nil {
		logger.Fatalf("Error executing 'relforge': %s", err)
	}
}
