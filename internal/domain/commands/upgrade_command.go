package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
	"github.com/rios0rios0/relforge/internal/graph"
	"github.com/rios0rios0/relforge/internal/upgrade"
)

// Upgrade is the interface for the upgrade command.
type Upgrade interface {
	Execute(ctx context.Context, settings *config.Settings, opts UpgradeOptions) error
}

// UpgradeOptions holds the runtime options for one upgrade run.
type UpgradeOptions struct {
	Root   string
	DryRun bool
}

// UpgradeCommand plans registry upgrades for the external dependencies,
// rewrites the manifests and, when configured, folds the touched packages
// into the branch changeset so the next release picks them up.
type UpgradeCommand struct {
	loader    WorkspaceLoader
	git       repositories.GitRepositoryOpener
	stores    repositories.ChangesetStoreOpener
	manifests repositories.ManifestRepository
	registry  repositories.RegistryGatewayFactory
	clock     repositories.Clock
}

// NewUpgradeCommand creates the command with its dependencies.
func NewUpgradeCommand(
	loader WorkspaceLoader,
	git repositories.GitRepositoryOpener,
	stores repositories.ChangesetStoreOpener,
	manifests repositories.ManifestRepository,
	registry repositories.RegistryGatewayFactory,
	clock repositories.Clock,
) *UpgradeCommand {
	return &UpgradeCommand{
		loader:    loader,
		git:       git,
		stores:    stores,
		manifests: manifests,
		registry:  registry,
		clock:     clock,
	}
}

// Execute plans and optionally applies the upgrades.
func (it *UpgradeCommand) Execute(
	ctx context.Context,
	settings *config.Settings,
	opts UpgradeOptions,
) error {
	ws, err := it.loader.Load(ctx, opts.Root)
	if err != nil {
		return err
	}
	g := graph.Build(ws)

	gateway := it.registry.New(settings.Upgrade.RegistryURL, settings.UpgradeTimeout())
	rows, err := upgrade.NewPlanner(gateway).Plan(ctx, g, upgrade.Options{
		Kinds:       settings.UpgradeKinds(),
		Concurrency: settings.Upgrade.Concurrency,
		AllowMajor:  settings.Upgrade.AllowMajor,
		AllowMinor:  settings.Upgrade.AllowMinor,
		AllowPatch:  settings.Upgrade.AllowPatch,
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		logger.Info("[upgrade] every dependency is up to date")
		return nil
	}

	for _, row := range rows {
		deprecated := ""
		if row.Deprecated {
			deprecated = " [deprecated]"
		}
		logger.Infof("[upgrade] %s: %s (%s) %s -> %s (%s)%s",
			row.Package, row.Dependency, row.Kind, row.Current, row.Latest, row.Class, deprecated)
	}
	if opts.DryRun {
		logger.Info("[upgrade] dry run, no files written")
		return nil
	}

	written, err := upgrade.Apply(g, it.manifests, rows)
	if err != nil {
		return err
	}
	logger.Infof("[upgrade] wrote %d manifest(s)", len(written))

	if !settings.Upgrade.AutoChangeset {
		return nil
	}
	return it.recordChangeset(ctx, settings, ws, rows)
}

// recordChangeset folds the upgraded packages into the branch changeset so
// the next release carries them. A major-crossing upgrade forces a major
// bump regardless of the configured default; an existing record keeps the
// larger of its bump and the computed one.
func (it *UpgradeCommand) recordChangeset(
	ctx context.Context,
	settings *config.Settings,
	ws *entities.Workspace,
	rows []upgrade.Row,
) error {
	gitRepo, err := it.git.Open(ws.Root)
	if err != nil {
		return err
	}
	branch, err := gitRepo.CurrentBranch()
	if err != nil {
		return err
	}

	bump := settings.UpgradeChangesetBump()
	if upgrade.HighestClass(rows) == upgrade.ClassMajor {
		bump = entities.BumpMajor
	}

	store := openStore(it.stores, ws.Root, settings)
	changeset, err := store.Load(ctx, branch)
	switch {
	case isCode(err, entities.CodeChangesetNotFound):
		changeset = entities.NewChangeset(branch, bump, it.clock.Now())
	case err != nil:
		return err
	default:
		changeset.SetBump(entities.MaxBump(changeset.Bump, bump))
		changeset.Touch(it.clock.Now())
	}
	for _, row := range rows {
		changeset.AddPackage(row.Package)
	}
	if err := store.Save(ctx, changeset); err != nil {
		return err
	}

	logger.Infof("[upgrade] recorded %s changeset for branch %q", changeset.Bump, branch)
	return nil
}
