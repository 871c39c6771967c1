package commands

import (
	"context"
	"slices"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// ChangesetCreate is the interface for the changeset create command.
type ChangesetCreate interface {
	Execute(ctx context.Context, settings *config.Settings, opts ChangesetCreateOptions) error
}

// ChangesetCreateOptions holds the runtime options for a new changeset.
type ChangesetCreateOptions struct {
	Root         string
	Bump         string
	Packages     []string
	Environments []string
}

// ChangesetCreateCommand starts the pending changeset for the current branch.
type ChangesetCreateCommand struct {
	loader WorkspaceLoader
	git    repositories.GitRepositoryOpener
	stores repositories.ChangesetStoreOpener
	clock  repositories.Clock
}

// NewChangesetCreateCommand creates the command with its dependencies.
func NewChangesetCreateCommand(
	loader WorkspaceLoader,
	git repositories.GitRepositoryOpener,
	stores repositories.ChangesetStoreOpener,
	clock repositories.Clock,
) *ChangesetCreateCommand {
	return &ChangesetCreateCommand{loader: loader, git: git, stores: stores, clock: clock}
}

// Execute validates the requested packages and environments against the
// workspace and saves a new pending record keyed by the current branch.
// A changeset without packages is rejected; creating over an existing
// record is a conflict.
func (it *ChangesetCreateCommand) Execute(
	ctx context.Context,
	settings *config.Settings,
	opts ChangesetCreateOptions,
) error {
	bump, err := entities.ParseBump(opts.Bump)
	if err != nil {
		return err
	}

	ws, err := it.loader.Load(ctx, opts.Root)
	if err != nil {
		return err
	}
	for _, name := range opts.Packages {
		if !ws.Has(name) {
			return entities.NewPackageNotFound(name)
		}
	}
	for _, environment := range opts.Environments {
		if !slices.Contains(settings.Changeset.AvailableEnvironments, environment) {
			return entities.NewUnknownEnvironmentError(environment, settings.Changeset.AvailableEnvironments)
		}
	}

	gitRepo, err := it.git.Open(ws.Root)
	if err != nil {
		return err
	}
	branch, err := gitRepo.CurrentBranch()
	if err != nil {
		return err
	}
	if len(opts.Packages) == 0 {
		return entities.NewEmptyChangesetError(branch)
	}

	store := openStore(it.stores, ws.Root, settings)
	exists, err := store.Exists(ctx, branch)
	if err != nil {
		return err
	}
	if exists {
		return entities.NewChangesetExists(branch)
	}

	changeset := entities.NewChangeset(branch, bump, it.clock.Now())
	for _, name := range opts.Packages {
		changeset.AddPackage(name)
	}
	changeset.SetEnvironments(opts.Environments)
	if err := store.Save(ctx, changeset); err != nil {
		return err
	}

	logger.Infof("[changeset] created %s changeset for branch %q with %d package(s)",
		changeset.Bump, branch, len(changeset.Packages))
	return nil
}
