package commands

import (
	"context"
	"slices"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// ChangesetAdd is the interface for the changeset add command.
type ChangesetAdd interface {
	Execute(ctx context.Context, settings *config.Settings, opts ChangesetAddOptions) error
}

// ChangesetAddOptions holds the mutations for the pending changeset. An empty
// Bump keeps the current bump and a nil Environments keeps the current set.
type ChangesetAddOptions struct {
	Root         string
	Packages     []string
	Commits      []string
	Bump         string
	Environments []string
}

// ChangesetAddCommand amends the pending changeset of the current branch.
type ChangesetAddCommand struct {
	loader WorkspaceLoader
	git    repositories.GitRepositoryOpener
	stores repositories.ChangesetStoreOpener
	clock  repositories.Clock
}

// NewChangesetAddCommand creates the command with its dependencies.
func NewChangesetAddCommand(
	loader WorkspaceLoader,
	git repositories.GitRepositoryOpener,
	stores repositories.ChangesetStoreOpener,
	clock repositories.Clock,
) *ChangesetAddCommand {
	return &ChangesetAddCommand{loader: loader, git: git, stores: stores, clock: clock}
}

// Execute loads the pending record, applies the requested mutations and
// saves it back. Tracked commits must resolve in the repository. A run
// that changes nothing leaves the record untouched.
func (it *ChangesetAddCommand) Execute(
	ctx context.Context,
	settings *config.Settings,
	opts ChangesetAddOptions,
) error {
	ws, err := it.loader.Load(ctx, opts.Root)
	if err != nil {
		return err
	}

	gitRepo, err := it.git.Open(ws.Root)
	if err != nil {
		return err
	}
	branch, err := gitRepo.CurrentBranch()
	if err != nil {
		return err
	}

	store := openStore(it.stores, ws.Root, settings)
	changeset, err := store.Load(ctx, branch)
	if err != nil {
		return err
	}

	changed := false
	for _, name := range opts.Packages {
		if !ws.Has(name) {
			return entities.NewPackageNotFound(name)
		}
		if changeset.AddPackage(name) {
			changed = true
		}
	}
	for _, hash := range opts.Commits {
		if _, resolveErr := gitRepo.ShortHash(hash, entities.DefaultShortHashLength); resolveErr != nil {
			return entities.NewCommitNotFound(hash, resolveErr)
		}
		if changeset.AddCommit(hash) {
			changed = true
		}
	}
	if opts.Bump != "" {
		bump, parseErr := entities.ParseBump(opts.Bump)
		if parseErr != nil {
			return parseErr
		}
		if bump != changeset.Bump {
			changeset.SetBump(bump)
			changed = true
		}
	}
	if opts.Environments != nil {
		for _, environment := range opts.Environments {
			if !slices.Contains(settings.Changeset.AvailableEnvironments, environment) {
				return entities.NewUnknownEnvironmentError(environment, settings.Changeset.AvailableEnvironments)
			}
		}
		changeset.SetEnvironments(opts.Environments)
		changed = true
	}

	if !changed {
		logger.Infof("[changeset] nothing to update for branch %q", branch)
		return nil
	}

	changeset.Touch(it.clock.Now())
	if err := store.Save(ctx, changeset); err != nil {
		return err
	}

	logger.Infof("[changeset] updated changeset for branch %q: bump=%s packages=%d commits=%d",
		branch, changeset.Bump, len(changeset.Packages), len(changeset.Changes))
	return nil
}
