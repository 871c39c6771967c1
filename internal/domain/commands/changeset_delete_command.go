package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// ChangesetDelete is the interface for the changeset delete command.
type ChangesetDelete interface {
	Execute(ctx context.Context, settings *config.Settings, opts ChangesetDeleteOptions) error
}

// ChangesetDeleteOptions names the branch to drop; empty means the current one.
type ChangesetDeleteOptions struct {
	Root   string
	Branch string
}

// ChangesetDeleteCommand discards a pending changeset without releasing it.
type ChangesetDeleteCommand struct {
	loader WorkspaceLoader
	git    repositories.GitRepositoryOpener
	stores repositories.ChangesetStoreOpener
}

// NewChangesetDeleteCommand creates the command with its dependencies.
func NewChangesetDeleteCommand(
	loader WorkspaceLoader,
	git repositories.GitRepositoryOpener,
	stores repositories.ChangesetStoreOpener,
) *ChangesetDeleteCommand {
	return &ChangesetDeleteCommand{loader: loader, git: git, stores: stores}
}

// Execute removes the pending record. Deleting a branch without one is a
// no-op so cleanup scripts can run it unconditionally.
func (it *ChangesetDeleteCommand) Execute(
	ctx context.Context,
	settings *config.Settings,
	opts ChangesetDeleteOptions,
) error {
	ws, err := it.loader.Load(ctx, opts.Root)
	if err != nil {
		return err
	}

	branch := opts.Branch
	if branch == "" {
		gitRepo, openErr := it.git.Open(ws.Root)
		if openErr != nil {
			return openErr
		}
		branch, err = gitRepo.CurrentBranch()
		if err != nil {
			return err
		}
	}

	store := openStore(it.stores, ws.Root, settings)
	if err := store.Delete(ctx, branch); err != nil {
		return err
	}

	logger.Infof("[changeset] deleted pending changeset for branch %q", branch)
	return nil
}
