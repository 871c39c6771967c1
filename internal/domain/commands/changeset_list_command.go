package commands

import (
	"context"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// ChangesetList is the interface for the changeset list command.
type ChangesetList interface {
	Execute(ctx context.Context, settings *config.Settings, opts ChangesetListOptions) error
}

// ChangesetListOptions selects which partition to list.
type ChangesetListOptions struct {
	Root     string
	Archived bool
}

// ChangesetListCommand prints the pending or archived changesets.
type ChangesetListCommand struct {
	loader WorkspaceLoader
	stores repositories.ChangesetStoreOpener
}

// NewChangesetListCommand creates the command with its dependencies.
func NewChangesetListCommand(
	loader WorkspaceLoader,
	stores repositories.ChangesetStoreOpener,
) *ChangesetListCommand {
	return &ChangesetListCommand{loader: loader, stores: stores}
}

// Execute lists one partition of the store, newest last.
func (it *ChangesetListCommand) Execute(
	ctx context.Context,
	settings *config.Settings,
	opts ChangesetListOptions,
) error {
	ws, err := it.loader.Load(ctx, opts.Root)
	if err != nil {
		return err
	}
	store := openStore(it.stores, ws.Root, settings)

	if opts.Archived {
		archived, listErr := store.ListArchived(ctx)
		if listErr != nil {
			return listErr
		}
		if len(archived) == 0 {
			logger.Info("[changeset] no archived changesets")
			return nil
		}
		for _, record := range archived {
			logger.Infof("[changeset] %s: bump=%s packages=%s applied by %s at %s",
				record.Branch, record.Bump, strings.Join(record.Packages, ","),
				record.ReleaseInfo.AppliedBy, record.ReleaseInfo.AppliedAt.Format(time.RFC3339))
		}
		return nil
	}

	pending, err := store.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		logger.Info("[changeset] no pending changesets")
		return nil
	}
	for _, record := range pending {
		logger.Infof("[changeset] %s: bump=%s packages=%s environments=%s (updated %s)",
			record.Branch, record.Bump, strings.Join(record.Packages, ","),
			strings.Join(record.Environments, ","), record.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}
