// Package commands implements the relforge operations behind the CLI. Each
// command validates its inputs, orchestrates the domain services and logs
// its outcome; controllers stay free of business logic.
package commands

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
	"github.com/rios0rios0/relforge/internal/workspace"
)

// WorkspaceLoader discovers and loads the workspace for a root directory.
type WorkspaceLoader interface {
	Load(ctx context.Context, root string, opts ...workspace.LoadOption) (*entities.Workspace, error)
}

var _ WorkspaceLoader = (*workspace.Loader)(nil)

// openStore resolves the two changeset partitions against the workspace root.
func openStore(
	opener repositories.ChangesetStoreOpener,
	root string,
	settings *config.Settings,
) repositories.ChangesetRepository {
	return opener.Open(
		filepath.Join(root, settings.Changeset.Path),
		filepath.Join(root, settings.Changeset.HistoryPath),
	)
}

// isCode reports whether err is a domain error carrying the given code.
func isCode(err error, code entities.ErrorCode) bool {
	var domainErr *entities.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
