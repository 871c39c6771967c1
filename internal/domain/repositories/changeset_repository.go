package repositories

import (
	"context"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// ChangesetRepository stores branch-scoped changesets in two partitions:
// pending records, mutable and keyed by branch, and an append-only history
// of archived records. Implementations guarantee at-most-one-writer
// semantics per branch; a lost update fails with a concurrent-modification
// error instead of silently overwriting version intent.
type ChangesetRepository interface {
	// Save upserts the pending record keyed by the changeset's branch.
	Save(ctx context.Context, changeset *entities.Changeset) error

	// Load returns the pending record for a branch, or a not-found error.
	Load(ctx context.Context, branch string) (*entities.Changeset, error)

	// Exists reports whether a pending record exists for the branch.
	Exists(ctx context.Context, branch string) (bool, error)

	// Delete removes the pending record. Deleting a missing record succeeds.
	Delete(ctx context.Context, branch string) error

	// ListPending returns every pending record, sorted by branch.
	ListPending(ctx context.Context) ([]*entities.Changeset, error)

	// Archive atomically removes the pending record and appends an archived
	// record to history. When either step fails the pending record is left
	// intact; a crash between the steps leaves the changeset pending.
	Archive(ctx context.Context, changeset *entities.Changeset, info entities.ReleaseInfo) (*entities.ArchivedChangeset, error)

	// LoadArchived returns the most recently archived record for a branch.
	LoadArchived(ctx context.Context, branch string) (*entities.ArchivedChangeset, error)

	// ListArchived returns every archived record, newest first.
	ListArchived(ctx context.Context) ([]*entities.ArchivedChangeset, error)
}

// ChangesetStoreOpener builds a ChangesetRepository for one workspace. The
// two partition paths come from the settings; they must differ.
type ChangesetStoreOpener interface {
	Open(pendingDir, historyDir string) ChangesetRepository
}
