package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	domainRepos "github.com/rios0rios0/relforge/internal/domain/repositories"
)

// MemoryChangesetRepository is the in-memory store variant. It implements
// the same contract as the filesystem store, including revision conflicts
// and atomic archiving, and backs tests and dry-run flows.
type MemoryChangesetRepository struct {
	mu       sync.RWMutex
	pending  map[string]*entities.Changeset
	archived []*entities.ArchivedChangeset
}

var _ domainRepos.ChangesetRepository = (*MemoryChangesetRepository)(nil)

// NewMemoryChangesetRepository creates an empty in-memory store.
func NewMemoryChangesetRepository() *MemoryChangesetRepository {
	return &MemoryChangesetRepository{pending: make(map[string]*entities.Changeset)}
}

// Save upserts the pending record, rejecting empty package sets and
// enforcing the revision check.
func (r *MemoryChangesetRepository) Save(ctx context.Context, changeset *entities.Changeset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(changeset.Packages) == 0 {
		return entities.NewEmptyChangesetError(changeset.Branch)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if persisted, ok := r.pending[changeset.Branch]; ok {
		if changeset.LoadedRevision.IsZero() {
			return entities.NewConcurrentModification(
				changeset.Branch,
				"none",
				persisted.UpdatedAt.UTC().Format(revisionFormat),
			)
		}
		if !persisted.UpdatedAt.Equal(changeset.LoadedRevision) {
			return entities.NewConcurrentModification(
				changeset.Branch,
				changeset.LoadedRevision.UTC().Format(revisionFormat),
				persisted.UpdatedAt.UTC().Format(revisionFormat),
			)
		}
	}

	stored := cloneChangeset(changeset)
	r.pending[changeset.Branch] = stored
	changeset.LoadedRevision = changeset.UpdatedAt
	return nil
}

// Load returns a copy of the pending record for a branch.
func (r *MemoryChangesetRepository) Load(ctx context.Context, branch string) (*entities.Changeset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.pending[branch]
	if !ok {
		return nil, entities.NewChangesetNotFound(branch)
	}
	loaded := cloneChangeset(stored)
	loaded.LoadedRevision = loaded.UpdatedAt
	return loaded, nil
}

// Exists reports whether a pending record exists.
func (r *MemoryChangesetRepository) Exists(ctx context.Context, branch string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pending[branch]
	return ok, nil
}

// Delete removes the pending record, succeeding when it is absent.
func (r *MemoryChangesetRepository) Delete(ctx context.Context, branch string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, branch)
	return nil
}

// ListPending returns copies of every pending record sorted by branch.
func (r *MemoryChangesetRepository) ListPending(ctx context.Context) ([]*entities.Changeset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := make([]*entities.Changeset, 0, len(r.pending))
	for _, stored := range r.pending {
		loaded := cloneChangeset(stored)
		loaded.LoadedRevision = loaded.UpdatedAt
		pending = append(pending, loaded)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Branch < pending[j].Branch })
	return pending, nil
}

// Archive moves the pending record into the archive in one critical
// section, which makes the two steps atomic for in-memory callers.
func (r *MemoryChangesetRepository) Archive(
	ctx context.Context, changeset *entities.Changeset, info entities.ReleaseInfo,
) (*entities.ArchivedChangeset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	persisted, ok := r.pending[changeset.Branch]
	if !ok {
		return nil, entities.NewChangesetNotFound(changeset.Branch)
	}
	if !changeset.LoadedRevision.IsZero() && !persisted.UpdatedAt.Equal(changeset.LoadedRevision) {
		return nil, entities.NewConcurrentModification(
			changeset.Branch,
			changeset.LoadedRevision.UTC().Format(revisionFormat),
			persisted.UpdatedAt.UTC().Format(revisionFormat),
		)
	}

	archived := &entities.ArchivedChangeset{Changeset: *cloneChangeset(changeset), ReleaseInfo: info}
	r.archived = append(r.archived, archived)
	delete(r.pending, changeset.Branch)
	return archived, nil
}

// LoadArchived returns the newest archived record for a branch.
func (r *MemoryChangesetRepository) LoadArchived(ctx context.Context, branch string) (*entities.ArchivedChangeset, error) {
	archived, err := r.ListArchived(ctx)
	if err != nil {
		return nil, err
	}
	for _, record := range archived {
		if record.Branch == branch {
			return record, nil
		}
	}
	return nil, entities.NewChangesetNotFound(branch)
}

// ListArchived returns every archived record, newest first.
func (r *MemoryChangesetRepository) ListArchived(ctx context.Context) ([]*entities.ArchivedChangeset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	archived := make([]*entities.ArchivedChangeset, len(r.archived))
	copy(archived, r.archived)
	sort.SliceStable(archived, func(i, j int) bool {
		return archived[i].ReleaseInfo.AppliedAt.After(archived[j].ReleaseInfo.AppliedAt)
	})
	return archived, nil
}

// cloneChangeset copies a record so callers and the store never alias the
// same slices.
func cloneChangeset(changeset *entities.Changeset) *entities.Changeset {
	cloned := *changeset
	cloned.Packages = append([]string(nil), changeset.Packages...)
	cloned.Environments = append([]string(nil), changeset.Environments...)
	cloned.Changes = append([]string(nil), changeset.Changes...)
	return &cloned
}
