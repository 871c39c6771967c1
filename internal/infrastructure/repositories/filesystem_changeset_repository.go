package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	domainRepos "github.com/rios0rios0/relforge/internal/domain/repositories"
)

const (
	recordExtension = ".json"
	recordPerm      = 0o644
	recordDirPerm   = 0o755
)

// FilesystemChangesetRepository keeps pending changesets as one JSON file
// per branch and archived changesets as append-only JSON files in a
// separate history directory. Same-branch writers serialize on an
// in-process lock; cross-process lost updates are caught by comparing the
// record's loaded revision against the file on disk.
type FilesystemChangesetRepository struct {
	pendingDir string
	historyDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ domainRepos.ChangesetRepository = (*FilesystemChangesetRepository)(nil)

// NewFilesystemChangesetRepository creates a store over the two partition
// directories. Directories are created lazily on first write.
func NewFilesystemChangesetRepository(pendingDir, historyDir string) *FilesystemChangesetRepository {
	return &FilesystemChangesetRepository{
		pendingDir: pendingDir,
		historyDir: historyDir,
		locks:      make(map[string]*sync.Mutex),
	}
}

// FilesystemChangesetStoreOpener builds filesystem stores for workspaces.
type FilesystemChangesetStoreOpener struct{}

var _ domainRepos.ChangesetStoreOpener = (*FilesystemChangesetStoreOpener)(nil)

// NewFilesystemChangesetStoreOpener creates the opener.
func NewFilesystemChangesetStoreOpener() *FilesystemChangesetStoreOpener {
	return &FilesystemChangesetStoreOpener{}
}

// Open returns a store over the given partition directories.
func (o *FilesystemChangesetStoreOpener) Open(pendingDir, historyDir string) domainRepos.ChangesetRepository {
	return NewFilesystemChangesetRepository(pendingDir, historyDir)
}

// Save upserts the pending record for the changeset's branch. A record
// without packages is rejected. A record loaded from disk carries its
// revision; when the file changed since that load, or the record never
// went through a load while a file already exists, the save fails with a
// concurrent-modification error.
func (r *FilesystemChangesetRepository) Save(ctx context.Context, changeset *entities.Changeset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(changeset.Packages) == 0 {
		return entities.NewEmptyChangesetError(changeset.Branch)
	}
	lock := r.branchLock(changeset.Branch)
	lock.Lock()
	defer lock.Unlock()

	persisted, err := r.readPending(changeset.Branch)
	if err != nil && !isNotFound(err) {
		return err
	}
	if persisted != nil {
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

	if mkdirErr := os.MkdirAll(r.pendingDir, recordDirPerm); mkdirErr != nil {
		return entities.NewIOError("create directory", r.pendingDir, mkdirErr)
	}
	data, marshalErr := marshalRecord(changeset)
	if marshalErr != nil {
		return entities.NewIOError("encode changeset", changeset.Branch, marshalErr)
	}
	path := r.pendingPath(changeset.Branch)
	if writeErr := writeFileAtomic(path, data, recordPerm); writeErr != nil {
		return entities.NewIOError("write", path, writeErr)
	}
	changeset.LoadedRevision = changeset.UpdatedAt
	return nil
}

// Load returns the pending record for a branch.
func (r *FilesystemChangesetRepository) Load(ctx context.Context, branch string) (*entities.Changeset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.readPending(branch)
}

// Exists reports whether a pending record exists for the branch.
func (r *FilesystemChangesetRepository) Exists(ctx context.Context, branch string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(r.pendingPath(branch))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, entities.NewIOError("stat", r.pendingPath(branch), err)
	}
	return true, nil
}

// Delete removes the pending record, succeeding when it is already gone.
func (r *FilesystemChangesetRepository) Delete(ctx context.Context, branch string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := r.branchLock(branch)
	lock.Lock()
	defer lock.Unlock()

	err := os.Remove(r.pendingPath(branch))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return entities.NewIOError("delete", r.pendingPath(branch), err)
	}
	return nil
}

// ListPending returns every pending record sorted by branch.
func (r *FilesystemChangesetRepository) ListPending(ctx context.Context) ([]*entities.Changeset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.pendingDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, entities.NewIOError("list", r.pendingDir, err)
	}

	var pending []*entities.Changeset
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExtension) {
			continue
		}
		changeset, readErr := r.readPendingFile(filepath.Join(r.pendingDir, entry.Name()))
		if readErr != nil {
			logger.Warnf("[changeset] skipping unreadable record %s: %v", entry.Name(), readErr)
			continue
		}
		pending = append(pending, changeset)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Branch < pending[j].Branch })
	return pending, nil
}

// Archive writes the archived record to history first and only then
// removes the pending record, so a crash at any point leaves the
// changeset pending. A failed delete rolls the history write back.
func (r *FilesystemChangesetRepository) Archive(
	ctx context.Context, changeset *entities.Changeset, info entities.ReleaseInfo,
) (*entities.ArchivedChangeset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lock := r.branchLock(changeset.Branch)
	lock.Lock()
	defer lock.Unlock()

	persisted, err := r.readPending(changeset.Branch)
	if err != nil {
		return nil, err
	}
	if !changeset.LoadedRevision.IsZero() && !persisted.UpdatedAt.Equal(changeset.LoadedRevision) {
		return nil, entities.NewConcurrentModification(
			changeset.Branch,
			changeset.LoadedRevision.UTC().Format(revisionFormat),
			persisted.UpdatedAt.UTC().Format(revisionFormat),
		)
	}

	archived := &entities.ArchivedChangeset{Changeset: *changeset, ReleaseInfo: info}
	if mkdirErr := os.MkdirAll(r.historyDir, recordDirPerm); mkdirErr != nil {
		return nil, entities.NewIOError("create directory", r.historyDir, mkdirErr)
	}
	data, marshalErr := marshalRecord(archived)
	if marshalErr != nil {
		return nil, entities.NewIOError("encode archived changeset", changeset.Branch, marshalErr)
	}
	historyPath := r.archivedPath(changeset.Branch, info)
	if writeErr := writeFileAtomic(historyPath, data, recordPerm); writeErr != nil {
		return nil, entities.NewIOError("write", historyPath, writeErr)
	}

	if removeErr := os.Remove(r.pendingPath(changeset.Branch)); removeErr != nil {
		os.Remove(historyPath)
		return nil, entities.NewIOError("delete", r.pendingPath(changeset.Branch), removeErr)
	}
	logger.Debugf("[changeset] archived branch %q to %s", changeset.Branch, historyPath)
	return archived, nil
}

// LoadArchived returns the newest archived record for a branch.
func (r *FilesystemChangesetRepository) LoadArchived(ctx context.Context, branch string) (*entities.ArchivedChangeset, error) {
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
func (r *FilesystemChangesetRepository) ListArchived(ctx context.Context) ([]*entities.ArchivedChangeset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.historyDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, entities.NewIOError("list", r.historyDir, err)
	}

	var archived []*entities.ArchivedChangeset
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExtension) {
			continue
		}
		path := filepath.Join(r.historyDir, entry.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			logger.Warnf("[changeset] skipping unreadable archive %s: %v", entry.Name(), readErr)
			continue
		}
		record := &entities.ArchivedChangeset{}
		if unmarshalErr := json.Unmarshal(data, record); unmarshalErr != nil {
			logger.Warnf("[changeset] skipping malformed archive %s: %v", entry.Name(), unmarshalErr)
			continue
		}
		archived = append(archived, record)
	}
	sort.Slice(archived, func(i, j int) bool {
		return archived[i].ReleaseInfo.AppliedAt.After(archived[j].ReleaseInfo.AppliedAt)
	})
	return archived, nil
}

// revisionFormat renders revision timestamps in conflict messages.
const revisionFormat = "2006-01-02T15:04:05Z"

func (r *FilesystemChangesetRepository) branchLock(branch string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[branch]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[branch] = lock
	}
	return lock
}

// pendingPath escapes the branch name so slashes in branch names such as
// feat/login map to distinct, reversible file names.
func (r *FilesystemChangesetRepository) pendingPath(branch string) string {
	return filepath.Join(r.pendingDir, url.PathEscape(branch)+recordExtension)
}

func (r *FilesystemChangesetRepository) archivedPath(branch string, info entities.ReleaseInfo) string {
	stamp := info.AppliedAt.UTC().Format("20060102T150405Z")
	name := url.PathEscape(branch) + "-" + stamp
	if len(info.GitCommit) >= entities.DefaultShortHashLength {
		name += "-" + info.GitCommit[:entities.DefaultShortHashLength]
	}
	return filepath.Join(r.historyDir, name+recordExtension)
}

func (r *FilesystemChangesetRepository) readPending(branch string) (*entities.Changeset, error) {
	changeset, err := r.readPendingFile(r.pendingPath(branch))
	if errors.Is(err, os.ErrNotExist) {
		return nil, entities.NewChangesetNotFound(branch)
	}
	return changeset, err
}

func (r *FilesystemChangesetRepository) readPendingFile(path string) (*entities.Changeset, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err != nil {
		return nil, entities.NewIOError("read", path, err)
	}
	changeset := &entities.Changeset{}
	if unmarshalErr := json.Unmarshal(data, changeset); unmarshalErr != nil {
		return nil, entities.NewIOError("decode", path, unmarshalErr)
	}
	changeset.LoadedRevision = changeset.UpdatedAt
	return changeset, nil
}

func isNotFound(err error) bool {
	var domainErr *entities.DomainError
	return errors.As(err, &domainErr) && domainErr.Kind == entities.KindNotFound
}

// marshalRecord renders a changeset record as pretty JSON with two-space
// indentation and a trailing newline, the documented on-disk format.
func marshalRecord(record any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(record); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
