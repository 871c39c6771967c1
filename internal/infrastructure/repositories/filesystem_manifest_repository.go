package repositories

import (
	"errors"
	"os"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	domainRepos "github.com/rios0rios0/relforge/internal/domain/repositories"
)

const manifestPerm = 0o644

// FilesystemManifestRepository reads and writes package.json files on
// disk. Every write goes through a temp file and rename, so a crash never
// leaves a half-written manifest behind.
type FilesystemManifestRepository struct{}

var _ domainRepos.ManifestRepository = (*FilesystemManifestRepository)(nil)

// NewFilesystemManifestRepository creates the repository.
func NewFilesystemManifestRepository() *FilesystemManifestRepository {
	return &FilesystemManifestRepository{}
}

// Read parses the manifest at path, recording its formatting so a later
// Write reproduces it byte-for-byte.
func (r *FilesystemManifestRepository) Read(path string) (*entities.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, entities.NewIOError("read", path, err)
	}
	return entities.ParseManifest(path, data)
}

// Write serializes the manifest to its own path atomically.
func (r *FilesystemManifestRepository) Write(manifest *entities.Manifest) error {
	data, err := manifest.Marshal()
	if err != nil {
		return entities.NewIOError("serialize", manifest.Path, err)
	}
	if writeErr := writeFileAtomic(manifest.Path, data, manifestPerm); writeErr != nil {
		return entities.NewIOError("write", manifest.Path, writeErr)
	}
	return nil
}

// Snapshot captures the current bytes of every path. Paths that do not
// exist yet are recorded as absent so Restore can remove them again.
func (r *FilesystemManifestRepository) Snapshot(paths []string) (domainRepos.ManifestSnapshot, error) {
	snapshot := make(domainRepos.ManifestSnapshot, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			snapshot[path] = nil
			continue
		}
		if err != nil {
			return nil, entities.NewIOError("read", path, err)
		}
		snapshot[path] = data
	}
	return snapshot, nil
}

// Restore writes the snapshotted bytes back for the given paths. Paths
// recorded as absent are deleted; paths missing from the snapshot are
// skipped. The first failure aborts the restore.
func (r *FilesystemManifestRepository) Restore(snapshot domainRepos.ManifestSnapshot, paths []string) error {
	for _, path := range paths {
		data, ok := snapshot[path]
		if !ok {
			continue
		}
		if data == nil {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return entities.NewIOError("delete", path, err)
			}
			continue
		}
		if err := writeFileAtomic(path, data, manifestPerm); err != nil {
			return entities.NewIOError("restore", path, err)
		}
	}
	return nil
}
