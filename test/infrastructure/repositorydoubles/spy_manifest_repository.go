//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations — no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"sort"
	"sync"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// SpyManifestRepository implements repositories.ManifestRepository in
// memory, recording every write and optionally failing on chosen paths.
type SpyManifestRepository struct {
	mu sync.Mutex

	// --- Read ---
	Manifests map[string]*entities.Manifest
	ReadErr   error

	// --- Write ---
	WriteErrs    map[string]error
	WrittenPaths []string
	WrittenBytes map[string][]byte

	// --- Snapshot / Restore ---
	SnapshotErr   error
	RestoreErr    error
	RestoredPaths []string
}

var _ repositories.ManifestRepository = (*SpyManifestRepository)(nil)

func (r *SpyManifestRepository) Read(path string) (*entities.Manifest, error) {
	if r.ReadErr != nil {
		return nil, r.ReadErr
	}
	if manifest, ok := r.Manifests[path]; ok {
		return manifest, nil
	}
	return nil, entities.NewIOError("read", path, nil)
}

func (r *SpyManifestRepository) Write(manifest *entities.Manifest) error {
	if err := r.WriteErrs[manifest.Path]; err != nil {
		return err
	}
	data, err := manifest.Marshal()
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.WrittenBytes == nil {
		r.WrittenBytes = make(map[string][]byte)
	}
	r.WrittenPaths = append(r.WrittenPaths, manifest.Path)
	r.WrittenBytes[manifest.Path] = data
	return nil
}

func (r *SpyManifestRepository) Snapshot(paths []string) (repositories.ManifestSnapshot, error) {
	if r.SnapshotErr != nil {
		return nil, r.SnapshotErr
	}
	snapshot := make(repositories.ManifestSnapshot, len(paths))
	for _, path := range paths {
		snapshot[path] = nil
	}
	return snapshot, nil
}

func (r *SpyManifestRepository) Restore(_ repositories.ManifestSnapshot, paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RestoredPaths = append(r.RestoredPaths, paths...)
	return r.RestoreErr
}

// SortedWrites returns the written paths in lexicographic order, since
// parallel writers land in arbitrary order.
func (r *SpyManifestRepository) SortedWrites() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := append([]string(nil), r.WrittenPaths...)
	sort.Strings(sorted)
	return sorted
}
