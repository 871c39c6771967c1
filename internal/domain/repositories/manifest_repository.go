package repositories

import "github.com/rios0rios0/relforge/internal/domain/entities"

// ManifestSnapshot holds the original bytes of a set of manifest files,
// captured before a write phase so a partial failure can be rolled back.
type ManifestSnapshot map[string][]byte

// ManifestRepository reads and writes package.json files. Writes are
// atomic per file (write-temp-then-rename) and reproduce the manifest's
// recorded formatting, so a version change diffs as a single line.
type ManifestRepository interface {
	// Read parses the manifest at path, recording its formatting.
	Read(path string) (*entities.Manifest, error)

	// Write serializes the manifest back to its own path atomically.
	Write(manifest *entities.Manifest) error

	// Snapshot captures the current bytes of every path for rollback.
	Snapshot(paths []string) (ManifestSnapshot, error)

	// Restore writes the snapshotted bytes back for the given paths.
	// Paths missing from the snapshot are skipped.
	Restore(snapshot ManifestSnapshot, paths []string) error
}
