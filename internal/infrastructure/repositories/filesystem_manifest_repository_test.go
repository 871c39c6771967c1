//go:build unit

package repositories_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/infrastructure/repositories"
)

func TestFilesystemManifestRepository(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite only the version line on a round trip", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		path := filepath.Join(dir, entities.ManifestFileName)
		original := `{
    "name": "app",
    "version": "1.0.0",
    "dependencies": {
        "left-pad": "~1.3.0"
    }
}
`
		require.NoError(t, os.WriteFile(path, []byte(original), 0o644))
		repo := repositories.NewFilesystemManifestRepository()

		manifest, err := repo.Read(path)
		require.NoError(t, err)
		manifest.SetVersion(entities.MustParseVersion("1.1.0"))

		// when
		writeErr := repo.Write(manifest)

		// then
		require.NoError(t, writeErr)
		written, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		expected := `{
    "name": "app",
    "version": "1.1.0",
    "dependencies": {
        "left-pad": "~1.3.0"
    }
}
`
		assert.Equal(t, expected, string(written), "indent, key order and trailing newline survive")
	})

	t.Run("should fail reading a missing manifest", func(t *testing.T) {
		t.Parallel()

		// given
		repo := repositories.NewFilesystemManifestRepository()

		// when
		_, err := repo.Read(filepath.Join(t.TempDir(), entities.ManifestFileName))

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeIOFailed, domainErr.Code)
	})

	t.Run("should restore snapshotted bytes and remove files created since", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		existing := filepath.Join(dir, "a", entities.ManifestFileName)
		missing := filepath.Join(dir, "b", entities.ManifestFileName)
		require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
		require.NoError(t, os.MkdirAll(filepath.Dir(missing), 0o755))
		require.NoError(t, os.WriteFile(existing, []byte(`{"version": "1.0.0"}`), 0o644))

		repo := repositories.NewFilesystemManifestRepository()
		snapshot, err := repo.Snapshot([]string{existing, missing})
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(existing, []byte(`{"version": "9.9.9"}`), 0o644))
		require.NoError(t, os.WriteFile(missing, []byte(`{"version": "0.1.0"}`), 0o644))

		// when
		restoreErr := repo.Restore(snapshot, []string{existing, missing})

		// then
		require.NoError(t, restoreErr)
		content, readErr := os.ReadFile(existing)
		require.NoError(t, readErr)
		assert.Equal(t, `{"version": "1.0.0"}`, string(content))
		_, statErr := os.Stat(missing)
		assert.True(t, os.IsNotExist(statErr), "files absent at snapshot time are removed again")
	})
}
