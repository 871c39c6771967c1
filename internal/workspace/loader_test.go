//go:build unit

package workspace_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/workspace"
)

func TestExpandGlobs(t *testing.T) {
	t.Parallel()

	t.Run("should order matches per pattern then lexicographically", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "packages/zeta/package.json"), `{"name": "zeta"}`)
		writeFile(t, filepath.Join(root, "packages/alpha/package.json"), `{"name": "alpha"}`)
		writeFile(t, filepath.Join(root, "tools/cli/package.json"), `{"name": "cli"}`)

		// when
		dirs, err := workspace.ExpandGlobs(root, []string{"tools/*", "packages/*"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "tools/cli"),
			filepath.Join(root, "packages/alpha"),
			filepath.Join(root, "packages/zeta"),
		}, dirs)
	})

	t.Run("should skip directories without a manifest", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "packages/a/package.json"), `{"name": "a"}`)
		writeFile(t, filepath.Join(root, "packages/empty/.gitkeep"), "")

		// when
		dirs, err := workspace.ExpandGlobs(root, []string{"packages/*"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "packages/a")}, dirs)
	})

	t.Run("should honor negation patterns", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "packages/a/package.json"), `{"name": "a"}`)
		writeFile(t, filepath.Join(root, "packages/legacy/package.json"), `{"name": "legacy"}`)

		// when
		dirs, err := workspace.ExpandGlobs(root, []string{"packages/*", "!packages/legacy"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "packages/a")}, dirs)
	})

	t.Run("should never traverse node_modules", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "packages/a/package.json"), `{"name": "a"}`)
		writeFile(t, filepath.Join(root, "node_modules/dep/package.json"), `{"name": "dep"}`)

		// when
		dirs, err := workspace.ExpandGlobs(root, []string{"**"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "packages/a")}, dirs)
	})
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("should load a monorepo with members in discovery order", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "package.json"),
			`{"name": "root", "private": true, "workspaces": ["packages/*"]}`)
		writeFile(t, filepath.Join(root, "packages/core/package.json"),
			`{"name": "core", "version": "1.0.0"}`)
		writeFile(t, filepath.Join(root, "packages/util/package.json"),
			`{"name": "util", "version": "1.0.0", "dependencies": {"core": "^1.0.0"}}`)
		loader := workspace.NewLoader(workspace.NewProberRegistry())

		// when
		ws, err := loader.Load(context.Background(), root)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.WorkspaceNpm, ws.Kind)
		require.Len(t, ws.Packages, 2)
		assert.Equal(t, "core", ws.Packages[0].Name)
		assert.Equal(t, "util", ws.Packages[1].Name)
		assert.Equal(t, "1.0.0", ws.Packages[1].Version.String())
		spec, ok := ws.Packages[1].Manifest.DependencySpec(entities.KindRegular, "core")
		require.True(t, ok)
		assert.Equal(t, "^1.0.0", spec)
	})

	t.Run("should load a single package workspace", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "package.json"), `{"name": "app", "version": "2.1.0"}`)
		loader := workspace.NewLoader(workspace.NewProberRegistry())

		// when
		ws, err := loader.Load(context.Background(), root)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.WorkspaceSinglePackage, ws.Kind)
		require.Len(t, ws.Packages, 1)
		assert.Equal(t, "app", ws.Packages[0].Name)
		assert.Equal(t, "2.1.0", ws.Packages[0].Version.String())
	})

	t.Run("should assume 0.0.0 for members without a version", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "package.json"),
			`{"name": "root", "workspaces": ["packages/*"]}`)
		writeFile(t, filepath.Join(root, "packages/scripts/package.json"),
			`{"name": "scripts", "private": true}`)
		loader := workspace.NewLoader(workspace.NewProberRegistry())

		// when
		ws, err := loader.Load(context.Background(), root)

		// then
		require.NoError(t, err)
		require.Len(t, ws.Packages, 1)
		assert.Equal(t, "0.0.0", ws.Packages[0].Version.String())
	})

	t.Run("should keep the first package when names collide", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "package.json"),
			`{"name": "root", "workspaces": ["packages/*"]}`)
		writeFile(t, filepath.Join(root, "packages/a/package.json"),
			`{"name": "dup", "version": "1.0.0"}`)
		writeFile(t, filepath.Join(root, "packages/b/package.json"),
			`{"name": "dup", "version": "2.0.0"}`)
		loader := workspace.NewLoader(workspace.NewProberRegistry())

		// when
		ws, err := loader.Load(context.Background(), root)

		// then
		require.NoError(t, err)
		require.Len(t, ws.Packages, 1)
		assert.Equal(t, "1.0.0", ws.Packages[0].Version.String())
	})

	t.Run("should classify explicit globs as a custom workspace", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "package.json"), `{"name": "root"}`)
		writeFile(t, filepath.Join(root, "libs/a/package.json"), `{"name": "a", "version": "1.0.0"}`)
		loader := workspace.NewLoader(workspace.NewProberRegistry())

		// when
		ws, err := loader.Load(context.Background(), root, workspace.WithGlobs([]string{"libs/*"}))

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.WorkspaceCustom, ws.Kind)
		require.Len(t, ws.Packages, 1)
		assert.Equal(t, "a", ws.Packages[0].Name)
	})

	t.Run("should surface malformed member manifests", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "package.json"),
			`{"name": "root", "workspaces": ["packages/*"]}`)
		writeFile(t, filepath.Join(root, "packages/bad/package.json"), `{"name": `)
		loader := workspace.NewLoader(workspace.NewProberRegistry())

		// when
		_, err := loader.Load(context.Background(), root)

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeManifestParseFailed, domainErr.Code)
	})
}
