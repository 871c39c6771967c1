//go:build unit

package release_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/graph"
	"github.com/rios0rios0/relforge/internal/release"
	"github.com/rios0rios0/relforge/test/domain/entitybuilders"
	"github.com/rios0rios0/relforge/test/infrastructure/repositorydoubles"
)

func TestEngine_Apply(t *testing.T) {
	t.Parallel()

	t.Run("should write every touched manifest and commit", func(t *testing.T) {
		t.Parallel()

		// given
		g := monorepoGraph()
		manifests := &repositorydoubles.SpyManifestRepository{}
		engine := release.NewEngine(g, manifests)
		changeset := entitybuilders.NewChangesetBuilder().
			WithBranch("feat/core").WithBump(entities.BumpMinor).
			WithPackages("core").BuildChangeset()
		_, err := engine.Plan(changeset, defaultOptions())
		require.NoError(t, err)

		// when
		written, err := engine.Apply(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, release.StateCommitted, engine.State())
		assert.Equal(t, []string{
			g.Get("app").Manifest.Path,
			g.Get("core").Manifest.Path,
			g.Get("util").Manifest.Path,
		}, written)

		flushed, err := entities.ParseManifest("util", manifests.WrittenBytes[g.Get("util").Manifest.Path])
		require.NoError(t, err)
		assert.Equal(t, "1.0.1", flushed.Version())
		spec, ok := flushed.DependencySpec(entities.KindRegular, "core")
		require.True(t, ok)
		assert.Equal(t, "^1.1.0", spec)
	})

	t.Run("should report the written files on a partial failure", func(t *testing.T) {
		t.Parallel()

		// given
		g := monorepoGraph()
		corePath := g.Get("core").Manifest.Path
		manifests := &repositorydoubles.SpyManifestRepository{
			WriteErrs: map[string]error{corePath: errors.New("disk full")},
		}
		engine := release.NewEngine(g, manifests)
		changeset := entitybuilders.NewChangesetBuilder().
			WithBump(entities.BumpMinor).WithPackages("core").BuildChangeset()
		_, err := engine.Plan(changeset, defaultOptions())
		require.NoError(t, err)

		// when
		written, err := engine.Apply(context.Background())

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeApplyFailed, domainErr.Code)
		assert.Contains(t, domainErr.Error(), corePath)
		assert.NotContains(t, written, corePath)
		assert.Equal(t, written, domainErr.Paths)
		assert.Equal(t, release.StateFailed, engine.State())
		assert.Equal(t, written, engine.WrittenFiles())
	})

	t.Run("should write nothing for a plan without file work", func(t *testing.T) {
		t.Parallel()

		// given
		solo := entitybuilders.NewPackageBuilder().
			WithName("solo").WithVersion("1.2.3").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(solo).BuildWorkspace())
		manifests := &repositorydoubles.SpyManifestRepository{}
		engine := release.NewEngine(g, manifests)
		changeset := entitybuilders.NewChangesetBuilder().
			WithBump(entities.BumpNone).WithPackages("solo").BuildChangeset()
		_, err := engine.Plan(changeset, defaultOptions())
		require.NoError(t, err)

		// when
		written, err := engine.Apply(context.Background())

		// then
		require.NoError(t, err)
		assert.Empty(t, written)
		assert.Empty(t, manifests.WrittenPaths)
		assert.Equal(t, release.StateCommitted, engine.State())
	})

	t.Run("should fail with a cancelled error when the context is done", func(t *testing.T) {
		t.Parallel()

		// given
		g := monorepoGraph()
		manifests := &repositorydoubles.SpyManifestRepository{}
		engine := release.NewEngine(g, manifests)
		changeset := entitybuilders.NewChangesetBuilder().
			WithBump(entities.BumpMinor).WithPackages("core").BuildChangeset()
		_, err := engine.Plan(changeset, defaultOptions())
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		written, err := engine.Apply(ctx)

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeCancelled, domainErr.Code)
		assert.Empty(t, written)
		assert.Equal(t, release.StateFailed, engine.State())
	})

	t.Run("should refuse to apply without a plan", func(t *testing.T) {
		t.Parallel()

		// given
		engine := release.NewEngine(monorepoGraph(), &repositorydoubles.SpyManifestRepository{})

		// when
		_, err := engine.Apply(context.Background())

		// then
		require.Error(t, err)
		assert.Equal(t, release.StateIdle, engine.State())
	})
}

func TestEngine_Discard(t *testing.T) {
	t.Parallel()

	t.Run("should drop the plan and return to idle", func(t *testing.T) {
		t.Parallel()

		// given
		engine := release.NewEngine(monorepoGraph(), &repositorydoubles.SpyManifestRepository{})
		changeset := entitybuilders.NewChangesetBuilder().
			WithBump(entities.BumpPatch).WithPackages("core").BuildChangeset()
		_, err := engine.Plan(changeset, defaultOptions())
		require.NoError(t, err)

		// when
		err = engine.Discard()

		// then
		require.NoError(t, err)
		assert.Equal(t, release.StateIdle, engine.State())
		assert.Nil(t, engine.Current())
	})
}
