//go:build unit

package upgrade_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
	"github.com/rios0rios0/relforge/internal/graph"
	"github.com/rios0rios0/relforge/internal/upgrade"
	"github.com/rios0rios0/relforge/test/domain/entitybuilders"
	"github.com/rios0rios0/relforge/test/infrastructure/repositorydoubles"
)

func allKindsOptions() upgrade.Options {
	return upgrade.Options{
		Kinds:       []entities.DependencyKind{entities.KindRegular, entities.KindDev},
		Concurrency: 4,
		AllowMajor:  true,
		AllowMinor:  true,
		AllowPatch:  true,
	}
}

func versions(raws ...string) []entities.Version {
	parsed := make([]entities.Version, 0, len(raws))
	for _, raw := range raws {
		parsed = append(parsed, entities.MustParseVersion(raw))
	}
	return parsed
}

func TestPlanner_Plan(t *testing.T) {
	t.Parallel()

	t.Run("should classify references against the newest stable version", func(t *testing.T) {
		t.Parallel()

		// given
		app := entitybuilders.NewPackageBuilder().
			WithName("app").WithVersion("1.0.0").
			WithDependency("left-pad", "~1.3.0").
			WithDevDependency("typescript", "^5.4.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(app).BuildWorkspace())
		registry := &repositorydoubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{
				"left-pad":   versions("1.3.0", "1.3.2"),
				"typescript": versions("5.4.0", "5.5.0", "6.0.0-beta.1"),
			},
		}

		// when
		rows, err := upgrade.NewPlanner(registry).Plan(context.Background(), g, allKindsOptions())

		// then
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "left-pad", rows[0].Dependency)
		assert.Equal(t, upgrade.ClassPatch, rows[0].Class)
		assert.Equal(t, "1.3.2", rows[0].Latest.String())
		assert.Equal(t, "typescript", rows[1].Dependency)
		assert.Equal(t, upgrade.ClassMinor, rows[1].Class)
		assert.Equal(t, "5.5.0", rows[1].Latest.String(), "prereleases are not upgrade targets")
	})

	t.Run("should drop rows excluded by the filter flags", func(t *testing.T) {
		t.Parallel()

		// given
		app := entitybuilders.NewPackageBuilder().
			WithName("app").WithVersion("1.0.0").
			WithDependency("left-pad", "^1.3.0").
			WithDependency("react", "^17.0.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(app).BuildWorkspace())
		registry := &repositorydoubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{
				"left-pad": versions("1.3.0"), // up to date
				"react":    versions("17.0.0", "18.2.0"),
			},
		}
		opts := allKindsOptions()
		opts.AllowMajor = false

		// when
		rows, err := upgrade.NewPlanner(registry).Plan(context.Background(), g, opts)

		// then
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("should query each dependency once across packages", func(t *testing.T) {
		t.Parallel()

		// given
		one := entitybuilders.NewPackageBuilder().
			WithName("one").WithVersion("1.0.0").
			WithDependency("lodash", "^4.17.0").BuildPackage()
		two := entitybuilders.NewPackageBuilder().
			WithName("two").WithVersion("1.0.0").
			WithDependency("lodash", "~4.17.20").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(one, two).BuildWorkspace())
		registry := &repositorydoubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{
				"lodash": versions("4.17.0", "4.17.20", "4.17.21"),
			},
		}

		// when
		rows, err := upgrade.NewPlanner(registry).Plan(context.Background(), g, allKindsOptions())

		// then
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, []string{"lodash"}, registry.QueriedNames())
	})

	t.Run("should skip specs without a version payload", func(t *testing.T) {
		t.Parallel()

		// given
		app := entitybuilders.NewPackageBuilder().
			WithName("app").WithVersion("1.0.0").
			WithDependency("linked", "latest").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(app).BuildWorkspace())
		registry := &repositorydoubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{
				"linked": versions("9.9.9"),
			},
		}

		// when
		rows, err := upgrade.NewPlanner(registry).Plan(context.Background(), g, allKindsOptions())

		// then
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("should surface deprecation from the registry metadata", func(t *testing.T) {
		t.Parallel()

		// given
		app := entitybuilders.NewPackageBuilder().
			WithName("app").WithVersion("1.0.0").
			WithDependency("request", "^2.88.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(app).BuildWorkspace())
		registry := &repositorydoubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{
				"request": versions("2.88.0", "2.88.2"),
			},
			Meta: map[string]*repositories.RegistryMetadata{
				"request": {
					Deprecated: true,
					LatestTag:  entities.MustParseVersion("2.88.2"),
				},
			},
		}

		// when
		rows, err := upgrade.NewPlanner(registry).Plan(context.Background(), g, allKindsOptions())

		// then
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Deprecated)
	})

	t.Run("should propagate a registry failure", func(t *testing.T) {
		t.Parallel()

		// given
		app := entitybuilders.NewPackageBuilder().
			WithName("app").WithVersion("1.0.0").
			WithDependency("left-pad", "^1.3.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(app).BuildWorkspace())
		registry := &repositorydoubles.SpyRegistryGateway{
			Errs: map[string]error{
				"left-pad": entities.NewRegistryError("left-pad", errors.New("boom")),
			},
		}

		// when
		_, err := upgrade.NewPlanner(registry).Plan(context.Background(), g, allKindsOptions())

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeRegistryFailed, domainErr.Code)
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite specs preserving their prefixes", func(t *testing.T) {
		t.Parallel()

		// given
		app := entitybuilders.NewPackageBuilder().
			WithName("app").WithVersion("1.0.0").
			WithDependency("left-pad", "~1.3.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(app).BuildWorkspace())
		manifests := &repositorydoubles.SpyManifestRepository{}
		rows := []upgrade.Row{{
			Package:    "app",
			Dependency: "left-pad",
			Kind:       entities.KindRegular,
			Spec:       "~1.3.0",
			Current:    "1.3.0",
			Latest:     entities.MustParseVersion("1.3.2"),
			Class:      upgrade.ClassPatch,
		}}

		// when
		written, err := upgrade.Apply(g, manifests, rows)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{g.Get("app").Manifest.Path}, written)
		spec, ok := g.Get("app").Manifest.DependencySpec(entities.KindRegular, "left-pad")
		require.True(t, ok)
		assert.Equal(t, "~1.3.2", spec)
	})

	t.Run("should report written paths when a write fails", func(t *testing.T) {
		t.Parallel()

		// given
		app := entitybuilders.NewPackageBuilder().
			WithName("app").WithVersion("1.0.0").
			WithDependency("left-pad", "^1.3.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(app).BuildWorkspace())
		manifests := &repositorydoubles.SpyManifestRepository{
			WriteErrs: map[string]error{
				g.Get("app").Manifest.Path: errors.New("read-only filesystem"),
			},
		}
		rows := []upgrade.Row{{
			Package:    "app",
			Dependency: "left-pad",
			Kind:       entities.KindRegular,
			Spec:       "^1.3.0",
			Latest:     entities.MustParseVersion("1.3.2"),
			Class:      upgrade.ClassPatch,
		}}

		// when
		written, err := upgrade.Apply(g, manifests, rows)

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeApplyFailed, domainErr.Code)
		assert.Empty(t, written)
	})
}

func TestHighestClass(t *testing.T) {
	t.Parallel()

	t.Run("should return the largest class", func(t *testing.T) {
		t.Parallel()

		rows := []upgrade.Row{
			{Class: upgrade.ClassPatch},
			{Class: upgrade.ClassMajor},
			{Class: upgrade.ClassMinor},
		}
		assert.Equal(t, upgrade.ClassMajor, upgrade.HighestClass(rows))
		assert.Equal(t, upgrade.ClassNone, upgrade.HighestClass(nil))
	})
}
