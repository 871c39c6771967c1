//go:build unit

package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/graph"
	"github.com/rios0rios0/relforge/test/domain/entitybuilders"
)

func regularAndPeer() []entities.DependencyKind {
	return []entities.DependencyKind{entities.KindRegular, entities.KindPeer}
}

// monorepoWorkspace builds core <- util <- app with app also on core.
func monorepoWorkspace() *entities.Workspace {
	core := entitybuilders.NewPackageBuilder().
		WithName("core").WithVersion("1.0.0").BuildPackage()
	util := entitybuilders.NewPackageBuilder().
		WithName("util").WithVersion("1.0.0").
		WithDependency("core", "^1.0.0").BuildPackage()
	app := entitybuilders.NewPackageBuilder().
		WithName("app").WithVersion("1.0.0").
		WithDependency("core", "^1.0.0").
		WithDependency("util", "^1.0.0").
		WithDependency("left-pad", "~1.3.0").
		WithDevDependency("typescript", "^5.4.0").BuildPackage()
	return entitybuilders.NewWorkspaceBuilder().
		WithPackages(core, util, app).BuildWorkspace()
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("should separate internal edges from external references", func(t *testing.T) {
		t.Parallel()

		// given
		workspace := monorepoWorkspace()

		// when
		g := graph.Build(workspace)

		// then
		assert.Equal(t, 3, g.Len())
		assert.Equal(t, []string{"app", "core", "util"}, g.Names())

		internal := g.EdgesFrom("app", nil)
		require.Len(t, internal, 2)
		assert.Equal(t, "core", internal[0].To)
		assert.Equal(t, "^1.0.0", internal[0].Spec)
		assert.Equal(t, "util", internal[1].To)

		externals := g.ExternalRefs()
		require.Len(t, externals, 2)
		assert.Equal(t, "left-pad", externals[0].Name)
		assert.Equal(t, entities.KindRegular, externals[0].Kind)
		assert.Equal(t, "typescript", externals[1].Name)
		assert.Equal(t, entities.KindDev, externals[1].Kind)
	})

	t.Run("should ignore self references", func(t *testing.T) {
		t.Parallel()

		// given
		pkg := entitybuilders.NewPackageBuilder().
			WithName("solo").WithDependency("solo", "^1.0.0").BuildPackage()
		workspace := entitybuilders.NewWorkspaceBuilder().WithPackages(pkg).BuildWorkspace()

		// when
		g := graph.Build(workspace)

		// then
		assert.Empty(t, g.EdgesFrom("solo", nil))
		assert.Empty(t, g.ExternalRefs())
	})
}

func TestGraph_DependentsOf(t *testing.T) {
	t.Parallel()

	t.Run("should return sorted dependents matching the kinds", func(t *testing.T) {
		t.Parallel()

		// given
		g := graph.Build(monorepoWorkspace())

		// when
		dependents := g.DependentsOf("core", regularAndPeer())

		// then
		assert.Equal(t, []string{"app", "util"}, dependents)
	})

	t.Run("should exclude edges of other kinds", func(t *testing.T) {
		t.Parallel()

		// given
		lib := entitybuilders.NewPackageBuilder().
			WithName("lib").WithVersion("1.0.0").BuildPackage()
		tool := entitybuilders.NewPackageBuilder().
			WithName("tool").WithVersion("1.0.0").
			WithDevDependency("lib", "^1.0.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(lib, tool).BuildWorkspace())

		// when
		regularOnly := g.DependentsOf("lib", regularAndPeer())
		withDev := g.DependentsOf("lib", nil)

		// then
		assert.Empty(t, regularOnly)
		assert.Equal(t, []string{"tool"}, withDev)
	})

	t.Run("should return packages with zero dependents as leaves", func(t *testing.T) {
		t.Parallel()

		// given
		g := graph.Build(monorepoWorkspace())

		// then
		assert.Empty(t, g.DependentsOf("app", nil))
	})
}

func TestGraph_Cycles(t *testing.T) {
	t.Parallel()

	t.Run("should report no cycles for an acyclic workspace", func(t *testing.T) {
		t.Parallel()

		// given
		g := graph.Build(monorepoWorkspace())

		// then
		assert.Empty(t, g.Cycles(regularAndPeer()))
		assert.Empty(t, g.CycleIndex(regularAndPeer()))
	})

	t.Run("should detect a two-package cycle", func(t *testing.T) {
		t.Parallel()

		// given
		a := entitybuilders.NewPackageBuilder().
			WithName("a").WithDependency("b", "^1.0.0").BuildPackage()
		b := entitybuilders.NewPackageBuilder().
			WithName("b").WithDependency("a", "^1.0.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(a, b).BuildWorkspace())

		// when
		cycles := g.Cycles(regularAndPeer())
		index := g.CycleIndex(regularAndPeer())

		// then
		require.Len(t, cycles, 1)
		assert.Equal(t, []string{"a", "b"}, cycles[0])
		assert.Equal(t, 0, index["a"])
		assert.Equal(t, 0, index["b"])
	})

	t.Run("should keep nodes outside the cycle out of the index", func(t *testing.T) {
		t.Parallel()

		// given
		a := entitybuilders.NewPackageBuilder().
			WithName("a").WithDependency("b", "^1.0.0").BuildPackage()
		b := entitybuilders.NewPackageBuilder().
			WithName("b").WithDependency("a", "^1.0.0").BuildPackage()
		c := entitybuilders.NewPackageBuilder().
			WithName("c").WithDependency("a", "^1.0.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(a, b, c).BuildWorkspace())

		// when
		index := g.CycleIndex(regularAndPeer())

		// then
		assert.Contains(t, index, "a")
		assert.Contains(t, index, "b")
		assert.NotContains(t, index, "c")
	})

	t.Run("should not couple packages linked only by dev edges when dev is excluded", func(t *testing.T) {
		t.Parallel()

		// given
		a := entitybuilders.NewPackageBuilder().
			WithName("a").WithDependency("b", "^1.0.0").BuildPackage()
		b := entitybuilders.NewPackageBuilder().
			WithName("b").WithDevDependency("a", "^1.0.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(a, b).BuildWorkspace())

		// then
		assert.Empty(t, g.Cycles(regularAndPeer()))
		assert.Len(t, g.Cycles(nil), 1)
	})
}

func TestGraph_TopologicalOrder(t *testing.T) {
	t.Parallel()

	t.Run("should order dependencies before dependents", func(t *testing.T) {
		t.Parallel()

		// given
		g := graph.Build(monorepoWorkspace())

		// when
		order, err := g.TopologicalOrder(regularAndPeer())

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"core", "util", "app"}, order)
	})

	t.Run("should break ties lexicographically", func(t *testing.T) {
		t.Parallel()

		// given
		x := entitybuilders.NewPackageBuilder().WithName("x").BuildPackage()
		a := entitybuilders.NewPackageBuilder().WithName("a").BuildPackage()
		m := entitybuilders.NewPackageBuilder().WithName("m").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(x, a, m).BuildWorkspace())

		// when
		order, err := g.TopologicalOrder(regularAndPeer())

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "m", "x"}, order)
	})

	t.Run("should fail with the cycle path when the subgraph is cyclic", func(t *testing.T) {
		t.Parallel()

		// given
		a := entitybuilders.NewPackageBuilder().
			WithName("a").WithDependency("b", "^1.0.0").BuildPackage()
		b := entitybuilders.NewPackageBuilder().
			WithName("b").WithDependency("a", "^1.0.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(a, b).BuildWorkspace())

		// when
		_, err := g.TopologicalOrder(regularAndPeer())

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeCircularDependency, domainErr.Code)
		assert.Contains(t, domainErr.Error(), "a -> b -> a")
	})
}

func TestGraph_OrderWithCycles(t *testing.T) {
	t.Parallel()

	t.Run("should order a cyclic component before its dependents", func(t *testing.T) {
		t.Parallel()

		// given
		a := entitybuilders.NewPackageBuilder().
			WithName("a").WithDependency("b", "^1.0.0").BuildPackage()
		b := entitybuilders.NewPackageBuilder().
			WithName("b").WithDependency("a", "^1.0.0").BuildPackage()
		c := entitybuilders.NewPackageBuilder().
			WithName("c").WithDependency("a", "^1.0.0").BuildPackage()
		g := graph.Build(entitybuilders.NewWorkspaceBuilder().
			WithPackages(a, b, c).BuildWorkspace())

		// when
		order := g.OrderWithCycles(regularAndPeer())

		// then
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("should match the strict order for acyclic graphs", func(t *testing.T) {
		t.Parallel()

		// given
		g := graph.Build(monorepoWorkspace())

		// when
		strict, err := g.TopologicalOrder(regularAndPeer())
		require.NoError(t, err)
		tolerant := g.OrderWithCycles(regularAndPeer())

		// then
		assert.Equal(t, strict, tolerant)
	})
}
