//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	infraRepos "github.com/rios0rios0/relforge/internal/infrastructure/repositories"
	"github.com/rios0rios0/relforge/test/domain/commanddoubles"
	"github.com/rios0rios0/relforge/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/relforge/test/infrastructure/repositorydoubles"
)

func upgradeVersions(raws ...string) []entities.Version {
	parsed := make([]entities.Version, 0, len(raws))
	for _, raw := range raws {
		parsed = append(parsed, entities.MustParseVersion(raw))
	}
	return parsed
}

func TestUpgradeCommandExecute(t *testing.T) {
	t.Parallel()

	newWorkspace := func() *entities.Workspace {
		app := entitybuilders.NewPackageBuilder().
			WithName("app").WithVersion("1.0.0").
			WithDependency("left-pad", "~1.3.0").BuildPackage()
		return entitybuilders.NewWorkspaceBuilder().
			WithRoot("/repo").WithPackage(app).BuildWorkspace()
	}

	t.Run("should rewrite manifests with the upgraded specs", func(t *testing.T) {
		// given
		ws := newWorkspace()
		registry := &doubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{"left-pad": upgradeVersions("1.3.0", "1.3.2")},
		}
		manifests := &doubles.SpyManifestRepository{}
		cmd := commands.NewUpgradeCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: ws},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/deps"}},
			&doubles.StubChangesetStoreOpener{Store: infraRepos.NewMemoryChangesetRepository()},
			manifests,
			&doubles.StubRegistryGatewayFactory{Gateway: registry},
			&doubles.FixedClock{Time: time.Now()},
		)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.UpgradeOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
		require.Len(t, manifests.WrittenPaths, 1)
		spec, ok := ws.Package("app").Manifest.DependencySpec(entities.KindRegular, "left-pad")
		require.True(t, ok)
		assert.Equal(t, "~1.3.2", spec, "the spec keeps its prefix")
	})

	t.Run("should pass the configured registry URL and timeout to the gateway", func(t *testing.T) {
		// given
		factory := &doubles.StubRegistryGatewayFactory{Gateway: &doubles.SpyRegistryGateway{}}
		settings := config.Default()
		settings.Upgrade.RegistryURL = "https://registry.example.com"
		settings.Upgrade.TimeoutSeconds = 5
		cmd := commands.NewUpgradeCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: newWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/deps"}},
			&doubles.StubChangesetStoreOpener{Store: infraRepos.NewMemoryChangesetRepository()},
			&doubles.SpyManifestRepository{},
			factory,
			&doubles.FixedClock{Time: time.Now()},
		)

		// when
		err := cmd.Execute(context.Background(), settings, commands.UpgradeOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"https://registry.example.com"}, factory.BaseURLs)
		assert.Equal(t, []time.Duration{5 * time.Second}, factory.Timeouts)
	})

	t.Run("should plan without writing on a dry run", func(t *testing.T) {
		// given
		registry := &doubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{"left-pad": upgradeVersions("1.3.0", "1.3.2")},
		}
		manifests := &doubles.SpyManifestRepository{}
		cmd := commands.NewUpgradeCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: newWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/deps"}},
			&doubles.StubChangesetStoreOpener{Store: infraRepos.NewMemoryChangesetRepository()},
			manifests,
			&doubles.StubRegistryGatewayFactory{Gateway: registry},
			&doubles.FixedClock{Time: time.Now()},
		)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.UpgradeOptions{Root: "/repo", DryRun: true})

		// then
		require.NoError(t, err)
		assert.Empty(t, manifests.WrittenPaths)
		assert.Equal(t, []string{"left-pad"}, registry.QueriedNames())
	})

	t.Run("should do nothing when every dependency is up to date", func(t *testing.T) {
		// given
		registry := &doubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{"left-pad": upgradeVersions("1.3.0")},
		}
		manifests := &doubles.SpyManifestRepository{}
		cmd := commands.NewUpgradeCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: newWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/deps"}},
			&doubles.StubChangesetStoreOpener{Store: infraRepos.NewMemoryChangesetRepository()},
			manifests,
			&doubles.StubRegistryGatewayFactory{Gateway: registry},
			&doubles.FixedClock{Time: time.Now()},
		)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.UpgradeOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
		assert.Empty(t, manifests.WrittenPaths)
	})

	t.Run("should create a changeset for the branch when auto changeset is on", func(t *testing.T) {
		// given
		store := infraRepos.NewMemoryChangesetRepository()
		registry := &doubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{"left-pad": upgradeVersions("1.3.0", "1.3.2")},
		}
		settings := config.Default()
		settings.Upgrade.AutoChangeset = true
		clock := &doubles.FixedClock{Time: time.Date(2026, 5, 2, 16, 40, 11, 0, time.UTC)}
		cmd := commands.NewUpgradeCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: newWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/deps"}},
			&doubles.StubChangesetStoreOpener{Store: store},
			&doubles.SpyManifestRepository{},
			&doubles.StubRegistryGatewayFactory{Gateway: registry},
			clock,
		)

		// when
		err := cmd.Execute(context.Background(), settings, commands.UpgradeOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
		changeset, loadErr := store.Load(context.Background(), "feat/deps")
		require.NoError(t, loadErr)
		assert.Equal(t, entities.BumpPatch, changeset.Bump)
		assert.Equal(t, []string{"app"}, changeset.Packages)
		assert.Equal(t, clock.Time, changeset.CreatedAt)
	})

	t.Run("should force a major bump when an upgrade crosses a major version", func(t *testing.T) {
		// given
		store := infraRepos.NewMemoryChangesetRepository()
		registry := &doubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{"left-pad": upgradeVersions("1.3.0", "2.0.0")},
		}
		settings := config.Default()
		settings.Upgrade.AutoChangeset = true
		cmd := commands.NewUpgradeCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: newWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/deps"}},
			&doubles.StubChangesetStoreOpener{Store: store},
			&doubles.SpyManifestRepository{},
			&doubles.StubRegistryGatewayFactory{Gateway: registry},
			&doubles.FixedClock{Time: time.Now()},
		)

		// when
		err := cmd.Execute(context.Background(), settings, commands.UpgradeOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
		changeset, loadErr := store.Load(context.Background(), "feat/deps")
		require.NoError(t, loadErr)
		assert.Equal(t, entities.BumpMajor, changeset.Bump)
	})

	t.Run("should merge into an existing changeset keeping the larger bump", func(t *testing.T) {
		// given
		store := infraRepos.NewMemoryChangesetRepository()
		existing := entitybuilders.NewChangesetBuilder().
			WithBranch("feat/deps").WithBump(entities.BumpMinor).WithPackages("lib").BuildChangeset()
		require.NoError(t, store.Save(context.Background(), existing))

		registry := &doubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{"left-pad": upgradeVersions("1.3.0", "1.3.2")},
		}
		settings := config.Default()
		settings.Upgrade.AutoChangeset = true
		cmd := commands.NewUpgradeCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: newWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/deps"}},
			&doubles.StubChangesetStoreOpener{Store: store},
			&doubles.SpyManifestRepository{},
			&doubles.StubRegistryGatewayFactory{Gateway: registry},
			&doubles.FixedClock{Time: time.Now()},
		)

		// when
		err := cmd.Execute(context.Background(), settings, commands.UpgradeOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
		changeset, loadErr := store.Load(context.Background(), "feat/deps")
		require.NoError(t, loadErr)
		assert.Equal(t, entities.BumpMinor, changeset.Bump, "the existing bump outranks a patch upgrade")
		assert.Equal(t, []string{"lib", "app"}, changeset.Packages)
	})
}
