//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/test/domain/commanddoubles"
	"github.com/rios0rios0/relforge/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/relforge/test/infrastructure/repositorydoubles"
)

func TestAuditCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should run every pass and report without failing", func(t *testing.T) {
		// given
		app := entitybuilders.NewPackageBuilder().
			WithName("app").WithVersion("1.0.0").
			WithDependency("left-pad", "~1.3.0").BuildPackage()
		ws := entitybuilders.NewWorkspaceBuilder().
			WithRoot("/repo").WithPackage(app).BuildWorkspace()
		registry := &doubles.SpyRegistryGateway{
			Versions: map[string][]entities.Version{
				"left-pad": {entities.MustParseVersion("1.3.0"), entities.MustParseVersion("2.0.0")},
			},
		}
		cmd := commands.NewAuditCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: ws},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "main"}},
			&doubles.StubRegistryGatewayFactory{Gateway: registry},
		)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.AuditOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"left-pad"}, registry.QueriedNames())
	})

	t.Run("should degrade instead of failing when the registry is unreachable", func(t *testing.T) {
		// given
		app := entitybuilders.NewPackageBuilder().
			WithName("app").WithVersion("1.0.0").
			WithDependency("left-pad", "~1.3.0").BuildPackage()
		ws := entitybuilders.NewWorkspaceBuilder().
			WithRoot("/repo").WithPackage(app).BuildWorkspace()
		registry := &doubles.SpyRegistryGateway{
			Errs: map[string]error{"left-pad": errors.New("connection refused")},
		}
		cmd := commands.NewAuditCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: ws},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "main"}},
			&doubles.StubRegistryGatewayFactory{Gateway: registry},
		)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.AuditOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
	})
}
