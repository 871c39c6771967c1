//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/commands"
	infraRepos "github.com/rios0rios0/relforge/internal/infrastructure/repositories"
	"github.com/rios0rios0/relforge/test/domain/commanddoubles"
	"github.com/rios0rios0/relforge/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/relforge/test/infrastructure/repositorydoubles"
)

func TestStatusCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should summarize the workspace with a pending changeset", func(t *testing.T) {
		// given
		store := infraRepos.NewMemoryChangesetRepository()
		existing := entitybuilders.NewChangesetBuilder().
			WithBranch("feat/login").WithPackages("app").BuildChangeset()
		require.NoError(t, store.Save(context.Background(), existing))

		cmd := commands.NewStatusCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: changesetWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/login"}},
			&doubles.StubChangesetStoreOpener{Store: store},
		)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.StatusOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
	})

	t.Run("should not fail when the branch has no pending changeset", func(t *testing.T) {
		// given
		cmd := commands.NewStatusCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: changesetWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/login"}},
			&doubles.StubChangesetStoreOpener{Store: infraRepos.NewMemoryChangesetRepository()},
		)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.StatusOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
	})
}
