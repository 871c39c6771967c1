//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/commands"
	infraRepos "github.com/rios0rios0/relforge/internal/infrastructure/repositories"
	"github.com/rios0rios0/relforge/test/domain/commanddoubles"
	"github.com/rios0rios0/relforge/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/relforge/test/infrastructure/repositorydoubles"
)

func TestChangesetDeleteCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should delete the pending changeset of the current branch", func(t *testing.T) {
		// given
		store := infraRepos.NewMemoryChangesetRepository()
		existing := entitybuilders.NewChangesetBuilder().WithBranch("feat/login").BuildChangeset()
		require.NoError(t, store.Save(context.Background(), existing))

		cmd := commands.NewChangesetDeleteCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: changesetWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/login"}},
			&doubles.StubChangesetStoreOpener{Store: store},
		)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.ChangesetDeleteOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
		exists, existsErr := store.Exists(context.Background(), "feat/login")
		require.NoError(t, existsErr)
		assert.False(t, exists)
	})

	t.Run("should delete a named branch without consulting git", func(t *testing.T) {
		// given
		store := infraRepos.NewMemoryChangesetRepository()
		existing := entitybuilders.NewChangesetBuilder().WithBranch("feat/stale").BuildChangeset()
		require.NoError(t, store.Save(context.Background(), existing))

		opener := &doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "main"}}
		cmd := commands.NewChangesetDeleteCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: changesetWorkspace()},
			opener,
			&doubles.StubChangesetStoreOpener{Store: store},
		)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.ChangesetDeleteOptions{
			Root: "/repo", Branch: "feat/stale",
		})

		// then
		require.NoError(t, err)
		assert.Empty(t, opener.OpenedDirs)
		exists, existsErr := store.Exists(context.Background(), "feat/stale")
		require.NoError(t, existsErr)
		assert.False(t, exists)
	})

	t.Run("should be a no-op when the branch has nothing pending", func(t *testing.T) {
		// given
		cmd := commands.NewChangesetDeleteCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: changesetWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/login"}},
			&doubles.StubChangesetStoreOpener{Store: infraRepos.NewMemoryChangesetRepository()},
		)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.ChangesetDeleteOptions{Root: "/repo"})

		// then
		require.NoError(t, err)
	})
}
