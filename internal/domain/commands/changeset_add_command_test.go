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

func TestChangesetAddCommandExecute(t *testing.T) {
	t.Parallel()

	seedChangeset := func(t *testing.T, store *infraRepos.MemoryChangesetRepository) {
		t.Helper()
		existing := entitybuilders.NewChangesetBuilder().
			WithBranch("feat/login").WithBump(entities.BumpPatch).WithPackages("app").BuildChangeset()
		require.NoError(t, store.Save(context.Background(), existing))
	}

	newCommand := func(store *infraRepos.MemoryChangesetRepository, clock *doubles.FixedClock) *commands.ChangesetAddCommand {
		return commands.NewChangesetAddCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: changesetWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: &doubles.StubGitRepository{Branch: "feat/login"}},
			&doubles.StubChangesetStoreOpener{Store: store},
			clock,
		)
	}

	t.Run("should add packages and commits to the pending record", func(t *testing.T) {
		// given
		store := infraRepos.NewMemoryChangesetRepository()
		seedChangeset(t, store)
		clock := &doubles.FixedClock{Time: time.Date(2026, 7, 2, 11, 15, 0, 0, time.UTC)}
		cmd := newCommand(store, clock)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.ChangesetAddOptions{
			Root:     "/repo",
			Packages: []string{"lib"},
			Commits:  []string{"4fa2c1d"},
		})

		// then
		require.NoError(t, err)
		changeset, loadErr := store.Load(context.Background(), "feat/login")
		require.NoError(t, loadErr)
		assert.Equal(t, []string{"app", "lib"}, changeset.Packages)
		assert.Equal(t, []string{"4fa2c1d"}, changeset.Changes)
		assert.Equal(t, clock.Time, changeset.UpdatedAt)
	})

	t.Run("should replace the bump and environments when asked", func(t *testing.T) {
		// given
		store := infraRepos.NewMemoryChangesetRepository()
		seedChangeset(t, store)
		cmd := newCommand(store, &doubles.FixedClock{Time: time.Now()})

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.ChangesetAddOptions{
			Root:         "/repo",
			Bump:         "major",
			Environments: []string{"production"},
		})

		// then
		require.NoError(t, err)
		changeset, loadErr := store.Load(context.Background(), "feat/login")
		require.NoError(t, loadErr)
		assert.Equal(t, entities.BumpMajor, changeset.Bump)
		assert.Equal(t, []string{"production"}, changeset.Environments)
	})

	t.Run("should leave the record untouched when nothing changes", func(t *testing.T) {
		// given
		store := infraRepos.NewMemoryChangesetRepository()
		seedChangeset(t, store)
		before, loadErr := store.Load(context.Background(), "feat/login")
		require.NoError(t, loadErr)
		cmd := newCommand(store, &doubles.FixedClock{Time: time.Now()})

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.ChangesetAddOptions{
			Root:     "/repo",
			Packages: []string{"app"}, // already tracked
			Bump:     "patch",         // already the bump
		})

		// then
		require.NoError(t, err)
		after, loadErr := store.Load(context.Background(), "feat/login")
		require.NoError(t, loadErr)
		assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	})

	t.Run("should fail when the branch has no pending changeset", func(t *testing.T) {
		// given
		cmd := newCommand(infraRepos.NewMemoryChangesetRepository(), &doubles.FixedClock{Time: time.Now()})

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.ChangesetAddOptions{
			Root: "/repo", Packages: []string{"lib"},
		})

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeChangesetNotFound, domainErr.Code)
	})

	t.Run("should reject a commit that does not resolve in the repository", func(t *testing.T) {
		// given
		store := infraRepos.NewMemoryChangesetRepository()
		seedChangeset(t, store)
		repo := &doubles.StubGitRepository{
			Branch:        "feat/login",
			ShortHashErrs: map[string]error{"deadbee": entities.NewGitError("resolve", assert.AnError)},
		}
		cmd := commands.NewChangesetAddCommand(
			&commanddoubles.StubWorkspaceLoader{Workspace: changesetWorkspace()},
			&doubles.StubGitRepositoryOpener{Repo: repo},
			&doubles.StubChangesetStoreOpener{Store: store},
			&doubles.FixedClock{Time: time.Now()},
		)

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.ChangesetAddOptions{
			Root: "/repo", Commits: []string{"deadbee"},
		})

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeCommitNotFound, domainErr.Code)
		changeset, loadErr := store.Load(context.Background(), "feat/login")
		require.NoError(t, loadErr)
		assert.Empty(t, changeset.Changes, "the unresolved commit must not be recorded")
	})

	t.Run("should reject a package outside the workspace", func(t *testing.T) {
		// given
		store := infraRepos.NewMemoryChangesetRepository()
		seedChangeset(t, store)
		cmd := newCommand(store, &doubles.FixedClock{Time: time.Now()})

		// when
		err := cmd.Execute(context.Background(), config.Default(), commands.ChangesetAddOptions{
			Root: "/repo", Packages: []string{"ghost"},
		})

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodePackageNotFound, domainErr.Code)
	})
}
