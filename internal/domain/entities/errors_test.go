//go:build unit

package entities_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

func TestErrorKind(t *testing.T) {
	t.Parallel()

	t.Run("should classify io, git, registry and partial failures as transient", func(t *testing.T) {
		t.Parallel()

		assert.True(t, entities.KindIO.Transient())
		assert.True(t, entities.KindGit.Transient())
		assert.True(t, entities.KindRegistry.Transient())
		assert.True(t, entities.KindPartialFailure.Transient())
	})

	t.Run("should classify validation, not-found, conflict and configuration as terminal", func(t *testing.T) {
		t.Parallel()

		assert.False(t, entities.KindValidation.Transient())
		assert.False(t, entities.KindNotFound.Transient())
		assert.False(t, entities.KindConflict.Transient())
		assert.False(t, entities.KindConfiguration.Transient())
	})

	t.Run("should map kinds to sysexits codes", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 78, entities.KindConfiguration.ExitCode())
		assert.Equal(t, 65, entities.KindValidation.ExitCode())
		assert.Equal(t, 65, entities.KindNotFound.ExitCode())
		assert.Equal(t, 74, entities.KindIO.ExitCode())
		assert.Equal(t, 69, entities.KindRegistry.ExitCode())
		assert.Equal(t, 70, entities.KindGit.ExitCode())
	})
}

func TestDomainError(t *testing.T) {
	t.Parallel()

	t.Run("should render a single-line message with the cause", func(t *testing.T) {
		t.Parallel()

		// given
		cause := errors.New("permission denied")
		err := entities.NewIOError("write", "/repo/package.json", cause)

		// then
		assert.Equal(t, `failed to write "/repo/package.json": permission denied`, err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("should carry written paths on partial failures", func(t *testing.T) {
		t.Parallel()

		// given
		err := entities.NewApplyFailed(
			"/repo/packages/app/package.json",
			errors.New("disk full"),
			[]string{"/repo/packages/core/package.json"},
		)

		// then
		assert.Equal(t, entities.KindPartialFailure, err.Kind)
		assert.Equal(t, []string{"/repo/packages/core/package.json"}, err.Paths)
		assert.True(t, err.Transient())
	})

	t.Run("should describe a concurrent modification with both revisions", func(t *testing.T) {
		t.Parallel()

		// given
		err := entities.NewConcurrentModification("feat/x", "2026-08-24T10:00:00Z", "2026-08-24T10:05:00Z")

		// then
		assert.Equal(t, entities.CodeConcurrentModification, err.Code)
		assert.Contains(t, err.Error(), "feat/x")
		assert.Contains(t, err.Error(), "2026-08-24T10:00:00Z")
		assert.Contains(t, err.Error(), "2026-08-24T10:05:00Z")
	})

	t.Run("should render a dependency cycle as a path", func(t *testing.T) {
		t.Parallel()

		// given
		err := entities.NewCircularDependency([]string{"a", "b", "a"})

		// then
		assert.Equal(t, "circular dependency: a -> b -> a", err.Error())
	})
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	t.Run("should map nil to zero", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 0, entities.ExitCodeFor(nil))
	})

	t.Run("should map wrapped domain errors through the chain", func(t *testing.T) {
		t.Parallel()

		// given
		inner := entities.NewChangesetNotFound("feat/x")
		wrapped := errors.Join(errors.New("context"), inner)

		// then
		assert.Equal(t, 65, entities.ExitCodeFor(wrapped))
	})

	t.Run("should map plain errors to the software code", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 70, entities.ExitCodeFor(errors.New("boom")))
	})
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	t.Run("should follow the kind through wrapping", func(t *testing.T) {
		t.Parallel()

		// given
		gitErr := entities.NewGitError("resolve HEAD", errors.New("not a repository"))

		// then
		assert.True(t, entities.IsTransient(gitErr))
		assert.False(t, entities.IsTransient(entities.NewPackageNotFound("x")))
		assert.False(t, entities.IsTransient(errors.New("plain")))
	})
}
