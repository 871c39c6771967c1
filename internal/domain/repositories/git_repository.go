package repositories

import (
	"context"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// GitRepository is the slice of git the core consumes. Nothing outside an
// implementation of this interface touches the repository directly.
type GitRepository interface {
	// CurrentBranch returns the checked-out branch name. A detached HEAD
	// is a git error because changesets are keyed by branch.
	CurrentBranch() (string, error)

	// HeadCommit returns the full hash of the current HEAD commit.
	HeadCommit() (string, error)

	// ShortHash resolves a revision and abbreviates its hash to length.
	ShortHash(revision string, length int) (string, error)

	// ListTags returns every tag name in the repository.
	ListTags() ([]string, error)

	// CommitsBetween returns the commits in (fromRef, toRef], oldest first.
	// An empty fromRef starts from the repository's root commit; an empty
	// toRef means HEAD. A non-empty pathFilter restricts the walk to
	// commits touching that directory prefix.
	CommitsBetween(ctx context.Context, fromRef, toRef, pathFilter string) ([]entities.Commit, error)

	// CreateTag creates an annotated tag at HEAD.
	CreateTag(name, message string) error

	// UserName returns the configured git user.name, empty when unset.
	UserName() string
}

// GitRepositoryOpener opens the repository containing a directory,
// searching upward for the .git directory the way the git CLI does.
type GitRepositoryOpener interface {
	Open(dir string) (GitRepository, error)
}
