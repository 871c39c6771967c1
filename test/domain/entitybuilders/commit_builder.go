//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// CommitBuilder helps create commits with a fluent interface.
type CommitBuilder struct {
	*testkit.BaseBuilder
	hash       string
	message    string
	authorName string
	authorDate time.Time
}

// NewCommitBuilder creates a new commit builder with sensible defaults.
func NewCommitBuilder() *CommitBuilder {
	return &CommitBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		hash:        "abc1234def5678abc1234def5678abc1234def56",
		message:     "feat: test change",
		authorName:  "dev",
		authorDate:  time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC),
	}
}

// WithHash sets the commit hash.
func (b *CommitBuilder) WithHash(hash string) *CommitBuilder {
	b.hash = hash
	return b
}

// WithMessage sets the commit message.
func (b *CommitBuilder) WithMessage(message string) *CommitBuilder {
	b.message = message
	return b
}

// WithAuthorName sets the author name.
func (b *CommitBuilder) WithAuthorName(authorName string) *CommitBuilder {
	b.authorName = authorName
	return b
}

// WithAuthorDate sets the author date.
func (b *CommitBuilder) WithAuthorDate(authorDate time.Time) *CommitBuilder {
	b.authorDate = authorDate
	return b
}

// Build creates the commit (satisfies testkit.Builder interface).
func (b *CommitBuilder) Build() interface{} {
	return b.BuildCommit()
}

// BuildCommit creates the commit with a concrete return type.
func (b *CommitBuilder) BuildCommit() entities.Commit {
	return entities.Commit{
		Hash:       b.hash,
		Message:    b.message,
		AuthorName: b.authorName,
		AuthorDate: b.authorDate,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *CommitBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.hash = "abc1234def5678abc1234def5678abc1234def56"
	b.message = "feat: test change"
	b.authorName = "dev"
	b.authorDate = time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	return b
}

// Clone creates a deep copy of the CommitBuilder.
func (b *CommitBuilder) Clone() testkit.Builder {
	return &CommitBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		hash:        b.hash,
		message:     b.message,
		authorName:  b.authorName,
		authorDate:  b.authorDate,
	}
}
