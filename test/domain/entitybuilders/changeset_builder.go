//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// ChangesetBuilder helps create changesets with a fluent interface.
type ChangesetBuilder struct {
	*testkit.BaseBuilder
	branch       string
	bump         entities.Bump
	packages     []string
	environments []string
	changes      []string
	createdAt    time.Time
}

// NewChangesetBuilder creates a new changeset builder with sensible defaults.
func NewChangesetBuilder() *ChangesetBuilder {
	return &ChangesetBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		branch:      "feat/test",
		bump:        entities.BumpPatch,
		packages:    []string{"test-package"},
		createdAt:   time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC),
	}
}

// WithBranch sets the branch key.
func (b *ChangesetBuilder) WithBranch(branch string) *ChangesetBuilder {
	b.branch = branch
	return b
}

// WithBump sets the bump kind.
func (b *ChangesetBuilder) WithBump(bump entities.Bump) *ChangesetBuilder {
	b.bump = bump
	return b
}

// WithPackages replaces the package set.
func (b *ChangesetBuilder) WithPackages(packages ...string) *ChangesetBuilder {
	b.packages = packages
	return b
}

// WithEnvironments replaces the environment set.
func (b *ChangesetBuilder) WithEnvironments(environments ...string) *ChangesetBuilder {
	b.environments = environments
	return b
}

// WithChanges replaces the tracked commit hashes.
func (b *ChangesetBuilder) WithChanges(changes ...string) *ChangesetBuilder {
	b.changes = changes
	return b
}

// WithCreatedAt sets the creation timestamp.
func (b *ChangesetBuilder) WithCreatedAt(createdAt time.Time) *ChangesetBuilder {
	b.createdAt = createdAt
	return b
}

// Build creates the changeset (satisfies testkit.Builder interface).
func (b *ChangesetBuilder) Build() interface{} {
	return b.BuildChangeset()
}

// BuildChangeset creates the changeset with a concrete return type.
func (b *ChangesetBuilder) BuildChangeset() *entities.Changeset {
	changeset := entities.NewChangeset(b.branch, b.bump, b.createdAt)
	for _, name := range b.packages {
		changeset.AddPackage(name)
	}
	changeset.SetEnvironments(b.environments)
	for _, hash := range b.changes {
		changeset.AddCommit(hash)
	}
	return changeset
}

// Reset clears the builder state, allowing it to be reused.
func (b *ChangesetBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.branch = "feat/test"
	b.bump = entities.BumpPatch
	b.packages = []string{"test-package"}
	b.environments = nil
	b.changes = nil
	b.createdAt = time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	return b
}

// Clone creates a deep copy of the ChangesetBuilder.
func (b *ChangesetBuilder) Clone() testkit.Builder {
	return &ChangesetBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		branch:       b.branch,
		bump:         b.bump,
		packages:     append([]string(nil), b.packages...),
		environments: append([]string(nil), b.environments...),
		changes:      append([]string(nil), b.changes...),
		createdAt:    b.createdAt,
	}
}
