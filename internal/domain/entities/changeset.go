package entities

import (
	"slices"
	"time"
)

// Changeset is a pending, branch-scoped record of the intent to bump a set
// of packages at the next release. Keyed by branch.
type Changeset struct {
	Branch       string    `json:"branch"`
	Bump         Bump      `json:"bump"`
	Packages     []string  `json:"packages"`
	Environments []string  `json:"environments"`
	Changes      []string  `json:"changes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// LoadedRevision is the updated_at the record carried when it was read
	// from the store. Stores compare it against the persisted record on
	// save to detect concurrent writers.
	LoadedRevision time.Time `json:"-"`
}

// NewChangeset starts an empty changeset for a branch.
func NewChangeset(branch string, bump Bump, now time.Time) *Changeset {
	timestamp := now.UTC().Truncate(time.Second)
	return &Changeset{
		Branch:       branch,
		Bump:         bump,
		Packages:     []string{},
		Environments: []string{},
		Changes:      []string{},
		CreatedAt:    timestamp,
		UpdatedAt:    timestamp,
	}
}

// AddPackage appends a package keeping insertion order, skipping duplicates.
// It reports whether the set changed.
func (c *Changeset) AddPackage(name string) bool {
	if slices.Contains(c.Packages, name) {
		return false
	}
	c.Packages = append(c.Packages, name)
	return true
}

// HasPackage reports membership in the package set.
func (c *Changeset) HasPackage(name string) bool {
	return slices.Contains(c.Packages, name)
}

// AddCommit appends a commit hash, skipping duplicates.
func (c *Changeset) AddCommit(hash string) bool {
	if slices.Contains(c.Changes, hash) {
		return false
	}
	c.Changes = append(c.Changes, hash)
	return true
}

// SetBump replaces the bump kind.
func (c *Changeset) SetBump(bump Bump) { c.Bump = bump }

// SetEnvironments replaces the environment set, deduplicating while
// keeping the caller's order.
func (c *Changeset) SetEnvironments(environments []string) {
	deduped := make([]string, 0, len(environments))
	for _, environment := range environments {
		if !slices.Contains(deduped, environment) {
			deduped = append(deduped, environment)
		}
	}
	c.Environments = deduped
}

// Touch advances the modification timestamp.
func (c *Changeset) Touch(now time.Time) {
	c.UpdatedAt = now.UTC().Truncate(time.Second)
}

// Validate checks the record against the configured environment set.
// An empty package set and an environment outside availableEnvironments
// are both rejected.
func (c *Changeset) Validate(availableEnvironments []string) error {
	if len(c.Packages) == 0 {
		return NewEmptyChangesetError(c.Branch)
	}
	for _, environment := range c.Environments {
		if !slices.Contains(availableEnvironments, environment) {
			return NewUnknownEnvironmentError(environment, availableEnvironments)
		}
	}
	return nil
}

// ReleaseInfo records how an archived changeset was applied.
type ReleaseInfo struct {
	AppliedBy string            `json:"applied_by"`
	GitCommit string            `json:"git_commit"`
	AppliedAt time.Time         `json:"applied_at"`
	Versions  map[string]string `json:"versions"`
}

// ArchivedChangeset is the write-once record a release leaves in history.
// The changeset fields flatten into the same JSON object, with release_info
// embedded alongside them.
type ArchivedChangeset struct {
	Changeset
	ReleaseInfo ReleaseInfo `json:"release_info"`
}
