//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// CommitRangeCall records one CommitsBetween invocation.
type CommitRangeCall struct {
	FromRef    string
	ToRef      string
	PathFilter string
}

// StubGitRepository implements repositories.GitRepository from canned data,
// recording range queries and created tags.
type StubGitRepository struct {
	Branch    string
	BranchErr error

	Head    string
	HeadErr error

	ShortHashes   map[string]string
	ShortHashErrs map[string]error

	Tags    []string
	TagsErr error

	Commits    []entities.Commit
	CommitsErr error
	RangeCalls []CommitRangeCall

	CreatedTags  map[string]string
	CreateTagErr error

	User string
}

var _ repositories.GitRepository = (*StubGitRepository)(nil)

func (g *StubGitRepository) CurrentBranch() (string, error) {
	return g.Branch, g.BranchErr
}

func (g *StubGitRepository) HeadCommit() (string, error) {
	return g.Head, g.HeadErr
}

func (g *StubGitRepository) ShortHash(revision string, length int) (string, error) {
	if err, ok := g.ShortHashErrs[revision]; ok {
		return "", err
	}
	if short, ok := g.ShortHashes[revision]; ok {
		return short, nil
	}
	if len(revision) > length && length > 0 {
		return revision[:length], nil
	}
	return revision, nil
}

func (g *StubGitRepository) ListTags() ([]string, error) {
	return g.Tags, g.TagsErr
}

func (g *StubGitRepository) CommitsBetween(
	_ context.Context, fromRef, toRef, pathFilter string,
) ([]entities.Commit, error) {
	g.RangeCalls = append(g.RangeCalls, CommitRangeCall{
		FromRef:    fromRef,
		ToRef:      toRef,
		PathFilter: pathFilter,
	})
	return g.Commits, g.CommitsErr
}

func (g *StubGitRepository) CreateTag(name, message string) error {
	if g.CreateTagErr != nil {
		return g.CreateTagErr
	}
	if g.CreatedTags == nil {
		g.CreatedTags = make(map[string]string)
	}
	g.CreatedTags[name] = message
	return nil
}

func (g *StubGitRepository) UserName() string {
	return g.User
}

// StubGitRepositoryOpener hands out a fixed repository, recording the
// directories it was asked to open.
type StubGitRepositoryOpener struct {
	Repo    repositories.GitRepository
	OpenErr error

	OpenedDirs []string
}

var _ repositories.GitRepositoryOpener = (*StubGitRepositoryOpener)(nil)

func (o *StubGitRepositoryOpener) Open(dir string) (repositories.GitRepository, error) {
	o.OpenedDirs = append(o.OpenedDirs, dir)
	if o.OpenErr != nil {
		return nil, o.OpenErr
	}
	return o.Repo, nil
}
