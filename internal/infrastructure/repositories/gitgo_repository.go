package repositories

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	domainRepos "github.com/rios0rios0/relforge/internal/domain/repositories"
)

// GitGoRepository adapts go-git to the GitRepository interface. All
// operations read the object database directly; no git binary is invoked.
type GitGoRepository struct {
	repo *git.Repository
	root string // worktree root, used to relativize path filters
}

var _ domainRepos.GitRepository = (*GitGoRepository)(nil)

// GitGoOpener opens repositories with go-git, walking up from the given
// directory to find the .git directory the way the git CLI does.
type GitGoOpener struct{}

var _ domainRepos.GitRepositoryOpener = (*GitGoOpener)(nil)

// NewGitGoOpener creates the opener.
func NewGitGoOpener() *GitGoOpener {
	return &GitGoOpener{}
}

// Open opens the repository containing dir.
func (o *GitGoOpener) Open(dir string) (domainRepos.GitRepository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, entities.NewGitError("open", err)
	}

	root := dir
	if worktree, wtErr := repo.Worktree(); wtErr == nil {
		root = worktree.Filesystem.Root()
	}
	return &GitGoRepository{repo: repo, root: root}, nil
}

// CurrentBranch returns the checked-out branch name. A detached HEAD is
// an error because changesets and snapshot releases are branch-scoped.
func (g *GitGoRepository) CurrentBranch() (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", entities.NewGitError("resolve HEAD", err)
	}
	if !head.Name().IsBranch() {
		return "", entities.NewGitError("current branch", errors.New("HEAD is detached"))
	}
	return head.Name().Short(), nil
}

// HeadCommit returns the full hash of HEAD.
func (g *GitGoRepository) HeadCommit() (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", entities.NewGitError("resolve HEAD", err)
	}
	return head.Hash().String(), nil
}

// ShortHash resolves a revision and abbreviates it.
func (g *GitGoRepository) ShortHash(revision string, length int) (string, error) {
	if length <= 0 {
		length = entities.DefaultShortHashLength
	}
	hash, err := g.repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return "", entities.NewGitError("resolve "+revision, err)
	}
	full := hash.String()
	if length > len(full) {
		length = len(full)
	}
	return full[:length], nil
}

// ListTags returns every tag name.
func (g *GitGoRepository) ListTags() ([]string, error) {
	iter, err := g.repo.Tags()
	if err != nil {
		return nil, entities.NewGitError("list tags", err)
	}
	var tags []string
	iterErr := iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if iterErr != nil {
		return nil, entities.NewGitError("list tags", iterErr)
	}
	return tags, nil
}

// errStopIteration ends a commit walk early once the range boundary is hit.
var errStopIteration = errors.New("stop iteration")

// CommitsBetween returns commits in (fromRef, toRef], oldest first. An
// empty fromRef walks back to the root commit; an empty toRef means HEAD.
func (g *GitGoRepository) CommitsBetween(
	ctx context.Context, fromRef, toRef, pathFilter string,
) ([]entities.Commit, error) {
	toHash, err := g.resolve(toRef)
	if err != nil {
		return nil, err
	}

	var fromHash *plumbing.Hash
	if fromRef != "" {
		resolved, fromErr := g.resolve(fromRef)
		if fromErr != nil {
			return nil, fromErr
		}
		fromHash = &resolved
	}

	options := &git.LogOptions{From: toHash, Order: git.LogOrderCommitterTime}
	if filter := g.relativePathFilter(pathFilter); filter != nil {
		options.PathFilter = filter
	}
	iter, logErr := g.repo.Log(options)
	if logErr != nil {
		return nil, entities.NewGitError("log", logErr)
	}
	defer iter.Close()

	var newestFirst []entities.Commit
	walkErr := iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if fromHash != nil && commit.Hash == *fromHash {
			return errStopIteration
		}
		newestFirst = append(newestFirst, entities.Commit{
			Hash:       commit.Hash.String(),
			Message:    commit.Message,
			AuthorName: commit.Author.Name,
			AuthorDate: commit.Author.When.UTC(),
		})
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, errStopIteration) {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, entities.NewGitError("log", walkErr)
	}

	oldestFirst := make([]entities.Commit, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		oldestFirst = append(oldestFirst, newestFirst[i])
	}
	return oldestFirst, nil
}

// CreateTag creates an annotated tag at HEAD, using the configured git
// identity when one exists.
func (g *GitGoRepository) CreateTag(name, message string) error {
	head, err := g.repo.Head()
	if err != nil {
		return entities.NewGitError("resolve HEAD", err)
	}

	taggerName, taggerEmail := g.identity()
	_, tagErr := g.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Message: message,
		Tagger: &object.Signature{
			Name:  taggerName,
			Email: taggerEmail,
			When:  time.Now(),
		},
	})
	if tagErr != nil {
		return entities.NewGitError("create tag "+name, tagErr)
	}
	return nil
}

// UserName returns the configured git user.name, empty when unset.
func (g *GitGoRepository) UserName() string {
	cfg, err := g.repo.ConfigScoped(gitconfig.SystemScope)
	if err != nil {
		return ""
	}
	return cfg.User.Name
}

func (g *GitGoRepository) resolve(ref string) (plumbing.Hash, error) {
	if ref == "" {
		ref = "HEAD"
	}
	hash, err := g.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, entities.NewGitError("resolve "+ref, err)
	}
	return *hash, nil
}

func (g *GitGoRepository) identity() (string, string) {
	name, email := "relforge", "relforge@localhost"
	cfg, err := g.repo.ConfigScoped(gitconfig.SystemScope)
	if err != nil {
		return name, email
	}
	if cfg.User.Name != "" {
		name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		email = cfg.User.Email
	}
	return name, email
}

// relativePathFilter turns a package directory into a go-git path
// predicate. Absolute directories are relativized against the worktree
// root; an empty directory disables filtering.
func (g *GitGoRepository) relativePathFilter(dir string) func(string) bool {
	if dir == "" {
		return nil
	}
	if filepath.IsAbs(dir) {
		relative, err := filepath.Rel(g.root, dir)
		if err != nil || strings.HasPrefix(relative, "..") {
			return nil
		}
		dir = relative
	}
	prefix := filepath.ToSlash(dir)
	if prefix == "." {
		return nil
	}
	return func(path string) bool {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
}
