package commands

import (
	"context"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
	"github.com/rios0rios0/relforge/internal/graph"
)

// Status is the interface for the status command.
type Status interface {
	Execute(ctx context.Context, settings *config.Settings, opts StatusOptions) error
}

// StatusOptions holds the runtime options for the status command.
type StatusOptions struct {
	Root string
}

// StatusCommand prints the workspace classification, its members and the
// pending changeset of the current branch.
type StatusCommand struct {
	loader WorkspaceLoader
	git    repositories.GitRepositoryOpener
	stores repositories.ChangesetStoreOpener
}

// NewStatusCommand creates the command with its dependencies.
func NewStatusCommand(
	loader WorkspaceLoader,
	git repositories.GitRepositoryOpener,
	stores repositories.ChangesetStoreOpener,
) *StatusCommand {
	return &StatusCommand{loader: loader, git: git, stores: stores}
}

// Execute loads the workspace and reports its state.
func (it *StatusCommand) Execute(
	ctx context.Context,
	settings *config.Settings,
	opts StatusOptions,
) error {
	ws, err := it.loader.Load(ctx, opts.Root)
	if err != nil {
		return err
	}
	g := graph.Build(ws)

	logger.Infof("[status] %s workspace at %s with %d package(s)", ws.Kind, ws.Root, len(ws.Packages))
	for _, name := range g.Names() {
		pkg := g.Get(name)
		internal := len(g.DependenciesOf(name, nil))
		logger.Infof("[status] %s %s (%d internal dependencies)", name, pkg.Version, internal)
	}
	for _, cycle := range g.Cycles(settings.PropagationKinds()) {
		logger.Warnf("[status] dependency cycle: %s", strings.Join(cycle, " -> "))
	}

	gitRepo, err := it.git.Open(ws.Root)
	if err != nil {
		return err
	}
	branch, err := gitRepo.CurrentBranch()
	if err != nil {
		return err
	}

	store := openStore(it.stores, ws.Root, settings)
	changeset, err := store.Load(ctx, branch)
	if isCode(err, entities.CodeChangesetNotFound) {
		logger.Infof("[status] no pending changeset for branch %q", branch)
		return nil
	}
	if err != nil {
		return err
	}

	logger.Infof("[status] branch %q has a pending %s changeset: packages=%s environments=%s",
		branch, changeset.Bump,
		strings.Join(changeset.Packages, ","), strings.Join(changeset.Environments, ","))
	return nil
}
