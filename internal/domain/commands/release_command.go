package commands

import (
	"context"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
	"github.com/rios0rios0/relforge/internal/graph"
	"github.com/rios0rios0/relforge/internal/release"
)

// Release is the interface for the release command.
type Release interface {
	Execute(ctx context.Context, settings *config.Settings, opts ReleaseOptions) error
}

// ReleaseOptions holds the runtime options for one release run.
type ReleaseOptions struct {
	Root     string
	DryRun   bool
	Snapshot bool // force snapshot versions on a release branch
}

// ReleaseCommand drives the full release flow: plan the version moves for
// the branch changeset, write the manifests, archive the changeset and tag
// the released packages. On a non-release branch the run degrades to
// snapshot versions: seeds only, no archive, no tags, and the changeset
// stays pending.
type ReleaseCommand struct {
	loader    WorkspaceLoader
	git       repositories.GitRepositoryOpener
	stores    repositories.ChangesetStoreOpener
	manifests repositories.ManifestRepository
	clock     repositories.Clock
}

// NewReleaseCommand creates the command with its dependencies.
func NewReleaseCommand(
	loader WorkspaceLoader,
	git repositories.GitRepositoryOpener,
	stores repositories.ChangesetStoreOpener,
	manifests repositories.ManifestRepository,
	clock repositories.Clock,
) *ReleaseCommand {
	return &ReleaseCommand{loader: loader, git: git, stores: stores, manifests: manifests, clock: clock}
}

// Execute runs the release for the current branch's changeset.
func (it *ReleaseCommand) Execute(
	ctx context.Context,
	settings *config.Settings,
	opts ReleaseOptions,
) error {
	ws, err := it.loader.Load(ctx, opts.Root)
	if err != nil {
		return err
	}
	g := graph.Build(ws)

	gitRepo, err := it.git.Open(ws.Root)
	if err != nil {
		return err
	}
	branch, err := gitRepo.CurrentBranch()
	if err != nil {
		return err
	}
	snapshot, err := snapshotMode(settings, branch, opts.Snapshot)
	if err != nil {
		return err
	}

	store := openStore(it.stores, ws.Root, settings)
	changeset, err := store.Load(ctx, branch)
	if err != nil {
		return err
	}
	if err := changeset.Validate(settings.Changeset.AvailableEnvironments); err != nil {
		return err
	}

	planOpts := release.PlanOptions{
		PropagationBump: settings.PropagationBump(),
		Kinds:           settings.PropagationKinds(),
		MaxDepth:        settings.Version.MaxPropagationDepth,
	}
	if snapshot {
		short, hashErr := gitRepo.ShortHash("HEAD", settings.Version.SnapshotHashLength)
		if hashErr != nil {
			return hashErr
		}
		planOpts.Snapshot = true
		planOpts.SnapshotHash = short
	}

	engine := release.NewEngine(g, it.manifests)
	plan, err := engine.Plan(changeset, planOpts)
	if err != nil {
		return err
	}
	logPlan(plan)

	if opts.DryRun {
		logger.Info("[release] dry run, no files written")
		return engine.Discard()
	}

	backup, err := it.manifests.Snapshot(plan.ManifestPaths(g))
	if err != nil {
		return err
	}
	written, applyErr := engine.Apply(ctx)
	if applyErr != nil {
		if restoreErr := it.manifests.Restore(backup, written); restoreErr != nil {
			logger.Errorf("[release] rollback failed, restore manifests by hand: %v", restoreErr)
		} else if len(written) > 0 {
			logger.Warnf("[release] rolled back %d written manifest(s)", len(written))
		}
		return applyErr
	}
	logger.Infof("[release] wrote %d manifest(s)", len(written))

	if snapshot {
		logger.Infof("[release] snapshot versions written, changeset for branch %q stays pending", branch)
		return nil
	}

	if err := it.archive(ctx, store, gitRepo, changeset, plan); err != nil {
		return err
	}
	return tagReleases(gitRepo, settings.TagFormatFor(ws.Kind), plan)
}

// snapshotMode decides whether this run produces snapshot versions.
// Non-release branches always snapshot. A release branch releases for real
// unless the caller forces a snapshot, which the settings must allow.
func snapshotMode(settings *config.Settings, branch string, forced bool) (bool, error) {
	if !settings.IsReleaseBranch(branch) {
		return true, nil
	}
	if !forced {
		return false, nil
	}
	if !settings.Version.AllowSnapshotOnReleaseBranch {
		return false, entities.NewSnapshotNotAllowed(branch)
	}
	return true, nil
}

func logPlan(plan *release.Plan) {
	for _, change := range plan.Changes {
		if change.New.Equal(change.Old) {
			logger.Infof("[release] %s stays at %s (%s)", change.Package, change.Old, change.Reason)
			continue
		}
		logger.Infof("[release] %s: %s -> %s (%s)", change.Package, change.Old, change.New, change.Reason)
	}
	if len(plan.Edits) > 0 {
		logger.Infof("[release] %d dependency spec rewrite(s)", len(plan.Edits))
	}
}

func (it *ReleaseCommand) archive(
	ctx context.Context,
	store repositories.ChangesetRepository,
	gitRepo repositories.GitRepository,
	changeset *entities.Changeset,
	plan *release.Plan,
) error {
	head, err := gitRepo.HeadCommit()
	if err != nil {
		return err
	}
	info := entities.ReleaseInfo{
		AppliedBy: appliedBy(gitRepo),
		GitCommit: head,
		AppliedAt: it.clock.Now(),
		Versions:  plan.Versions(),
	}
	if _, err := store.Archive(ctx, changeset, info); err != nil {
		return err
	}
	logger.Infof("[release] archived changeset for branch %q", changeset.Branch)
	return nil
}

// appliedBy resolves who ran the release: git user.name, then $USER, then a
// fixed fallback.
func appliedBy(gitRepo repositories.GitRepository) string {
	if name := gitRepo.UserName(); name != "" {
		return name
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

// tagReleases tags every package whose version actually moved. Seeds that
// resolved to a none bump keep their version and get no tag.
func tagReleases(gitRepo repositories.GitRepository, format string, plan *release.Plan) error {
	for _, change := range plan.Changes {
		if change.New.Equal(change.Old) {
			continue
		}
		name := entities.FormatVersionTag(format, change.Package, change.New)
		if err := gitRepo.CreateTag(name, "release "+name); err != nil {
			return err
		}
		logger.Infof("[release] tagged %s", name)
	}
	return nil
}
