package release

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
	"github.com/rios0rios0/relforge/internal/graph"
)

// Engine drives one release through the state machine: compute a plan,
// inspect it, then apply or discard it. An engine is single-use; create a
// fresh one per release.
type Engine struct {
	graph     *graph.Graph
	manifests repositories.ManifestRepository
	tracker   *Tracker
	plan      *Plan
}

// NewEngine wires an engine over a built graph and a manifest store.
func NewEngine(g *graph.Graph, manifests repositories.ManifestRepository) *Engine {
	return &Engine{graph: g, manifests: manifests, tracker: NewTracker()}
}

// Plan resolves the changeset and parks the result for inspection.
func (e *Engine) Plan(changeset *entities.Changeset, opts PlanOptions) (*Plan, error) {
	plan, err := ComputePlan(e.graph, changeset, opts)
	if err != nil {
		return nil, err
	}
	if err := e.tracker.Compute(); err != nil {
		return nil, err
	}
	e.plan = plan
	return plan, nil
}

// Current returns the parked plan, nil before Plan succeeds.
func (e *Engine) Current() *Plan { return e.plan }

// State exposes the lifecycle state for logging and assertions.
func (e *Engine) State() State { return e.tracker.State() }

// WrittenFiles returns the files flushed by the last apply, committed or not.
func (e *Engine) WrittenFiles() []string { return e.tracker.WrittenFiles() }

// Discard abandons the parked plan without touching disk.
func (e *Engine) Discard() error {
	if err := e.tracker.Discard(); err != nil {
		return err
	}
	e.plan = nil
	return nil
}

// Apply mutates the in-memory manifests per the plan and flushes every
// touched file. All computation happens before the first write. Writes run
// in parallel, each atomic on its own; on any failure the already-written
// paths travel inside the returned error so the caller can restore its
// snapshot.
func (e *Engine) Apply(ctx context.Context) ([]string, error) {
	if err := e.tracker.BeginWrite(); err != nil {
		return nil, err
	}
	written, err := applyPlan(ctx, e.graph, e.manifests, e.plan)
	if err != nil {
		_ = e.tracker.Fail(written)
		return written, err
	}
	if err := e.tracker.Commit(written); err != nil {
		return written, err
	}
	return written, nil
}

// manifestWork is the per-file slice of a plan: at most one version move
// plus the spec edits landing in the same manifest.
type manifestWork struct {
	pkg     *entities.Package
	version *entities.Version
	edits   []SpecEdit
}

// applyPlan performs the write-out phase. Mutation is sequential and
// deterministic; only the flush fans out.
func applyPlan(ctx context.Context, g *graph.Graph, manifests repositories.ManifestRepository, plan *Plan) ([]string, error) {
	work, order := collectWork(g, plan)
	if len(order) == 0 {
		return nil, nil
	}

	for _, owner := range order {
		item := work[owner]
		if item.version != nil {
			item.pkg.Manifest.SetVersion(*item.version)
			item.pkg.Version = *item.version
		}
		for _, edit := range item.edits {
			item.pkg.Manifest.SetDependencySpec(edit.Kind, edit.Dependency, edit.NewSpec)
		}
	}

	var (
		mu          sync.Mutex
		written     []string
		failedPath  string
		failedCause error
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for _, owner := range order {
		manifest := work[owner].pkg.Manifest
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if err := manifests.Write(manifest); err != nil {
				mu.Lock()
				if failedPath == "" {
					failedPath = manifest.Path
					failedCause = err
				}
				mu.Unlock()
				return err
			}
			mu.Lock()
			written = append(written, manifest.Path)
			mu.Unlock()
			return nil
		})
	}
	err := group.Wait()
	sort.Strings(written)
	if err == nil {
		return written, nil
	}
	if failedPath != "" {
		return written, entities.NewApplyFailed(failedPath, failedCause, written)
	}
	return written, entities.NewCancelled(written)
}

// collectWork groups the plan by manifest owner, dropping owners with
// nothing to write (none bumps without edits). Order follows the plan's
// change order, then edit-only owners in edit order.
func collectWork(g *graph.Graph, plan *Plan) (map[string]*manifestWork, []string) {
	work := make(map[string]*manifestWork)
	var order []string
	claim := func(owner string) *manifestWork {
		if item, ok := work[owner]; ok {
			return item
		}
		item := &manifestWork{pkg: g.Get(owner)}
		work[owner] = item
		order = append(order, owner)
		return item
	}

	for _, change := range plan.Changes {
		if change.New.Equal(change.Old) {
			continue
		}
		item := claim(change.Package)
		next := change.New
		item.version = &next
	}
	for _, edit := range plan.Edits {
		item := claim(edit.Package)
		item.edits = append(item.edits, edit)
	}
	return work, order
}
