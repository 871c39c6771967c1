// Package release implements the version engine. It resolves a changeset
// against the workspace graph into an ordered version plan, applies the
// plan to the manifests on disk and tracks the release lifecycle.
package release

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/graph"
)

// PlanOptions configure one resolution run.
type PlanOptions struct {
	// PropagationBump is applied to packages pulled in by reverse-edge
	// traversal when the changeset did not name them.
	PropagationBump entities.Bump

	// Kinds selects the dependency kinds propagation traverses. Nil means
	// all kinds.
	Kinds []entities.DependencyKind

	// MaxDepth bounds the traversal; a package first reached beyond it
	// aborts the plan.
	MaxDepth int

	// Snapshot stamps the seed versions with SnapshotHash instead of
	// releasing: no propagation, no coupling, no spec rewrites.
	Snapshot     bool
	SnapshotHash string
}

// Change is one package's planned version move. A none bump keeps Old and
// New equal; the entry stays in the plan for trace clarity.
type Change struct {
	Package string
	Old     entities.Version
	New     entities.Version
	Bump    entities.Bump
	Reason  string
}

// SpecEdit rewrites one dependency entry in one manifest.
type SpecEdit struct {
	Package    string // manifest owner
	Dependency string
	Kind       entities.DependencyKind
	OldSpec    string
	NewSpec    string
}

// Plan is the computed outcome of a changeset: the version changes in
// topological order (dependencies before dependents, ties lexicographic)
// and the dependency-spec edits they force. A plan never touches disk.
type Plan struct {
	Branch   string
	Snapshot bool
	Changes  []Change
	Edits    []SpecEdit
}

// ChangeFor returns the planned change for a package, if any.
func (p *Plan) ChangeFor(name string) (Change, bool) {
	for _, change := range p.Changes {
		if change.Package == name {
			return change, true
		}
	}
	return Change{}, false
}

// Versions maps every planned package to its new version string.
func (p *Plan) Versions() map[string]string {
	versions := make(map[string]string, len(p.Changes))
	for _, change := range p.Changes {
		versions[change.Package] = change.New.String()
	}
	return versions
}

// ManifestPaths returns the sorted paths of every manifest the plan will
// modify: owners of a real version move plus owners of spec edits.
func (p *Plan) ManifestPaths(g *graph.Graph) []string {
	seen := make(map[string]bool)
	var paths []string
	record := func(owner string) {
		pkg := g.Get(owner)
		if pkg == nil || seen[pkg.Manifest.Path] {
			return
		}
		seen[pkg.Manifest.Path] = true
		paths = append(paths, pkg.Manifest.Path)
	}
	for _, change := range p.Changes {
		if !change.New.Equal(change.Old) {
			record(change.Package)
		}
	}
	for _, edit := range p.Edits {
		record(edit.Package)
	}
	sort.Strings(paths)
	return paths
}

// ComputePlan resolves a changeset against the graph. The returned plan is
// deterministic for a given graph and changeset. Resolution follows the
// documented order: seed, propagate, couple cycles, compute versions,
// derive spec edits.
func ComputePlan(g *graph.Graph, changeset *entities.Changeset, opts PlanOptions) (*Plan, error) {
	for _, name := range changeset.Packages {
		if !g.Has(name) {
			return nil, entities.NewPackageNotFound(name)
		}
	}

	if opts.Snapshot {
		return snapshotPlan(g, changeset, opts)
	}

	r := &resolver{
		g:       g,
		opts:    opts,
		cycles:  g.Cycles(opts.Kinds),
		groupOf: g.CycleIndex(opts.Kinds),
		inSet:   make(map[string]bool),
		bump:    make(map[string]entities.Bump),
		reason:  make(map[string]string),
		depth:   make(map[string]int),
	}
	if err := r.resolve(changeset); err != nil {
		return nil, err
	}

	plan := &Plan{Branch: changeset.Branch}
	for _, name := range g.OrderWithCycles(opts.Kinds) {
		if !r.inSet[name] {
			continue
		}
		pkg := g.Get(name)
		next, err := pkg.Version.ApplyBump(r.bump[name])
		if err != nil {
			return nil, entities.NewVersionCalcError(name, pkg.Version.String(), r.bump[name])
		}
		plan.Changes = append(plan.Changes, Change{
			Package: name,
			Old:     pkg.Version,
			New:     next,
			Bump:    r.bump[name],
			Reason:  r.reason[name],
		})
	}

	plan.Edits = specEdits(g, plan)
	return plan, nil
}

// snapshotPlan stamps the seeds with the short hash. Snapshots are
// pre-release by definition, so dependents keep their specs and nothing
// propagates.
func snapshotPlan(g *graph.Graph, changeset *entities.Changeset, opts PlanOptions) (*Plan, error) {
	seeds := make(map[string]bool, len(changeset.Packages))
	for _, name := range changeset.Packages {
		seeds[name] = true
	}

	plan := &Plan{Branch: changeset.Branch, Snapshot: true}
	for _, name := range g.OrderWithCycles(opts.Kinds) {
		if !seeds[name] {
			continue
		}
		pkg := g.Get(name)
		bumped, err := pkg.Version.ApplyBump(changeset.Bump)
		if err != nil {
			return nil, entities.NewVersionCalcError(name, pkg.Version.String(), changeset.Bump)
		}
		stamped, err := bumped.Snapshot(opts.SnapshotHash)
		if err != nil {
			return nil, entities.NewVersionCalcError(name, pkg.Version.String(), changeset.Bump)
		}
		plan.Changes = append(plan.Changes, Change{
			Package: name,
			Old:     pkg.Version,
			New:     stamped,
			Bump:    changeset.Bump,
			Reason:  "changeset",
		})
	}
	return plan, nil
}

// specEdits enumerates every internal edge pointing into the planned set,
// across all dependency kinds, and rewrites the declared spec against the
// target's new version. Unchanged specs (none bumps, non-resolvable
// protocols) produce no edit.
func specEdits(g *graph.Graph, plan *Plan) []SpecEdit {
	newVersion := make(map[string]entities.Version, len(plan.Changes))
	for _, change := range plan.Changes {
		newVersion[change.Package] = change.New
	}

	var edits []SpecEdit
	for _, owner := range g.Names() {
		for _, edge := range g.EdgesFrom(owner, nil) {
			target, planned := newVersion[edge.To]
			if !planned {
				continue
			}
			rewritten := entities.RewriteSpec(edge.Spec, target)
			if rewritten == edge.Spec {
				continue
			}
			edits = append(edits, SpecEdit{
				Package:    owner,
				Dependency: edge.To,
				Kind:       edge.Kind,
				OldSpec:    edge.Spec,
				NewSpec:    rewritten,
			})
		}
	}
	return edits
}

// resolver carries the closure state of one resolution run.
type resolver struct {
	g       *graph.Graph
	opts    PlanOptions
	cycles  [][]string
	groupOf map[string]int

	inSet  map[string]bool
	bump   map[string]entities.Bump
	reason map[string]string
	depth  map[string]int
}

// resolve seeds the set, walks reverse edges breadth-first with cycles
// joining as atomic units, and normalizes every touched cycle to its
// maximum bump.
func (r *resolver) resolve(changeset *entities.Changeset) error {
	var frontier []string
	for _, name := range changeset.Packages {
		if r.add(name, 0, changeset.Bump, "changeset") {
			frontier = append(frontier, name)
		}
		frontier = append(frontier, r.coupleGroup(name, 0)...)
	}

	for len(frontier) > 0 {
		var next []string
		for _, name := range frontier {
			for _, dependent := range r.g.DependentsOf(name, r.opts.Kinds) {
				if r.inSet[dependent] {
					// Re-reached members still feel the propagation floor.
					r.bump[dependent] = entities.MaxBump(r.bump[dependent], r.opts.PropagationBump)
					continue
				}
				reached := r.depth[name] + 1
				if reached > r.opts.MaxDepth {
					return entities.NewMaxDepthExceeded(dependent, r.opts.MaxDepth)
				}
				r.add(dependent, reached, r.opts.PropagationBump, "dependent of "+name)
				next = append(next, dependent)
				next = append(next, r.coupleGroup(dependent, reached)...)
			}
		}
		frontier = next
	}

	r.normalizeCycles()
	return nil
}

// add puts a package into the set at the given depth, reporting whether it
// was newly added. The bump only ever rises.
func (r *resolver) add(name string, depth int, minBump entities.Bump, why string) bool {
	newly := !r.inSet[name]
	if newly {
		r.inSet[name] = true
		r.depth[name] = depth
		r.reason[name] = why
	}
	r.bump[name] = entities.MaxBump(r.bump[name], minBump)
	return newly
}

// coupleGroup pulls the remaining members of a package's cycle into the
// set at the same depth, returning the newcomers so the walk continues
// from them. Final bump leveling happens in normalizeCycles.
func (r *resolver) coupleGroup(name string, depth int) []string {
	groupID, cyclic := r.groupOf[name]
	if !cyclic {
		return nil
	}
	var added []string
	for _, member := range r.cycles[groupID] {
		if r.add(member, depth, entities.BumpNone, fmt.Sprintf("cycle with %s", name)) {
			added = append(added, member)
		}
	}
	return added
}

// normalizeCycles raises every member of a touched cycle to the group's
// maximum bump, making each strongly connected component an atomic unit.
func (r *resolver) normalizeCycles() {
	for _, members := range r.cycles {
		highest := entities.BumpNone
		touched := false
		for _, member := range members {
			if r.inSet[member] {
				touched = true
				highest = entities.MaxBump(highest, r.bump[member])
			}
		}
		if !touched {
			continue
		}
		for _, member := range members {
			r.bump[member] = highest
		}
	}
}
