package upgrade

import (
	"context"
	"sort"
	"sync"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
	"github.com/rios0rios0/relforge/internal/graph"
)

// defaultConcurrency bounds registry fan-out when the caller passes zero.
const defaultConcurrency = 10

// Row is one plannable dependency upgrade.
type Row struct {
	Package    string
	Dependency string
	Kind       entities.DependencyKind
	Spec       string // declared spec, prefix included
	Current    string // version payload of the declared spec
	Latest     entities.Version
	Class      Class
	Deprecated bool
}

// Options configure one planning run.
type Options struct {
	Kinds       []entities.DependencyKind
	Concurrency int
	AllowMajor  bool
	AllowMinor  bool
	AllowPatch  bool
}

// registryFact is the per-dependency answer cached across referencing
// packages.
type registryFact struct {
	latest     entities.Version
	deprecated bool
}

// Planner classifies every external reference against the newest published
// version. It only reads; Apply performs the rewrites.
type Planner struct {
	registry repositories.RegistryGateway
}

// NewPlanner wires a planner over the registry oracle.
func NewPlanner(registry repositories.RegistryGateway) *Planner {
	return &Planner{registry: registry}
}

// Plan queries the registry for each distinct external dependency with
// bounded parallelism, then classifies every reference whose upgrade class
// passes the filter flags. Rows come back ordered by declaring package,
// dependency kind, then dependency name.
func (p *Planner) Plan(ctx context.Context, g *graph.Graph, opts Options) ([]Row, error) {
	refs := externalRefs(g, opts.Kinds)
	if len(refs) == 0 {
		return nil, nil
	}

	names := distinctNames(refs)
	logger.Debugf("[upgrade] querying registry for %d dependencies", len(names))

	facts := make(map[string]registryFact, len(names))
	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	group.SetLimit(limit)
	for _, name := range names {
		group.Go(func() error {
			fact, err := p.query(groupCtx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			facts[name] = fact
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var rows []Row
	for _, ref := range refs {
		declared, ok := entities.SpecVersion(ref.Spec)
		if !ok {
			continue // no version payload to classify against
		}
		fact := facts[ref.Name]
		diff := AnalyzeDiff(declared.String(), fact.latest.String())
		if !diff.Class.Allowed(opts.AllowMajor, opts.AllowMinor, opts.AllowPatch) {
			continue
		}
		rows = append(rows, Row{
			Package:    ref.From,
			Dependency: ref.Name,
			Kind:       ref.Kind,
			Spec:       ref.Spec,
			Current:    declared.String(),
			Latest:     fact.latest,
			Class:      diff.Class,
			Deprecated: fact.deprecated,
		})
	}
	return rows, nil
}

// query fetches the published versions and metadata of one dependency. The
// newest stable version wins; a registry publishing only prereleases falls
// back to the newest of those.
func (p *Planner) query(ctx context.Context, name string) (registryFact, error) {
	versions, err := p.registry.LatestVersions(ctx, name)
	if err != nil {
		return registryFact{}, err
	}
	metadata, err := p.registry.Metadata(ctx, name)
	if err != nil {
		return registryFact{}, err
	}

	fact := registryFact{deprecated: metadata.Deprecated}
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].Prerelease() == "" {
			fact.latest = versions[i]
			break
		}
	}
	if fact.latest.Equal(entities.Version{}) && len(versions) > 0 {
		fact.latest = versions[len(versions)-1]
	}
	return fact, nil
}

// Apply rewrites the planned rows into their manifests with the
// prefix-preserving update rule, one write per touched manifest. The first
// write failure halts the run and reports the already-written paths.
func Apply(g *graph.Graph, manifests repositories.ManifestRepository, rows []Row) ([]string, error) {
	owners := make(map[string][]Row)
	var order []string
	for _, row := range rows {
		if _, seen := owners[row.Package]; !seen {
			order = append(order, row.Package)
		}
		owners[row.Package] = append(owners[row.Package], row)
	}
	sort.Strings(order)

	var written []string
	for _, owner := range order {
		pkg := g.Get(owner)
		if pkg == nil {
			continue
		}
		changed := false
		for _, row := range owners[owner] {
			if pkg.Manifest.UpdateDependency(row.Kind, row.Dependency, row.Latest) {
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := manifests.Write(pkg.Manifest); err != nil {
			sort.Strings(written)
			return written, entities.NewApplyFailed(pkg.Manifest.Path, err, written)
		}
		written = append(written, pkg.Manifest.Path)
	}
	sort.Strings(written)
	return written, nil
}

// HighestClass returns the largest upgrade class among rows, driving the
// bump of an automatically created changeset.
func HighestClass(rows []Row) Class {
	highest := ClassNone
	for _, row := range rows {
		if row.Class > highest {
			highest = row.Class
		}
	}
	return highest
}

func externalRefs(g *graph.Graph, kinds []entities.DependencyKind) []graph.ExternalRef {
	if kinds == nil {
		return g.ExternalRefs()
	}
	var refs []graph.ExternalRef
	for _, ref := range g.ExternalRefs() {
		for _, kind := range kinds {
			if ref.Kind == kind {
				refs = append(refs, ref)
				break
			}
		}
	}
	return refs
}

func distinctNames(refs []graph.ExternalRef) []string {
	seen := make(map[string]bool, len(refs))
	var names []string
	for _, ref := range refs {
		if !seen[ref.Name] {
			seen[ref.Name] = true
			names = append(names, ref.Name)
		}
	}
	sort.Strings(names)
	return names
}
