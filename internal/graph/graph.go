// Package graph models the workspace dependency graph: packages as nodes,
// typed internal edges carrying their declared version specs, and a side
// table of external references. It provides strongly-connected-component
// detection and deterministic topological ordering.
package graph

import (
	"slices"
	"sort"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// Edge is an internal dependency: From declares To with the given spec.
type Edge struct {
	From string
	To   string
	Kind entities.DependencyKind
	Spec string
}

// ExternalRef is a dependency on a package outside the workspace. External
// references never participate in traversals; they are kept for the
// upgrade planner and the audit report.
type ExternalRef struct {
	From string
	Name string
	Kind entities.DependencyKind
	Spec string
}

// Graph is the directed multigraph over one workspace. Edges point from a
// package to its dependencies.
type Graph struct {
	packages  map[string]*entities.Package
	names     []string // sorted
	outgoing  map[string][]Edge
	incoming  map[string][]Edge
	externals []ExternalRef
}

// Build constructs the graph from every package's manifest. A dependency
// naming a workspace member becomes an internal edge; anything else lands
// in the external side table.
func Build(workspace *entities.Workspace) *Graph {
	g := &Graph{
		packages: make(map[string]*entities.Package, len(workspace.Packages)),
		outgoing: make(map[string][]Edge),
		incoming: make(map[string][]Edge),
	}
	for _, pkg := range workspace.Packages {
		g.packages[pkg.Name] = pkg
		g.names = append(g.names, pkg.Name)
	}
	sort.Strings(g.names)

	for _, from := range g.names {
		manifest := g.packages[from].Manifest
		for _, kind := range entities.AllDependencyKinds() {
			deps := manifest.Dependencies(kind)
			depNames := make([]string, 0, len(deps))
			for name := range deps {
				depNames = append(depNames, name)
			}
			sort.Strings(depNames)
			for _, name := range depNames {
				if name == from {
					continue // self references carry no information
				}
				if _, internal := g.packages[name]; internal {
					edge := Edge{From: from, To: name, Kind: kind, Spec: deps[name]}
					g.outgoing[from] = append(g.outgoing[from], edge)
					g.incoming[name] = append(g.incoming[name], edge)
				} else {
					g.externals = append(g.externals, ExternalRef{
						From: from, Name: name, Kind: kind, Spec: deps[name],
					})
				}
			}
		}
	}
	return g
}

// Get returns the package with the given name, or nil.
func (g *Graph) Get(name string) *entities.Package {
	return g.packages[name]
}

// Has reports whether the name is a workspace package.
func (g *Graph) Has(name string) bool {
	_, ok := g.packages[name]
	return ok
}

// Len returns the number of packages.
func (g *Graph) Len() int { return len(g.packages) }

// Names returns all package names, sorted.
func (g *Graph) Names() []string {
	return slices.Clone(g.names)
}

// EdgesFrom returns the internal edges declared by a package, filtered by
// kinds. Kinds nil means all kinds.
func (g *Graph) EdgesFrom(name string, kinds []entities.DependencyKind) []Edge {
	return filterEdges(g.outgoing[name], kinds)
}

// EdgesTo returns the internal edges pointing at a package, filtered by kinds.
func (g *Graph) EdgesTo(name string, kinds []entities.DependencyKind) []Edge {
	return filterEdges(g.incoming[name], kinds)
}

// DependentsOf returns the sorted set of packages declaring an edge to
// name with one of the given kinds.
func (g *Graph) DependentsOf(name string, kinds []entities.DependencyKind) []string {
	return edgeEndpoints(g.incoming[name], kinds, func(e Edge) string { return e.From })
}

// DependenciesOf returns the sorted set of internal packages that name
// depends on through the given kinds.
func (g *Graph) DependenciesOf(name string, kinds []entities.DependencyKind) []string {
	return edgeEndpoints(g.outgoing[name], kinds, func(e Edge) string { return e.To })
}

// ExternalRefs returns every external reference in the workspace, ordered
// by declaring package.
func (g *Graph) ExternalRefs() []ExternalRef {
	return slices.Clone(g.externals)
}

// ExternalRefsOf returns the external references declared by one package,
// filtered by kinds.
func (g *Graph) ExternalRefsOf(name string, kinds []entities.DependencyKind) []ExternalRef {
	var refs []ExternalRef
	for _, ref := range g.externals {
		if ref.From != name {
			continue
		}
		if kinds != nil && !slices.Contains(kinds, ref.Kind) {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

func filterEdges(edges []Edge, kinds []entities.DependencyKind) []Edge {
	if kinds == nil {
		return slices.Clone(edges)
	}
	var filtered []Edge
	for _, edge := range edges {
		if slices.Contains(kinds, edge.Kind) {
			filtered = append(filtered, edge)
		}
	}
	return filtered
}

func edgeEndpoints(edges []Edge, kinds []entities.DependencyKind, pick func(Edge) string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, edge := range edges {
		if kinds != nil && !slices.Contains(kinds, edge.Kind) {
			continue
		}
		name := pick(edge)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// adjacency returns the deduplicated dependency sets of the subgraph
// induced by kinds. Multi-edges collapse to one entry.
func (g *Graph) adjacency(kinds []entities.DependencyKind) map[string]map[string]bool {
	deps := make(map[string]map[string]bool, len(g.names))
	for _, name := range g.names {
		deps[name] = make(map[string]bool)
		for _, edge := range g.EdgesFrom(name, kinds) {
			deps[name][edge.To] = true
		}
	}
	return deps
}
