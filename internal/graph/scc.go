package graph

import (
	"sort"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// sccState holds Tarjan's algorithm state during one run.
type sccState struct {
	index   int
	indexOf map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	deps    map[string]map[string]bool
	sccs    [][]string
}

// Cycles returns the strongly connected components of size > 1 in the
// subgraph induced by kinds. Members are sorted lexicographically and the
// components by their first member. Cycles are not errors at this layer;
// consumers decide whether a cycle is a coupled unit or a failure.
func (g *Graph) Cycles(kinds []entities.DependencyKind) [][]string {
	var cycles [][]string
	for _, component := range g.stronglyConnected(kinds) {
		if len(component) > 1 {
			sort.Strings(component)
			cycles = append(cycles, component)
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// CycleIndex maps every package belonging to a non-trivial SCC to its
// cycle-group id, the index into the Cycles result. Packages outside any
// cycle are absent from the map.
func (g *Graph) CycleIndex(kinds []entities.DependencyKind) map[string]int {
	index := make(map[string]int)
	for groupID, cycle := range g.Cycles(kinds) {
		for _, name := range cycle {
			index[name] = groupID
		}
	}
	return index
}

// stronglyConnected runs Tarjan over the induced subgraph, visiting roots
// in sorted name order for deterministic output.
func (g *Graph) stronglyConnected(kinds []entities.DependencyKind) [][]string {
	state := &sccState{
		indexOf: make(map[string]int, len(g.names)),
		lowlink: make(map[string]int, len(g.names)),
		onStack: make(map[string]bool, len(g.names)),
		deps:    g.adjacency(kinds),
	}
	order := sortedKeys(state.deps)
	for _, name := range g.names {
		if _, visited := state.indexOf[name]; !visited {
			state.strongConnect(name, order)
		}
	}
	return state.sccs
}

func (s *sccState) strongConnect(v string, order map[string][]string) {
	s.indexOf[v] = s.index
	s.lowlink[v] = s.index
	s.index++
	s.stack = append(s.stack, v)
	s.onStack[v] = true

	for _, w := range order[v] {
		if _, visited := s.indexOf[w]; !visited {
			s.strongConnect(w, order)
			if s.lowlink[w] < s.lowlink[v] {
				s.lowlink[v] = s.lowlink[w]
			}
		} else if s.onStack[w] {
			if s.indexOf[w] < s.lowlink[v] {
				s.lowlink[v] = s.indexOf[w]
			}
		}
	}

	if s.lowlink[v] == s.indexOf[v] {
		var component []string
		for {
			top := s.stack[len(s.stack)-1]
			s.stack = s.stack[:len(s.stack)-1]
			s.onStack[top] = false
			component = append(component, top)
			if top == v {
				break
			}
		}
		s.sccs = append(s.sccs, component)
	}
}

// sortedKeys freezes each node's successor set into a sorted slice so the
// DFS explores edges in a stable order.
func sortedKeys(deps map[string]map[string]bool) map[string][]string {
	order := make(map[string][]string, len(deps))
	for name, successors := range deps {
		list := make([]string, 0, len(successors))
		for successor := range successors {
			list = append(list, successor)
		}
		sort.Strings(list)
		order[name] = list
	}
	return order
}
