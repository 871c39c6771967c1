package graph

import (
	"sort"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// TopologicalOrder returns package names with every dependency before its
// dependents, ties broken lexicographically. It fails with a
// circular-dependency error naming one cycle when the induced subgraph is
// not acyclic; callers that tolerate cycles use OrderWithCycles instead.
func (g *Graph) TopologicalOrder(kinds []entities.DependencyKind) ([]string, error) {
	deps := g.adjacency(kinds)

	pending := make(map[string]int, len(deps))
	dependents := make(map[string][]string, len(deps))
	for name, successors := range deps {
		pending[name] = len(successors)
		for dep := range successors {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	ready := newReadyQueue()
	for _, name := range g.names {
		if pending[name] == 0 {
			ready.push(name)
		}
	}

	ordered := make([]string, 0, len(g.names))
	for ready.len() > 0 {
		name := ready.pop()
		ordered = append(ordered, name)
		for _, dependent := range dependents[name] {
			pending[dependent]--
			if pending[dependent] == 0 {
				ready.push(dependent)
			}
		}
	}

	if len(ordered) != len(g.names) {
		remaining := make(map[string]bool)
		for _, name := range g.names {
			if pending[name] > 0 {
				remaining[name] = true
			}
		}
		return nil, entities.NewCircularDependency(findCyclePath(deps, remaining))
	}
	return ordered, nil
}

// OrderWithCycles returns a deterministic total order tolerating cycles:
// Kahn's algorithm over the SCC condensation, components compared by their
// lexicographically smallest member, members of a component emitted in
// lexicographic order.
func (g *Graph) OrderWithCycles(kinds []entities.DependencyKind) []string {
	components := g.stronglyConnected(kinds)
	memberOf := make(map[string]int, len(g.names))
	for id, component := range components {
		sort.Strings(component)
		for _, name := range component {
			memberOf[name] = id
		}
	}

	deps := g.adjacency(kinds)
	pending := make([]int, len(components))
	dependents := make(map[int]map[int]bool, len(components))
	seen := make(map[[2]int]bool)
	for from, successors := range deps {
		for to := range successors {
			fromComp, toComp := memberOf[from], memberOf[to]
			if fromComp == toComp {
				continue
			}
			pair := [2]int{fromComp, toComp}
			if seen[pair] {
				continue
			}
			seen[pair] = true
			pending[fromComp]++
			if dependents[toComp] == nil {
				dependents[toComp] = make(map[int]bool)
			}
			dependents[toComp][fromComp] = true
		}
	}

	ready := newReadyQueue()
	readyID := make(map[string]int, len(components))
	for id, component := range components {
		readyID[component[0]] = id
		if pending[id] == 0 {
			ready.push(component[0])
		}
	}

	ordered := make([]string, 0, len(g.names))
	for ready.len() > 0 {
		id := readyID[ready.pop()]
		ordered = append(ordered, components[id]...)
		for dependent := range dependents[id] {
			pending[dependent]--
			if pending[dependent] == 0 {
				ready.push(components[dependent][0])
			}
		}
	}
	return ordered
}

// findCyclePath walks dependency edges inside the remaining set until a
// node repeats, yielding a path of the form a -> b -> a. Every remaining
// node still has a pending dependency, so the walk cannot dead-end.
func findCyclePath(deps map[string]map[string]bool, remaining map[string]bool) []string {
	start := ""
	for name := range remaining {
		if start == "" || name < start {
			start = name
		}
	}

	visitedAt := map[string]int{}
	var path []string
	current := start
	for {
		if at, seen := visitedAt[current]; seen {
			return append(path[at:], current)
		}
		visitedAt[current] = len(path)
		path = append(path, current)

		next := ""
		for dep := range deps[current] {
			if remaining[dep] && (next == "" || dep < next) {
				next = dep
			}
		}
		if next == "" {
			return path
		}
		current = next
	}
}

// readyQueue keeps candidate names sorted so pop always yields the
// lexicographically smallest ready node.
type readyQueue struct {
	names []string
}

func newReadyQueue() *readyQueue { return &readyQueue{} }

func (q *readyQueue) len() int { return len(q.names) }

func (q *readyQueue) push(name string) {
	at := sort.SearchStrings(q.names, name)
	q.names = append(q.names, "")
	copy(q.names[at+1:], q.names[at:])
	q.names[at] = name
}

func (q *readyQueue) pop() string {
	name := q.names[0]
	q.names = q.names[1:]
	return name
}
