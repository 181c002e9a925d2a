package dependency

import "sort"

// Order computes a leaf-first linearization of the graph: for every edge
// (dependent, dependency), the dependency appears strictly before the
// dependent. Every node appears exactly once.
//
// The algorithm is a batched Kahn sort. Each round collects every node whose
// dependencies have all been emitted, sorts the batch by (name, version) and
// emits it. The explicit sort at every selection point is what makes the
// output reproducible; relying on map iteration order here would produce a
// different ordering on every run.
//
// If nodes remain after no further progress can be made, the graph contains
// at least one cycle and Order fails with a CycleError naming the leftover
// nodes. No partial ordering is returned.
func Order(g *Graph) ([]*Node, error) {
	pending := make(map[Identity]int, g.Len())
	dependents := make(map[Identity][]Identity, g.Len())

	for _, id := range g.identities() {
		n := g.Get(id)
		pending[id] = len(n.DependsOn)
		for _, dep := range n.DependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	// Seed with the leaves.
	var ready []Identity
	for id, count := range pending {
		if count == 0 {
			ready = append(ready, id)
		}
	}

	out := make([]*Node, 0, g.Len())
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i].Less(ready[j]) })

		var next []Identity
		for _, id := range ready {
			out = append(out, g.Get(id))
			for _, dep := range dependents[id] {
				pending[dep]--
				if pending[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		ready = next
	}

	if len(out) != g.Len() {
		var stuck []Identity
		for id, count := range pending {
			if count > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Slice(stuck, func(i, j int) bool { return stuck[i].Less(stuck[j]) })
		return nil, &CycleError{Nodes: stuck}
	}

	return out, nil
}

// Workspace filters an ordering down to workspace members, preserving the
// relative order of the survivors. With workspaceOnly false it returns the
// input unchanged.
func Workspace(ordering []*Node, workspaceOnly bool) []*Node {
	if !workspaceOnly {
		return ordering
	}
	out := make([]*Node, 0, len(ordering))
	for _, n := range ordering {
		if n.IsWorkspaceMember {
			out = append(out, n)
		}
	}
	return out
}
