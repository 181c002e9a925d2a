package dependency

import (
	"sort"

	"depsorder/internal/metadata"
)

// Identity uniquely names a package inside a dependency graph. Name and
// Version are opaque strings taken verbatim from the metadata source; the
// graph never interprets them beyond equality and lexicographic comparison.
type Identity struct {
	Name    string
	Version string
}

// String renders the identity in the toolchain's name@version form.
func (id Identity) String() string {
	if id.Version == "" {
		return id.Name
	}
	return id.Name + "@" + id.Version
}

// Less orders identities lexicographically by name, then by version. This is
// the tie-break used whenever the orderer must choose among several eligible
// nodes, and the single property that keeps output reproducible across runs.
func (id Identity) Less(other Identity) bool {
	if id.Name != other.Name {
		return id.Name < other.Name
	}
	return id.Version < other.Version
}

// Node represents one package together with its direct dependency list.
//
// Nodes are owned exclusively by the Graph; DependsOn references other nodes
// by identity, never by pointer, so edges stay a relation rather than a
// second ownership path.
type Node struct {
	Identity
	IsWorkspaceMember bool
	SourcePath        string
	DependsOn         []Identity
}

// Graph is an immutable directed graph of packages and their "depends-on"
// edges. It is built once per invocation from a metadata snapshot via Build
// and never mutated afterwards.
type Graph struct {
	nodes map[Identity]*Node
}

// Build constructs a Graph from a flat collection of metadata records.
//
// Duplicate (name, version) records collapse into a single node whose
// dependency set is the union of all duplicates. Every dependency identity
// must resolve to a record in the same collection; an unresolved reference
// fails with a DanglingDependencyError before any ordering is attempted.
func Build(records []metadata.Record) (*Graph, error) {
	nodes := make(map[Identity]*Node, len(records))
	// Per node, a set view of DependsOn used to union duplicates.
	depSets := make(map[Identity]map[Identity]struct{}, len(records))

	for _, rec := range records {
		id := Identity{Name: rec.Name, Version: rec.Version}
		n, ok := nodes[id]
		if !ok {
			n = &Node{
				Identity:          id,
				IsWorkspaceMember: rec.IsWorkspaceMember,
				SourcePath:        rec.Dir,
			}
			nodes[id] = n
			depSets[id] = make(map[Identity]struct{})
		} else {
			// Either duplicate may carry the membership flag or the path.
			n.IsWorkspaceMember = n.IsWorkspaceMember || rec.IsWorkspaceMember
			if n.SourcePath == "" {
				n.SourcePath = rec.Dir
			}
		}
		for _, dep := range rec.DependsOn {
			depSets[id][Identity{Name: dep.Name, Version: dep.Version}] = struct{}{}
		}
	}

	for id, set := range depSets {
		n := nodes[id]
		n.DependsOn = make([]Identity, 0, len(set))
		for dep := range set {
			if _, ok := nodes[dep]; !ok {
				return nil, &DanglingDependencyError{Dependent: id, Missing: dep}
			}
			n.DependsOn = append(n.DependsOn, dep)
		}
		// Keep the adjacency list itself deterministic, not just the
		// final ordering.
		sort.Slice(n.DependsOn, func(i, j int) bool {
			return n.DependsOn[i].Less(n.DependsOn[j])
		})
	}

	return &Graph{nodes: nodes}, nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Get returns the stored node for the given identity, or nil if it does not
// exist.
func (g *Graph) Get(id Identity) *Node {
	return g.nodes[id]
}

// Dependencies returns a copy of the immediate dependency identities of the
// given node, in deterministic order.
func (g *Graph) Dependencies(id Identity) []Identity {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	deps := make([]Identity, len(n.DependsOn))
	copy(deps, n.DependsOn)
	return deps
}

// Dependents returns the identities of all nodes that directly depend on the
// given node, in deterministic order.
func (g *Graph) Dependents(id Identity) []Identity {
	var res []Identity
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			if dep == id {
				res = append(res, n.Identity)
				break
			}
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Less(res[j]) })
	return res
}

// EdgeCount returns the total number of depends-on edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, n := range g.nodes {
		total += len(n.DependsOn)
	}
	return total
}

// identities returns all node identities in deterministic order.
func (g *Graph) identities() []Identity {
	ids := make([]Identity, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// formatIdentities joins identities into a readable comma-separated list for
// error messages.
func formatIdentities(ids []Identity) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += id.String()
	}
	return out
}
