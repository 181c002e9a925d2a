// Package dependency provides the directed acyclic graph (DAG) at the heart
// of depsorder.
//
// A Graph is built once per invocation from the flat record collection the
// metadata source returns, and is immutable afterwards. Build enforces the
// input contract (every referenced dependency resolves inside the same
// collection, duplicates collapse with unioned edges); Order derives the
// leaf-first linearization; Workspace restricts it to local modules.
//
// # Dependency Rules
//
//  1. Edges point from dependent to dependency ("A requires B first").
//  2. The graph must be a DAG. The upstream toolchain guarantees this in
//     practice, but Order still detects cycles and refuses to emit a partial
//     ordering rather than looping or truncating.
//  3. Whenever several nodes are eligible at once, they are emitted in
//     lexicographic (name, version) order. This tie-break is what makes two
//     runs over the same manifest produce byte-identical output.
//
// # Usage Example
//
//	g, err := dependency.Build(records)
//	if err != nil {
//		return err // DanglingDependencyError
//	}
//	ordering, err := dependency.Order(g)
//	if err != nil {
//		return err // CycleError
//	}
//	members := dependency.Workspace(ordering, true)
//
// The package is pure: no I/O, no goroutines, no shared mutable state.
package dependency
