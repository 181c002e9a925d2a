package dependency

import "fmt"

// DanglingDependencyError indicates that a record referenced a dependency
// identity with no corresponding node in the same collection. The graph build
// fails before any ordering is attempted.
type DanglingDependencyError struct {
	// Dependent is the node holding the broken reference.
	Dependent Identity
	// Missing is the identity that could not be resolved.
	Missing Identity
}

func (e *DanglingDependencyError) Error() string {
	return fmt.Sprintf("dangling dependency: %s requires %s, which is not in the package set",
		e.Dependent, e.Missing)
}

// CycleError indicates that the graph is not a DAG. Nodes holds every node
// that could not be emitted, which includes all cycle participants plus
// anything downstream of them. No partial ordering is ever returned alongside
// this error.
type CycleError struct {
	Nodes []Identity
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected among: %s", formatIdentities(e.Nodes))
}
