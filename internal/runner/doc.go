// Package runner executes a user-supplied command template against a
// leaf-first ordering, one node at a time.
//
// The runner's contract is deliberately narrow: it expands the literal
// placeholders {} (name), {version} and {path} per node, hands the concrete
// string to the host shell, blocks until the child exits, and optionally
// sleeps a fixed duration between consecutive executions. Failure policy is a
// configuration decision: the default aborts on the first non-zero exit
// status and propagates it; KeepGoing attempts every node and aggregates the
// failures. Cancellation kills the in-flight child and reports how far the
// run got.
package runner
