package runner

import (
	"fmt"

	"depsorder/internal/dependency"
)

// CommandError indicates that the command executed for a node exited with a
// non-zero status. Under the default fail-fast policy it halts the run and
// its ExitStatus is propagated as the process exit code.
type CommandError struct {
	Node       dependency.Identity
	Command    string
	ExitStatus int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q for %s exited with status %d", e.Command, e.Node, e.ExitStatus)
}

// SpawnError indicates that a command could not be started at all (missing
// shell, fork failure). It is distinct from CommandError because there is no
// child exit status to propagate.
type SpawnError struct {
	Node    dependency.Identity
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to execute command %q for %s: %v", e.Command, e.Node, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// FailuresError aggregates the per-node failures collected under the
// keep-going policy. It is only returned once every node has been attempted.
type FailuresError struct {
	Failures []*CommandError
}

func (e *FailuresError) Error() string {
	if len(e.Failures) == 1 {
		return e.Failures[0].Error()
	}
	msg := fmt.Sprintf("%d commands failed:", len(e.Failures))
	for _, f := range e.Failures {
		msg += "\n  " + f.Error()
	}
	return msg
}

// InterruptedError indicates the run was cancelled (typically by SIGINT)
// before all nodes were processed. Completed counts the nodes whose commands
// finished successfully; the partial completion is reported explicitly, never
// as success.
type InterruptedError struct {
	Completed int
	Total     int
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("run interrupted: %d of %d commands completed", e.Completed, e.Total)
}
