package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"depsorder/internal/dependency"
	"depsorder/pkg/logging"

	"github.com/google/uuid"
)

// Decision is a Prompter's answer for one node.
type Decision int

const (
	// DecisionRun executes the command for the node.
	DecisionRun Decision = iota
	// DecisionSkip skips the node and moves on to the next one.
	DecisionSkip
	// DecisionAbort stops the run without processing further nodes.
	DecisionAbort
)

// Prompter asks the user whether to run the command for a node. It is only
// consulted when --confirm is set.
type Prompter interface {
	Confirm(node dependency.Identity, command string) (Decision, error)
}

// Runner executes a command template sequentially against an ordering. It is
// strictly single-threaded: each child process blocks the runner until it
// terminates, and the configured wait is a plain sleep between consecutive
// executions.
type Runner struct {
	// Template is the command template; Expand is applied per node.
	Template string
	// Wait is the pause inserted between consecutive executions. Never
	// before the first, never after the last.
	Wait time.Duration
	// KeepGoing continues past failing commands and reports all failures
	// at the end. The default (false) aborts on the first failure.
	KeepGoing bool
	// Shell overrides the host shell. Empty selects sh -c (cmd /C on
	// Windows).
	Shell string
	// Prompter, when non-nil, is consulted before every execution.
	Prompter Prompter

	// Stdout and Stderr are inherited by child processes. Nil means the
	// process's own streams.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// spawn and sleep are replaced in tests.
	spawn func(ctx context.Context, command, dir string) error
	sleep func(ctx context.Context, d time.Duration) error
}

// shellCommand returns the host shell binary and its command flag.
func shellCommand(override string) (string, string) {
	if override != "" {
		return override, "-c"
	}
	if runtime.GOOS == "windows" {
		return "cmd", "/C"
	}
	return "sh", "-c"
}

// Run executes the template against every node in order. It returns nil only
// when every command completed with status zero; cancellation terminates the
// in-flight child and surfaces an InterruptedError describing the partial
// completion.
func (r *Runner) Run(ctx context.Context, ordering []*dependency.Node) error {
	runID := uuid.New().String()
	logging.Debug("Runner", "run %s: %d nodes, wait=%s, keepGoing=%v", runID, len(ordering), r.Wait, r.KeepGoing)

	spawn := r.spawn
	if spawn == nil {
		spawn = r.spawnShell
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var failures []*CommandError
	completed := 0
	executedAny := false

	for _, n := range ordering {
		if err := ctx.Err(); err != nil {
			return &InterruptedError{Completed: completed, Total: len(ordering)}
		}

		command := Expand(r.Template, n)

		if r.Prompter != nil {
			decision, err := r.Prompter.Confirm(n.Identity, command)
			if err != nil {
				return err
			}
			switch decision {
			case DecisionSkip:
				logging.Info("Runner", "run %s: skipped %s", runID, n.Identity)
				continue
			case DecisionAbort:
				return &InterruptedError{Completed: completed, Total: len(ordering)}
			}
		}

		if executedAny && r.Wait > 0 {
			logging.Debug("Runner", "run %s: waiting %s before next command", runID, r.Wait)
			if err := sleep(ctx, r.Wait); err != nil {
				return &InterruptedError{Completed: completed, Total: len(ordering)}
			}
		}

		logging.Info("Runner", "run %s: executing %q for %s", runID, command, n.Identity)
		executedAny = true
		err := spawn(ctx, command, n.SourcePath)
		if err != nil {
			if ctx.Err() != nil {
				return &InterruptedError{Completed: completed, Total: len(ordering)}
			}
			var cmdErr *CommandError
			if !errors.As(err, &cmdErr) {
				return err // SpawnError or worse; never continue past these
			}
			cmdErr.Node = n.Identity
			logging.Error("Runner", cmdErr, "run %s: command failed for %s", runID, n.Identity)
			if !r.KeepGoing {
				return cmdErr
			}
			failures = append(failures, cmdErr)
			continue
		}
		completed++
	}

	if len(failures) > 0 {
		return &FailuresError{Failures: failures}
	}
	logging.Debug("Runner", "run %s: completed %d commands", runID, completed)
	return nil
}

// spawnShell runs one concrete command via the host shell, blocking until it
// terminates. The child's working directory is the node's source path when
// known; stdio is inherited.
func (r *Runner) spawnShell(ctx context.Context, command, dir string) error {
	shell, flag := shellCommand(r.Shell)
	cmd := exec.CommandContext(ctx, shell, flag, command)
	if dir != "" {
		if _, err := os.Stat(dir); err == nil {
			cmd.Dir = dir
		}
	}
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if r.Stdin != nil {
		cmd.Stdin = r.Stdin
	} else {
		cmd.Stdin = os.Stdin
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{Command: command, ExitStatus: exitErr.ExitCode()}
	}
	return &SpawnError{Command: command, Err: err}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
