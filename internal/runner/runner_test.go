package runner

import (
	"context"
	"testing"
	"time"

	"depsorder/internal/dependency"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(name, version string) *dependency.Node {
	return &dependency.Node{Identity: dependency.Identity{Name: name, Version: version}}
}

// recorder captures the interleaving of executions and sleeps without
// touching a real shell or clock.
type recorder struct {
	events []string
	// failWith maps a command string to the exit status it should fail
	// with.
	failWith map[string]int
}

func (r *recorder) spawn(ctx context.Context, command, dir string) error {
	r.events = append(r.events, "exec "+command)
	if status, ok := r.failWith[command]; ok {
		return &CommandError{Command: command, ExitStatus: status}
	}
	return nil
}

func (r *recorder) sleep(ctx context.Context, d time.Duration) error {
	r.events = append(r.events, "sleep "+d.String())
	return ctx.Err()
}

func newRunner(rec *recorder, opts func(*Runner)) *Runner {
	r := &Runner{
		Template: "install {}",
		spawn:    rec.spawn,
		sleep:    rec.sleep,
	}
	if opts != nil {
		opts(r)
	}
	return r
}

func TestRunExecutesInOrder(t *testing.T) {
	rec := &recorder{}
	r := newRunner(rec, nil)

	err := r.Run(context.Background(), []*dependency.Node{
		node("lib", "1.0.0"),
		node("app", "0.1.0"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"exec install lib", "exec install app"}, rec.events)
}

func TestRunWaitOnlyBetweenExecutions(t *testing.T) {
	rec := &recorder{}
	r := newRunner(rec, func(r *Runner) { r.Wait = 2 * time.Second })

	err := r.Run(context.Background(), []*dependency.Node{
		node("a", "1"),
		node("b", "1"),
		node("c", "1"),
	})
	require.NoError(t, err)

	// Exactly two delays: before the second and third execution, never
	// before the first or after the last.
	assert.Equal(t, []string{
		"exec install a",
		"sleep 2s",
		"exec install b",
		"sleep 2s",
		"exec install c",
	}, rec.events)
}

func TestRunNoWaitForSingleNode(t *testing.T) {
	rec := &recorder{}
	r := newRunner(rec, func(r *Runner) { r.Wait = 5 * time.Second })

	err := r.Run(context.Background(), []*dependency.Node{node("only", "1")})
	require.NoError(t, err)
	assert.Equal(t, []string{"exec install only"}, rec.events)
}

func TestRunFailFast(t *testing.T) {
	rec := &recorder{failWith: map[string]int{"install b": 7}}
	r := newRunner(rec, nil)

	err := r.Run(context.Background(), []*dependency.Node{
		node("a", "1"),
		node("b", "1"),
		node("c", "1"),
	})

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, dependency.Identity{Name: "b", Version: "1"}, cmdErr.Node)
	assert.Equal(t, 7, cmdErr.ExitStatus)

	// c was never attempted.
	assert.Equal(t, []string{"exec install a", "exec install b"}, rec.events)
}

func TestRunKeepGoing(t *testing.T) {
	rec := &recorder{failWith: map[string]int{"install a": 2, "install c": 3}}
	r := newRunner(rec, func(r *Runner) { r.KeepGoing = true })

	err := r.Run(context.Background(), []*dependency.Node{
		node("a", "1"),
		node("b", "1"),
		node("c", "1"),
	})

	var failures *FailuresError
	require.ErrorAs(t, err, &failures)
	require.Len(t, failures.Failures, 2)
	assert.Equal(t, "a", failures.Failures[0].Node.Name)
	assert.Equal(t, "c", failures.Failures[1].Node.Name)

	// Every node was attempted despite the failures.
	assert.Equal(t, []string{"exec install a", "exec install b", "exec install c"}, rec.events)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	r := newRunner(rec, nil)

	err := r.Run(ctx, []*dependency.Node{node("a", "1"), node("b", "1")})

	var interrupted *InterruptedError
	require.ErrorAs(t, err, &interrupted)
	assert.Equal(t, 0, interrupted.Completed)
	assert.Equal(t, 2, interrupted.Total)
	assert.Empty(t, rec.events)
}

func TestRunCancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	rec := &recorder{}
	r := &Runner{
		Template: "install {}",
		Wait:     time.Second,
		spawn: func(c context.Context, command, dir string) error {
			rec.events = append(rec.events, "exec "+command)
			if command == "install a" {
				cancel() // simulate SIGINT while the first command runs
			}
			return nil
		},
		sleep: rec.sleep,
	}

	err := r.Run(ctx, []*dependency.Node{node("a", "1"), node("b", "1")})

	var interrupted *InterruptedError
	require.ErrorAs(t, err, &interrupted)
	assert.Equal(t, 1, interrupted.Completed)
	assert.Equal(t, 2, interrupted.Total)
	assert.Equal(t, []string{"exec install a"}, rec.events)
}

type scriptedPrompter struct {
	decisions []Decision
	asked     []dependency.Identity
}

func (p *scriptedPrompter) Confirm(id dependency.Identity, command string) (Decision, error) {
	p.asked = append(p.asked, id)
	d := p.decisions[0]
	p.decisions = p.decisions[1:]
	return d, nil
}

func TestRunPrompterSkipAndAbort(t *testing.T) {
	t.Run("skip continues with next node", func(t *testing.T) {
		rec := &recorder{}
		p := &scriptedPrompter{decisions: []Decision{DecisionSkip, DecisionRun}}
		r := newRunner(rec, func(r *Runner) { r.Prompter = p })

		err := r.Run(context.Background(), []*dependency.Node{node("a", "1"), node("b", "1")})
		require.NoError(t, err)
		assert.Equal(t, []string{"exec install b"}, rec.events)
		assert.Len(t, p.asked, 2)
	})

	t.Run("abort stops the run", func(t *testing.T) {
		rec := &recorder{}
		p := &scriptedPrompter{decisions: []Decision{DecisionRun, DecisionAbort}}
		r := newRunner(rec, func(r *Runner) { r.Prompter = p })

		err := r.Run(context.Background(), []*dependency.Node{node("a", "1"), node("b", "1"), node("c", "1")})

		var interrupted *InterruptedError
		require.ErrorAs(t, err, &interrupted)
		assert.Equal(t, 1, interrupted.Completed)
		assert.Equal(t, []string{"exec install a"}, rec.events)
	})
}

func TestRunSkippedNodeDoesNotTriggerWait(t *testing.T) {
	rec := &recorder{}
	p := &scriptedPrompter{decisions: []Decision{DecisionRun, DecisionSkip, DecisionRun}}
	r := newRunner(rec, func(r *Runner) {
		r.Prompter = p
		r.Wait = time.Second
	})

	err := r.Run(context.Background(), []*dependency.Node{node("a", "1"), node("b", "1"), node("c", "1")})
	require.NoError(t, err)

	// The wait applies between executions, and the skipped b does not
	// execute.
	assert.Equal(t, []string{"exec install a", "sleep 1s", "exec install c"}, rec.events)
}

func TestShellCommand(t *testing.T) {
	bin, flag := shellCommand("zsh")
	assert.Equal(t, "zsh", bin)
	assert.Equal(t, "-c", flag)
}

func TestErrorMessages(t *testing.T) {
	cmdErr := &CommandError{
		Node:       dependency.Identity{Name: "lib", Version: "1.0.0"},
		Command:    "make install",
		ExitStatus: 2,
	}
	assert.Equal(t, `command "make install" for lib@1.0.0 exited with status 2`, cmdErr.Error())

	failures := &FailuresError{Failures: []*CommandError{cmdErr, cmdErr}}
	assert.Contains(t, failures.Error(), "2 commands failed:")

	interrupted := &InterruptedError{Completed: 1, Total: 3}
	assert.Equal(t, "run interrupted: 1 of 3 commands completed", interrupted.Error())
}
