package runner

import (
	"fmt"
	"io"
	"strings"

	"depsorder/internal/dependency"

	"github.com/chzyer/readline"
)

// ReadlinePrompter asks for confirmation on the terminal before each command.
// Answers: y runs the command, a aborts the whole run, anything else (the
// default) skips the node.
type ReadlinePrompter struct {
	rl *readline.Instance
}

// NewReadlinePrompter opens a readline instance on the controlling terminal.
// Callers must Close it when the run finishes.
func NewReadlinePrompter() (*ReadlinePrompter, error) {
	rl, err := readline.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal for confirmation prompts: %w", err)
	}
	return &ReadlinePrompter{rl: rl}, nil
}

// Confirm implements Prompter.
func (p *ReadlinePrompter) Confirm(node dependency.Identity, command string) (Decision, error) {
	p.rl.SetPrompt(fmt.Sprintf("run %q for %s? [y/N/a] ", command, node))
	line, err := p.rl.Readline()
	if err != nil {
		// Ctrl-C / Ctrl-D abort the run rather than silently skipping.
		if err == readline.ErrInterrupt || err == io.EOF {
			return DecisionAbort, nil
		}
		return DecisionAbort, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return DecisionRun, nil
	case "a", "abort", "q", "quit":
		return DecisionAbort, nil
	default:
		return DecisionSkip, nil
	}
}

// Close releases the terminal.
func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}
