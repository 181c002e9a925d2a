package runner

import (
	"strings"

	"depsorder/internal/dependency"
)

// Placeholder tokens recognized in --exec templates. They are literal tokens,
// not a template language: every occurrence is substituted, nothing is
// escaped or quoted.
const (
	placeholderName    = "{}"
	placeholderVersion = "{version}"
	placeholderPath    = "{path}"
)

// Expand substitutes the per-node placeholders in a command template and
// returns the concrete command string to hand to the shell.
func Expand(template string, n *dependency.Node) string {
	cmd := strings.ReplaceAll(template, placeholderName, n.Name)
	cmd = strings.ReplaceAll(cmd, placeholderVersion, n.Version)
	cmd = strings.ReplaceAll(cmd, placeholderPath, n.SourcePath)
	return cmd
}
