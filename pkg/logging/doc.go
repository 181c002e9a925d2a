// Package logging provides the structured logging layer used across depsorder.
//
// It is a thin wrapper around the standard library's log/slog that tags every
// entry with a subsystem name, so that log output from the metadata source, the
// graph builder and the command runner can be told apart when debugging a run.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelDebug, os.Stderr)
//	logging.Info("Runner", "executing command for %s", node.Name)
//	logging.Error("Metadata", err, "go list failed")
//
// InitForCLI must be called once at startup; an init fallback writes to stderr
// at info level so nothing is silently dropped before that.
package logging
