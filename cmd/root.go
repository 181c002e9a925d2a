package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"depsorder/internal/config"
	"depsorder/internal/dependency"
	"depsorder/internal/metadata"
	"depsorder/internal/printer"
	"depsorder/internal/runner"
	"depsorder/internal/watch"
	"depsorder/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error: graph build failure, cycle
	// detection, invalid configuration.
	ExitCodeError = 1
)

// rootFlags holds the flag values for the root command. Values not set on
// the command line fall back to the user config file, then to built-in
// defaults.
type rootFlags struct {
	workspaceOnly bool
	execTemplate  string
	waitSeconds   int
	dir           string
	output        string
	format        string
	keepGoing     bool
	confirm       bool
	watchMode     bool
	logLevel      string
	shell         string
}

var flags rootFlags

// rootCmd represents the base command. Running depsorder without a
// subcommand performs the ordering itself.
var rootCmd = &cobra.Command{
	Use:   "depsorder",
	Short: "List Go module dependencies in deterministic leaf-first order",
	Long: `depsorder inspects a Go module or multi-module workspace, builds the
dependency graph from the toolchain's own metadata and prints every
dependency in leaf-first order: a module always appears before the
modules that require it.

Optionally a shell command is executed for each dependency in that
order. In the command template, '{}' is replaced with the module path,
'{version}' with its version and '{path}' with its source directory.`,
	Example: `  # Print the full dependency ordering
  depsorder

  # Only the workspace's own modules, as a table
  depsorder --workspace-only -o table

  # Run a command per workspace module, leaf-first, pausing 2s in between
  depsorder --workspace-only --exec "echo {} v{version}" --wait 2`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	RunE:         runRoot,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. It runs the root
// command and exits the process with a semantic exit code on failure.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "depsorder version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the exit code for an error. A failing per-node
// command propagates the child's own exit status; everything else is a
// general error.
func getExitCode(err error) int {
	var cmdErr *runner.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitStatus > 0 {
		return cmdErr.ExitStatus
	}
	return ExitCodeError
}

// InvalidConfigurationError reports a malformed flag or flag combination. It
// is raised before any graph work begins.
type InvalidConfigurationError struct {
	Flag   string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: --%s: %s", e.Flag, e.Reason)
}

// applyConfig fills in flag values the user did not pass from the loaded
// config file.
func applyConfig(cmd *cobra.Command, cfg config.Config) {
	if !cmd.Flags().Changed("output") && cfg.Output != "" {
		flags.output = cfg.Output
	}
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		flags.logLevel = cfg.LogLevel
	}
	if !cmd.Flags().Changed("keep-going") {
		flags.keepGoing = cfg.KeepGoing
	}
	if !cmd.Flags().Changed("wait") && cfg.Wait > 0 {
		flags.waitSeconds = cfg.Wait
	}
	if flags.shell == "" {
		flags.shell = cfg.Shell
	}
}

// validateFlags enforces the flag contract before any graph work begins.
func validateFlags(cmd *cobra.Command) error {
	if flags.waitSeconds < 0 {
		return &InvalidConfigurationError{Flag: "wait", Reason: "must be a non-negative number of seconds"}
	}
	if err := printer.ValidateFormat(flags.output); err != nil {
		return &InvalidConfigurationError{Flag: "output", Reason: err.Error()}
	}
	if cmd.Flags().Changed("exec") && flags.execTemplate == "" {
		return &InvalidConfigurationError{Flag: "exec", Reason: "command template must not be empty"}
	}
	if flags.watchMode && flags.execTemplate != "" {
		return &InvalidConfigurationError{Flag: "watch", Reason: "cannot be combined with --exec"}
	}
	if flags.confirm && flags.execTemplate == "" {
		return &InvalidConfigurationError{Flag: "confirm", Reason: "only applies together with --exec"}
	}
	// Compare the effective output value: it may come from the config
	// file rather than the command line.
	if flags.format != "" && flags.output != string(printer.FormatPlain) {
		return &InvalidConfigurationError{Flag: "format", Reason: "cannot be combined with --output " + flags.output}
	}
	return nil
}

// resolveOrdering runs the read-only half of the pipeline: snapshot the
// metadata, build the graph, order it, apply the scope filter.
func resolveOrdering(ctx context.Context, source metadata.Source) ([]*dependency.Node, error) {
	records, err := source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	graph, err := dependency.Build(records)
	if err != nil {
		return nil, err
	}
	logging.Debug("Orderer", "graph built: %d nodes, %d edges", graph.Len(), graph.EdgeCount())
	ordering, err := dependency.Order(graph)
	if err != nil {
		return nil, err
	}
	return dependency.Workspace(ordering, flags.workspaceOnly), nil
}

// printOrdering renders the ordering according to --format / --output.
func printOrdering(cmd *cobra.Command, ordering []*dependency.Node) error {
	if flags.format != "" {
		return printer.RenderTemplate(cmd.OutOrStdout(), ordering, flags.format)
	}
	return printer.Render(cmd.OutOrStdout(), ordering, printer.Format(flags.output))
}

func runRoot(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetDefaultConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	applyConfig(cmd, cfg)

	level, err := logging.ParseLevel(flags.logLevel)
	if err != nil {
		return &InvalidConfigurationError{Flag: "log-level", Reason: err.Error()}
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())

	if err := validateFlags(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := &metadata.GoToolchain{Dir: flags.dir, Quiet: flags.watchMode}

	ordering, err := resolveOrdering(ctx, source)
	if err != nil {
		return err
	}

	if flags.execTemplate != "" {
		return runCommands(ctx, cmd, ordering)
	}

	if err := printOrdering(cmd, ordering); err != nil {
		return err
	}
	if flags.watchMode {
		return watchAndReprint(ctx, cmd, source, ordering)
	}
	return nil
}

// runCommands executes the template for every node of the ordering,
// leaf-first, with the configured failure policy.
func runCommands(ctx context.Context, cmd *cobra.Command, ordering []*dependency.Node) error {
	r := &runner.Runner{
		Template:  flags.execTemplate,
		Wait:      time.Duration(flags.waitSeconds) * time.Second,
		KeepGoing: flags.keepGoing,
		Shell:     flags.shell,
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
	}
	if flags.confirm {
		prompter, err := runner.NewReadlinePrompter()
		if err != nil {
			return err
		}
		defer prompter.Close()
		r.Prompter = prompter
	}
	return r.Run(ctx, ordering)
}

// watchAndReprint blocks until interrupted, re-resolving and re-printing the
// ordering whenever a manifest file changes. Transient resolution failures
// (e.g. a half-saved go.mod) are logged, not fatal.
func watchAndReprint(ctx context.Context, cmd *cobra.Command, source metadata.Source, last []*dependency.Node) error {
	var memberDirs []string
	for _, n := range last {
		if n.IsWorkspaceMember {
			memberDirs = append(memberDirs, n.SourcePath)
		}
	}
	root := flags.dir
	if root == "" {
		root = "."
	}
	dirs := watch.ManifestDirs(root, memberDirs)

	return watch.Watch(ctx, dirs, func() {
		ordering, err := resolveOrdering(ctx, source)
		if err != nil {
			logging.Error("Watch", err, "failed to refresh dependency ordering")
			return
		}
		fmt.Fprintln(cmd.OutOrStdout())
		if err := printOrdering(cmd, ordering); err != nil {
			logging.Error("Watch", err, "failed to render dependency ordering")
		}
	})
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	f := rootCmd.Flags()
	f.BoolVar(&flags.workspaceOnly, "workspace-only", false, "Show only dependencies within the workspace")
	f.StringVar(&flags.execTemplate, "exec", "", "Command to execute for each dependency; '{}', '{version}' and '{path}' are replaced per node")
	f.IntVar(&flags.waitSeconds, "wait", 0, "Seconds to wait between executing commands for consecutive dependencies")
	f.StringVarP(&flags.dir, "dir", "C", "", "Directory of the module or workspace to inspect (default: current directory)")
	f.StringVarP(&flags.output, "output", "o", "plain", "Output format: plain, table, json, yaml")
	f.StringVar(&flags.format, "format", "", "Go template rendered per node instead of the plain line (sprig functions available)")
	f.BoolVar(&flags.keepGoing, "keep-going", false, "Continue executing commands after a failure instead of aborting")
	f.BoolVar(&flags.confirm, "confirm", false, "Ask for confirmation before each command execution")
	f.BoolVar(&flags.watchMode, "watch", false, "Keep running and re-print the ordering when manifest files change")
	f.StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Pre-registering the version flag gives it the conventional -V
	// shorthand; Cobra picks up the existing flag instead of adding its
	// own.
	f.BoolP("version", "V", false, "Print the version number and exit")
}
