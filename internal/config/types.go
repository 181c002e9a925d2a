package config

// Config holds the user-level defaults for depsorder, loaded from
// config.yaml in the user config directory. Command-line flags always win
// over these values.
type Config struct {
	// Output is the default listing format: plain, table, json or yaml.
	Output string `yaml:"output,omitempty"`
	// LogLevel is the default log filter: debug, info, warn or error.
	LogLevel string `yaml:"logLevel,omitempty"`
	// KeepGoing continues past failing commands instead of aborting on
	// the first non-zero exit status.
	KeepGoing bool `yaml:"keepGoing,omitempty"`
	// Wait is the default number of seconds to pause between consecutive
	// command executions.
	Wait int `yaml:"wait,omitempty"`
	// Shell overrides the shell used to execute commands (default: sh,
	// cmd on Windows).
	Shell string `yaml:"shell,omitempty"`
}
