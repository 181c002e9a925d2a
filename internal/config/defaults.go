package config

// GetDefaultConfig returns the built-in defaults used when no config.yaml
// exists or a field is left unset.
func GetDefaultConfig() Config {
	return Config{
		Output:   "plain",
		LogLevel: "info",
	}
}
