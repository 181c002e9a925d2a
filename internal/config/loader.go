package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"depsorder/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/depsorder"
	configFileName = "config.yaml"

	// ConfigDirEnvVar overrides the config directory, mainly for tests
	// and CI.
	ConfigDirEnvVar = "DEPSORDER_CONFIG_DIR"
)

// GetDefaultConfigPath returns the directory config.yaml is loaded from,
// honoring the DEPSORDER_CONFIG_DIR override.
func GetDefaultConfigPath() (string, error) {
	if dir := os.Getenv(ConfigDirEnvVar); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads configuration from the specified directory. A missing
// config.yaml is not an error: the built-in defaults are returned. A
// malformed file is fatal; silently falling back to defaults would hide a
// typo in the user's failure-policy setting.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "no config.yaml at %s, using defaults", configFilePath)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	logging.Debug("ConfigLoader", "loaded configuration from %s", configFilePath)
	return cfg, nil
}
