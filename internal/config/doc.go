// Package config loads the user-level defaults for depsorder from
// ~/.config/depsorder/config.yaml (overridable via DEPSORDER_CONFIG_DIR).
//
// Precedence is flags over file over built-in defaults; the file only
// supplies values for flags the user did not pass on the command line.
package config
