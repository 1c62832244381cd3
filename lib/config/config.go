// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for TENEX clients.
//
// The main configuration is loaded from a single YAML file specified
// by:
//   - TENEX_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides. The
// only expansion performed is ${HOME} and similar path variables for
// portability.
//
// Mutable per-user state (trust decisions, archived conversations,
// stored credentials, audio settings) lives separately in
// [Preferences], a JSON file the client rewrites as the user acts;
// see preferences.go.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the static configuration for a TENEX client.
type Config struct {
	// DataDir is the base directory for all local state: the event
	// database, the state cache, preferences, and audio artifacts.
	DataDir string `yaml:"data_dir"`

	// Relays are the websocket URLs subscribed on startup.
	Relays []string `yaml:"relays"`

	// Logging configures the slog output.
	Logging LoggingConfig `yaml:"logging"`

	// Status tunes project status handling.
	Status StatusConfig `yaml:"status"`

	// Cache tunes the state cache snapshot.
	Cache CacheConfig `yaml:"cache"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level"`

	// File is an optional log file path. Empty means stderr.
	File string `yaml:"file"`
}

// StatusConfig tunes project status handling.
type StatusConfig struct {
	// StalenessSeconds is how long after the last status event a
	// project's backend is considered offline. Default: 60.
	StalenessSeconds uint64 `yaml:"staleness_seconds"`
}

// CacheConfig tunes the state cache snapshot.
type CacheConfig struct {
	// MaxAgeSeconds discards snapshots older than this on load.
	// Default: 7 days.
	MaxAgeSeconds uint64 `yaml:"max_age_seconds"`

	// Disabled skips both reading and writing the snapshot, forcing a
	// full rebuild from the event database on every start.
	Disabled bool `yaml:"disabled"`
}

// Default returns the configuration used when the file omits a field.
func Default() *Config {
	return &Config{
		DataDir: "${HOME}/.local/share/tenex",
		Relays:  nil,
		Logging: LoggingConfig{Level: "info"},
		Status:  StatusConfig{StalenessSeconds: 60},
		Cache:   CacheConfig{MaxAgeSeconds: 7 * 24 * 60 * 60},
	}
}

// Load loads configuration from the TENEX_CONFIG environment variable.
//
// There are no fallbacks or defaults — if TENEX_CONFIG is not set,
// this fails. Use LoadFile when the path came from a flag.
func Load() (*Config, error) {
	path := os.Getenv("TENEX_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("config: TENEX_CONFIG environment variable not set; " +
			"set it to the path of your tenex.yaml config file, or use --config flag")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. The config
// file is the single source of truth; environment variables do not
// override config values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

var homeVariable = regexp.MustCompile(`\$\{HOME\}|\$HOME\b`)

// expandVariables substitutes ${HOME} in path fields. Nothing else is
// expanded; configuration stays literal.
func (c *Config) expandVariables() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	c.DataDir = homeVariable.ReplaceAllString(c.DataDir, home)
	c.Logging.File = homeVariable.ReplaceAllString(c.Logging.File, home)
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	if c.Status.StalenessSeconds == 0 {
		return fmt.Errorf("status.staleness_seconds must be positive")
	}
	return nil
}
