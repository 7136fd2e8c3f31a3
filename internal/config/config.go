// Package config reads the repository-level branchflow configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the configuration file looked up at the repo root.
const ConfigFileName = ".branchflow.yml"

// GitHub configures the optional GitHub commit-status notifier.
type GitHub struct {
	Enabled bool   `yaml:"enabled"`
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
}

// Config is the repository configuration. Every field has a working
// default; a missing config file is not an error.
type Config struct {
	// Remote is the git remote promotions are pushed to.
	Remote string `yaml:"remote"`
	// EventLog is the JSONL event log path, relative to the repo root.
	EventLog string `yaml:"eventLog"`
	// GitHub enables forwarding events as commit statuses.
	GitHub GitHub `yaml:"github"`
}

// Load reads the configuration from repoRoot, applying defaults for
// anything unset.
func Load(repoRoot string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(filepath.Join(repoRoot, ConfigFileName))
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Remote == "" {
		c.Remote = "origin"
	}
	if c.EventLog == "" {
		c.EventLog = filepath.Join(".git", "branchflow_events.log")
	}
}

// EventLogPath returns the absolute event log path.
func (c *Config) EventLogPath(repoRoot string) string {
	if filepath.IsAbs(c.EventLog) {
		return c.EventLog
	}
	return filepath.Join(repoRoot, c.EventLog)
}

// DebugLogPath returns the rotating debug logfile path.
func DebugLogPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", "branchflow_debug.log")
}

// LockPath returns the advisory lock file path used to serialize promotion
// actions against a single repository.
func LockPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", "branchflow.lock")
}
