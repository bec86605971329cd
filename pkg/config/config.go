package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	xdgAppName = "mailtask"
	configFile = "config.json"

	defaultLabel = "status-reports"
)

// Config holds the persisted defaults. The exclusion flags are pointers so
// that an absent field falls back to the default (true) instead of false.
type Config struct {
	Label                 string `json:"label"`
	ExcludeMiddlePriority *bool  `json:"exclude_middle_priority,omitempty"`
	ExcludeAfter5pm       *bool  `json:"exclude_after_5pm,omitempty"`
}

// MiddlePriorityExcluded reports the effective exclude_middle_priority
// setting (default true).
func (c *Config) MiddlePriorityExcluded() bool {
	return c.ExcludeMiddlePriority == nil || *c.ExcludeMiddlePriority
}

// After5pmExcluded reports the effective exclude_after_5pm setting
// (default true).
func (c *Config) After5pmExcluded() bool {
	return c.ExcludeAfter5pm == nil || *c.ExcludeAfter5pm
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName, configFile), nil
}

func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Label: defaultLabel}, nil
		}
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Label == "" {
		cfg.Label = defaultLabel
	}
	return &cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
