// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for meshbatch.
//
// Configuration lives in ~/.meshbatch/config.toml with sensible defaults,
// environment variable overrides, and validation. The config file is
// distinct from the settings store, which keeps per-dialog state (such as
// the last-used output folder) in a flat JSON file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/meshbatch/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete meshbatch configuration.
type Config struct {
	// DesignFile is the TOML design fixture opened at startup.
	DesignFile string `toml:"design_file"`

	// DefaultQuality is the dialog's initial mesh quality: "High", "Medium"
	// or "Low".
	DefaultQuality string `toml:"default_quality"`

	// WatchDesign reloads the design file into an open dialog when it
	// changes on disk.
	WatchDesign bool `toml:"watch_design"`

	// History configuration
	History HistoryConfig `toml:"history"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// HistoryConfig controls the export history store.
type HistoryConfig struct {
	// Enabled records every completed batch to the history database.
	Enabled bool `toml:"enabled"`
	// Path overrides the database location (empty = ~/.meshbatch/history.db).
	Path string `toml:"path"`
	// Keep is the number of most recent batches retained (0 = unlimited).
	Keep int `toml:"keep"`
}

// UIConfig contains dialog presentation settings.
type UIConfig struct {
	// Theme is the UI theme: "dark" or "light".
	Theme string `toml:"theme"`
	// CompactMode collapses the per-body name list to save rows.
	CompactMode bool `toml:"compact_mode"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		DesignFile:     "",
		DefaultQuality: "High",
		WatchDesign:    true,
		History: HistoryConfig{
			Enabled: true,
			Keep:    200,
		},
		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the meshbatch configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".meshbatch"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when the file is absent. Environment overrides apply last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with
// validation. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a TOML file atomically.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# meshbatch configuration file\n")
	buf.WriteString("# Generated by meshbatch - edit with care\n")
	buf.WriteString("\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS / VALIDATION / ENV OVERRIDES
// =============================================================================

// SetDefaults fills in missing string fields. History.Keep is left alone:
// an explicit zero means unlimited retention.
func (c *Config) SetDefaults() {
	defaults := Default()
	if c.DefaultQuality == "" {
		c.DefaultQuality = defaults.DefaultQuality
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	validQualities := map[string]bool{"high": true, "medium": true, "low": true}
	if !validQualities[strings.ToLower(c.DefaultQuality)] {
		return fmt.Errorf("default_quality: invalid quality %q, must be one of: High, Medium, Low", c.DefaultQuality)
	}
	validThemes := map[string]bool{"dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		return fmt.Errorf("ui.theme: invalid theme %q, must be one of: dark, light", c.UI.Theme)
	}
	if c.History.Keep < 0 {
		return fmt.Errorf("history.keep: must be non-negative, got %d", c.History.Keep)
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - MESHBATCH_DESIGN: overrides design_file
//   - MESHBATCH_QUALITY: overrides default_quality
//   - MESHBATCH_NO_HISTORY: set to "1" or "true" to disable history
func (c *Config) ApplyEnvOverrides() {
	if design := os.Getenv("MESHBATCH_DESIGN"); design != "" {
		c.DesignFile = design
	}
	if quality := os.Getenv("MESHBATCH_QUALITY"); quality != "" {
		c.DefaultQuality = quality
	}
	if no := os.Getenv("MESHBATCH_NO_HISTORY"); no == "1" || strings.ToLower(no) == "true" {
		c.History.Enabled = false
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g. "ui.theme").
func (c *Config) Get(key string) (interface{}, error) {
	switch strings.ToLower(key) {
	case "design_file":
		return c.DesignFile, nil
	case "default_quality":
		return c.DefaultQuality, nil
	case "watch_design":
		return c.WatchDesign, nil
	case "history.enabled":
		return c.History.Enabled, nil
	case "history.path":
		return c.History.Path, nil
	case "history.keep":
		return c.History.Keep, nil
	case "ui.theme":
		return c.UI.Theme, nil
	case "ui.compact_mode":
		return c.UI.CompactMode, nil
	default:
		return nil, fmt.Errorf("unknown field: %s", key)
	}
}

// Set sets a configuration value using dot notation. Values arrive as
// strings from the CLI and are converted per field.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "design_file":
		c.DesignFile = value
	case "default_quality":
		c.DefaultQuality = value
	case "watch_design":
		c.WatchDesign = parseBool(value)
	case "history.enabled":
		c.History.Enabled = parseBool(value)
	case "history.path":
		c.History.Path = value
	case "history.keep":
		var keep int
		if _, err := fmt.Sscanf(value, "%d", &keep); err != nil {
			return fmt.Errorf("invalid integer value: %q", value)
		}
		c.History.Keep = keep
	case "ui.theme":
		c.UI.Theme = value
	case "ui.compact_mode":
		c.UI.CompactMode = parseBool(value)
	default:
		return fmt.Errorf("unknown field: %s", key)
	}
	return c.Validate()
}

// Keys returns all configuration keys in dot notation.
func Keys() []string {
	return []string{
		"design_file",
		"default_quality",
		"watch_design",
		"history.enabled",
		"history.path",
		"history.keep",
		"ui.theme",
		"ui.compact_mode",
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes"
}
