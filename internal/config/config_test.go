// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DefaultQuality != "High" {
		t.Errorf("DefaultQuality = %q, want High", cfg.DefaultQuality)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should default to true")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("UI.Theme = %q, want dark", cfg.UI.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults, got error: %v", err)
	}
	if cfg.DefaultQuality != "High" {
		t.Errorf("DefaultQuality = %q, want High", cfg.DefaultQuality)
	}
}

func TestLoadFromPath_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
design_file = "/tmp/bracket.toml"
default_quality = "Medium"

[history]
enabled = false
keep = 50

[ui]
theme = "light"
compact_mode = true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.DesignFile != "/tmp/bracket.toml" {
		t.Errorf("DesignFile = %q", cfg.DesignFile)
	}
	if cfg.DefaultQuality != "Medium" {
		t.Errorf("DefaultQuality = %q, want Medium", cfg.DefaultQuality)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled should be false")
	}
	if cfg.History.Keep != 50 {
		t.Errorf("History.Keep = %d, want 50", cfg.History.Keep)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q, want light", cfg.UI.Theme)
	}
	if !cfg.UI.CompactMode {
		t.Error("UI.CompactMode should be true")
	}
}

func TestLoadFromPath_ZeroKeepMeansUnlimited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[history]\nkeep = 0\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.History.Keep != 0 {
		t.Errorf("History.Keep = %d, want explicit 0 preserved", cfg.History.Keep)
	}
}

func TestLoadFromPath_InvalidQuality(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`default_quality = "Ultra"`), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected validation error for unknown quality")
	}
}

func TestSaveToPath_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DesignFile = "/designs/pan.toml"
	cfg.DefaultQuality = "Low"
	cfg.History.Keep = 10

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# meshbatch configuration file") {
		t.Error("saved file should start with a commented header")
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.DesignFile != cfg.DesignFile {
		t.Errorf("DesignFile = %q, want %q", loaded.DesignFile, cfg.DesignFile)
	}
	if loaded.DefaultQuality != "Low" {
		t.Errorf("DefaultQuality = %q, want Low", loaded.DefaultQuality)
	}
	if loaded.History.Keep != 10 {
		t.Errorf("History.Keep = %d, want 10", loaded.History.Keep)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MESHBATCH_DESIGN", "/env/design.toml")
	t.Setenv("MESHBATCH_QUALITY", "Medium")
	t.Setenv("MESHBATCH_NO_HISTORY", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.DesignFile != "/env/design.toml" {
		t.Errorf("DesignFile = %q", cfg.DesignFile)
	}
	if cfg.DefaultQuality != "Medium" {
		t.Errorf("DefaultQuality = %q, want Medium", cfg.DefaultQuality)
	}
	if cfg.History.Enabled {
		t.Error("MESHBATCH_NO_HISTORY=1 should disable history")
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("ui.theme", "light"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, err := cfg.Get("ui.theme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v != "light" {
		t.Errorf("Get(ui.theme) = %v, want light", v)
	}

	if err := cfg.Set("history.keep", "42"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.History.Keep != 42 {
		t.Errorf("History.Keep = %d, want 42", cfg.History.Keep)
	}

	if err := cfg.Set("history.keep", "lots"); err == nil {
		t.Error("expected error for non-integer keep")
	}
	if err := cfg.Set("no.such.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := cfg.Get("no.such.key"); err == nil {
		t.Error("expected error for unknown key")
	}

	// Set validates: an invalid value is rejected.
	if err := cfg.Set("default_quality", "Ultra"); err == nil {
		t.Error("expected validation error for unknown quality")
	}
}

func TestKeys_AllGettable(t *testing.T) {
	cfg := Default()
	for _, key := range Keys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}
