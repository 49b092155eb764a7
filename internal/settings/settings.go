// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings persists small bits of dialog state between sessions.
//
// The store is a flat JSON object of string keys to string values. Loading
// is best-effort: a missing or corrupt file yields an empty map. Saving is
// a read-merge-write cycle so unrelated keys written by other versions of
// the tool survive; write failures are swallowed. The file is written in
// place without atomic-rename protection - last writer wins.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// KeyOutputPath is the last-used export destination directory.
const KeyOutputPath = "outputPath"

// Store reads and writes the settings file at Path.
type Store struct {
	Path string
}

// DefaultPath returns the settings file location, ~/.meshbatch/settings.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".meshbatch", "settings.json"), nil
}

// NewStore returns a store bound to the default settings path. When the
// home directory cannot be determined the store reads and writes nothing.
func NewStore() *Store {
	path, err := DefaultPath()
	if err != nil {
		return &Store{}
	}
	return &Store{Path: path}
}

// Load reads the settings file. Any read or parse error yields an empty map.
func (s *Store) Load() map[string]string {
	out := make(map[string]string)
	if s.Path == "" {
		return out
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]string{}
	}
	return out
}

// Get returns the stored value for key, or fallback when absent or empty.
func (s *Store) Get(key, fallback string) string {
	if v := s.Load()[key]; v != "" {
		return v
	}
	return fallback
}

// Save merges kv into the persisted settings. Existing keys not present in
// kv are preserved. Failures are silently ignored.
func (s *Store) Save(kv map[string]string) {
	if s.Path == "" {
		return
	}
	merged := s.Load()
	for k, v := range kv {
		merged[k] = v
	}
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return
	}
	_ = os.WriteFile(s.Path, data, 0600)
}

// DefaultDownloadDir returns the platform default download location,
// falling back to the current directory when home cannot be determined.
func DefaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}
