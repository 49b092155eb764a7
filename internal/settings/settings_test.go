// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return &Store{Path: filepath.Join(t.TempDir(), "settings.json")}
}

func TestLoad_MissingFile(t *testing.T) {
	s := newTestStore(t)
	got := s.Load()
	if len(got) != 0 {
		t.Errorf("Load on missing file = %v, want empty map", got)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.Path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	got := s.Load()
	if len(got) != 0 {
		t.Errorf("Load on corrupt file = %v, want empty map", got)
	}
}

func TestSave_MergePreservesOtherKeys(t *testing.T) {
	s := newTestStore(t)

	s.Save(map[string]string{KeyOutputPath: "/exports/a"})
	s.Save(map[string]string{"other": "b"})

	got := s.Load()
	if got[KeyOutputPath] != "/exports/a" {
		t.Errorf("outputPath = %q, want /exports/a", got[KeyOutputPath])
	}
	if got["other"] != "b" {
		t.Errorf("other = %q, want b", got["other"])
	}
}

func TestSave_LatestValueWins(t *testing.T) {
	s := newTestStore(t)

	s.Save(map[string]string{KeyOutputPath: "/exports/a"})
	s.Save(map[string]string{KeyOutputPath: "/exports/b"})

	if got := s.Load()[KeyOutputPath]; got != "/exports/b" {
		t.Errorf("outputPath = %q, want /exports/b", got)
	}
}

func TestSave_UnwritablePathIsSilent(t *testing.T) {
	// Saving into a path whose parent is a regular file must not panic or
	// error: failures are swallowed.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	s := &Store{Path: filepath.Join(blocker, "settings.json")}
	s.Save(map[string]string{KeyOutputPath: "/exports/a"})

	if got := s.Load(); len(got) != 0 {
		t.Errorf("Load after failed save = %v, want empty map", got)
	}
}

func TestGet_Fallback(t *testing.T) {
	s := newTestStore(t)
	if got := s.Get(KeyOutputPath, "/downloads"); got != "/downloads" {
		t.Errorf("Get fallback = %q, want /downloads", got)
	}

	s.Save(map[string]string{KeyOutputPath: "/exports"})
	if got := s.Get(KeyOutputPath, "/downloads"); got != "/exports" {
		t.Errorf("Get = %q, want /exports", got)
	}
}
