// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package addin

import (
	"testing"

	"github.com/jeranaias/meshbatch/internal/host"
)

func TestStart_RegistersCommand(t *testing.T) {
	tb := host.NewMemoryToolbar()
	c := New(tb)

	activated := false
	if err := c.Start(func() error { activated = true; return nil }); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	def := tb.Command(CommandID)
	if def == nil {
		t.Fatal("command not registered")
	}
	if def.Name != CommandName {
		t.Errorf("Name = %q, want %q", def.Name, CommandName)
	}
	if err := def.OnActivate(); err != nil {
		t.Fatalf("OnActivate() error = %v", err)
	}
	if !activated {
		t.Error("activation handler did not run")
	}
}

func TestStart_RemovesStaleRegistration(t *testing.T) {
	tb := host.NewMemoryToolbar()

	// Simulate a crashed prior run that left its command behind.
	stale := &host.CommandDefinition{ID: CommandID, Name: "old"}
	if err := tb.AddCommand(stale); err != nil {
		t.Fatal(err)
	}

	c := New(tb)
	if err := c.Start(func() error { return nil }); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	def := tb.Command(CommandID)
	if def == nil || def.Name != CommandName {
		t.Errorf("stale registration not replaced: %+v", def)
	}
}

func TestStart_Twice(t *testing.T) {
	c := New(host.NewMemoryToolbar())
	if err := c.Start(func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(func() error { return nil }); err == nil {
		t.Error("second Start should fail")
	}
}

func TestStop_Unregisters(t *testing.T) {
	tb := host.NewMemoryToolbar()
	c := New(tb)

	if err := c.Start(func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if tb.Command(CommandID) != nil {
		t.Error("command still registered after Stop")
	}
	if c.Started() {
		t.Error("Started() should be false after Stop")
	}
}

func TestStop_WithoutStart(t *testing.T) {
	c := New(host.NewMemoryToolbar())
	if err := c.Stop(); err != ErrNotStarted {
		t.Errorf("Stop() error = %v, want ErrNotStarted", err)
	}
}
