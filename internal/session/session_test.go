// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/meshbatch/internal/host"
)

func newTestDesign() (*host.MemoryDesign, []*host.MemoryBody) {
	a := host.NewMemoryBody("Part", nil)
	b := host.NewMemoryBody("Part", nil)
	c := host.NewMemoryBody("Cylinder1", nil)
	return host.NewMemoryDesign("Test", a, b, c), []*host.MemoryBody{a, b, c}
}

func TestNew_FreshSession(t *testing.T) {
	design, _ := newTestDesign()
	s := New(design, "/downloads")

	assert.NotEmpty(t, s.ID())
	assert.Empty(t, s.Selection())
	assert.Empty(t, s.NameFields())
	assert.False(t, s.SelectAll())
	assert.Equal(t, host.QualityHigh, s.Quality())
	assert.Equal(t, "/downloads", s.OutputPath())
}

func TestSetSelectAll(t *testing.T) {
	design, bodies := newTestDesign()
	s := New(design, "/out")

	s.SetSelectAll(true)
	require.Len(t, s.Selection(), 3)
	assert.True(t, s.SelectAll())
	require.Len(t, s.NameFields(), 3)
	assert.Equal(t, "Part", s.NameFields()[0].Value)
	assert.Equal(t, bodies[2].Token(), s.NameFields()[2].Token)

	s.SetSelectAll(false)
	assert.Empty(t, s.Selection())
	assert.Empty(t, s.NameFields())
	assert.False(t, s.SelectAll())
}

func TestSetSelectAll_SkipsHiddenBodies(t *testing.T) {
	design, bodies := newTestDesign()
	bodies[1].SetVisible(false)
	s := New(design, "/out")

	s.SetSelectAll(true)
	// The hidden body is skipped without aborting.
	require.Len(t, s.Selection(), 2)
	// Select-all cannot show checked: the design still counts 3 bodies.
	assert.False(t, s.SelectAll())
	// But everything selectable is now selected, so the next toggle clears.
	assert.True(t, s.AllSelectableSelected())
}

func TestAllSelectableSelected(t *testing.T) {
	design, bodies := newTestDesign()
	s := New(design, "/out")

	assert.False(t, s.AllSelectableSelected())
	require.NoError(t, s.ToggleBody(bodies[0]))
	assert.False(t, s.AllSelectableSelected())
	s.SetSelectAll(true)
	assert.True(t, s.AllSelectableSelected())

	// An empty design has nothing selectable.
	empty := New(host.NewMemoryDesign("Empty"), "/out")
	assert.False(t, empty.AllSelectableSelected())
}

func TestToggleBody(t *testing.T) {
	design, bodies := newTestDesign()
	s := New(design, "/out")

	require.NoError(t, s.ToggleBody(bodies[0]))
	require.NoError(t, s.ToggleBody(bodies[2]))
	assert.Len(t, s.Selection(), 2)
	assert.False(t, s.SelectAll())

	// Selecting the last body flips select-all on: same state as clicking
	// the select-all toggle.
	require.NoError(t, s.ToggleBody(bodies[1]))
	assert.True(t, s.SelectAll())

	manual := s.SelectAll()
	s2 := New(design, "/out")
	s2.SetSelectAll(true)
	assert.Equal(t, s2.SelectAll(), manual)

	// Toggling a selected body removes it.
	require.NoError(t, s.ToggleBody(bodies[1]))
	assert.Len(t, s.Selection(), 2)
	assert.False(t, s.SelectAll())
}

func TestToggleBody_HiddenRefusesSelection(t *testing.T) {
	design, bodies := newTestDesign()
	bodies[0].SetVisible(false)
	s := New(design, "/out")

	err := s.ToggleBody(bodies[0])
	assert.ErrorIs(t, err, host.ErrNotSelectable)
	assert.Empty(t, s.Selection())
}

func TestEditName_SurvivesRebuild(t *testing.T) {
	design, bodies := newTestDesign()
	s := New(design, "/out")

	require.NoError(t, s.ToggleBody(bodies[0]))
	s.EditName(0, "Lid v2")

	// Deselecting and reselecting the body rebuilds the field list; the
	// override keyed by token survives until the dialog is reopened.
	require.NoError(t, s.ToggleBody(bodies[0]))
	assert.Empty(t, s.NameFields())
	require.NoError(t, s.ToggleBody(bodies[0]))
	require.Len(t, s.NameFields(), 1)
	assert.Equal(t, "Lid v2", s.NameFields()[0].Value)
}

func TestEditName_OutOfRangeIgnored(t *testing.T) {
	design, _ := newTestDesign()
	s := New(design, "/out")
	s.EditName(0, "x")
	s.EditName(-1, "x")
	assert.Empty(t, s.NameFields())
}

func TestNameFieldDefaults_Sanitized(t *testing.T) {
	weird := host.NewMemoryBody(`Oil:Pan/Rev?`, nil)
	empty := host.NewMemoryBody(`\/:*?"<>|`, nil)
	design := host.NewMemoryDesign("Test", weird, empty)
	s := New(design, "/out")

	s.SetSelectAll(true)
	require.Len(t, s.NameFields(), 2)
	assert.Equal(t, "OilPanRev", s.NameFields()[0].Value)
	assert.Equal(t, "body", s.NameFields()[1].Value)
	// Labels keep the raw display name.
	assert.Equal(t, `Oil:Pan/Rev?`, s.NameFields()[0].Label)
}

func TestReact_DropsNestedReactions(t *testing.T) {
	design, _ := newTestDesign()
	s := New(design, "/out")

	outer, inner := 0, 0
	s.React(func() {
		outer++
		s.React(func() { inner++ })
	})
	assert.Equal(t, 1, outer)
	assert.Equal(t, 0, inner, "nested reaction must be dropped, not queued")

	// The guard resets after the reaction finishes.
	s.React(func() { outer++ })
	assert.Equal(t, 2, outer)
}

func TestValid(t *testing.T) {
	design, bodies := newTestDesign()
	s := New(design, "")

	assert.False(t, s.Valid(), "no selection, no path")
	require.NoError(t, s.ToggleBody(bodies[0]))
	assert.False(t, s.Valid(), "no path")
	s.SetOutputPath("   ")
	assert.False(t, s.Valid(), "blank path")
	s.SetOutputPath("/exports")
	assert.True(t, s.Valid())
	s.SetSelectAll(false)
	assert.False(t, s.Valid(), "selection cleared")
}

func TestSnapshot(t *testing.T) {
	design, bodies := newTestDesign()
	s := New(design, "  /exports  ")
	s.SetQuality(host.QualityLow)

	require.NoError(t, s.ToggleBody(bodies[1]))
	require.NoError(t, s.ToggleBody(bodies[2]))
	s.EditName(0, "Base")

	snap := s.Snapshot()
	require.Len(t, snap.Bodies, 2)
	assert.Equal(t, bodies[1].Token(), snap.Bodies[0].Token())
	assert.Equal(t, []string{"Base", "Cylinder1"}, snap.Names)
	assert.Equal(t, host.QualityLow, snap.Quality)
	assert.Equal(t, "/exports", snap.OutputDir)
}

func TestResync_DropsVanishedBodies(t *testing.T) {
	a := host.NewMemoryBody("A", nil)
	b := host.NewMemoryBody("B", nil)
	design := host.NewMemoryDesign("Test", a, b)
	s := New(design, "/out")
	s.SetSelectAll(true)
	s.EditName(0, "KeepName")
	require.Len(t, s.Selection(), 2)

	// The design loses a body under the open dialog.
	design.RemoveBody(b.Token())
	s.Resync()

	require.Len(t, s.Selection(), 1)
	assert.Equal(t, "A", s.Selection()[0].Name())
	assert.True(t, s.SelectAll(), "one of one selected")
	// The name override keyed by token survives the resync.
	require.Len(t, s.NameFields(), 1)
	assert.Equal(t, "KeepName", s.NameFields()[0].Value)
}

func TestResync_DropsHiddenBodies(t *testing.T) {
	a := host.NewMemoryBody("A", nil)
	b := host.NewMemoryBody("B", nil)
	design := host.NewMemoryDesign("Test", a, b)
	s := New(design, "/out")
	s.SetSelectAll(true)

	b.SetVisible(false)
	s.Resync()

	require.Len(t, s.Selection(), 1)
	assert.Equal(t, "A", s.Selection()[0].Name())
}
