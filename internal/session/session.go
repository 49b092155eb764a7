// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/meshbatch/internal/export"
	"github.com/jeranaias/meshbatch/internal/host"
)

// =============================================================================
// NAME FIELDS
// =============================================================================

// NameField is one editable save-name row in the dialog, bound to a body by
// list position.
type NameField struct {
	// Token identifies the body the field belongs to.
	Token string
	// Label is the body's display name shown next to the field.
	Label string
	// Value is the field's current text.
	Value string
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the state of one open export dialog.
type Session struct {
	id     string
	design host.Design

	// customNames maps body token to the user-edited save name. Cleared on
	// session creation; entries for bodies that were later deselected are
	// harmless and kept until the dialog is reopened.
	customNames map[string]string

	// selection holds the selected bodies in selection order.
	selection []host.Body

	// nameFields mirrors selection one-to-one after every rebuild.
	nameFields []NameField

	selectAll  bool
	quality    host.Quality
	outputPath string

	// reacting guards against input-change feedback loops: a change
	// triggered while a reaction is running is dropped, not queued.
	reacting bool
}

// New creates a fresh session over design. The custom-name map starts
// empty and the output path is seeded by the caller (persisted settings or
// the platform default download location).
func New(design host.Design, outputPath string) *Session {
	return &Session{
		id:          uuid.New().String(),
		design:      design,
		customNames: make(map[string]string),
		quality:     host.QualityHigh,
		outputPath:  outputPath,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Design returns the design this session was opened against.
func (s *Session) Design() host.Design { return s.design }

// Selection returns the selected bodies in selection order.
func (s *Session) Selection() []host.Body { return s.selection }

// NameFields returns the current save-name rows.
func (s *Session) NameFields() []NameField { return s.nameFields }

// SelectAll reports whether the select-all toggle shows as checked.
func (s *Session) SelectAll() bool { return s.selectAll }

// AllSelectableSelected reports whether every body that accepts selection is
// currently selected. This drives the select-all toggle direction; the
// checkbox display itself follows SelectAll.
func (s *Session) AllSelectableSelected() bool {
	selected := make(map[string]bool, len(s.selection))
	for _, b := range s.selection {
		selected[b.Token()] = true
	}
	any := false
	for _, b := range s.design.Bodies() {
		if !b.Visible() {
			continue
		}
		any = true
		if !selected[b.Token()] {
			return false
		}
	}
	return any
}

// Quality returns the chosen mesh quality.
func (s *Session) Quality() host.Quality { return s.quality }

// SetQuality records the quality choice.
func (s *Session) SetQuality(q host.Quality) { s.quality = q }

// OutputPath returns the output-path field text.
func (s *Session) OutputPath() string { return s.outputPath }

// SetOutputPath records the output-path field text.
func (s *Session) SetOutputPath(p string) { s.outputPath = p }

// =============================================================================
// REACTION GUARD
// =============================================================================

// React runs fn unless a reaction is already in progress, in which case the
// triggering change is ignored. This mirrors dependent dialog inputs that
// mutate each other: without the guard, a select-all toggle rebuilding the
// name list would re-trigger the reactor forever.
func (s *Session) React(fn func()) {
	if s.reacting {
		return
	}
	s.reacting = true
	defer func() { s.reacting = false }()
	fn()
}

// =============================================================================
// SELECTION TRANSITIONS
// =============================================================================

// SetSelectAll handles the select-all toggle. True selects every body in
// the design, skipping bodies that refuse selection without aborting;
// false clears the selection. Both rebuild the name fields.
func (s *Session) SetSelectAll(on bool) {
	if on {
		s.selection = s.selection[:0]
		for _, b := range s.design.Bodies() {
			if b.Visible() {
				s.selection = append(s.selection, b)
			}
		}
	} else {
		s.selection = nil
	}
	s.syncSelectAll()
	s.rebuildNameFields()
}

// ToggleBody adds body to the selection, or removes it when already
// selected. Hidden bodies refuse selection. Select-all state and name
// fields are resynchronized.
func (s *Session) ToggleBody(body host.Body) error {
	for i, b := range s.selection {
		if b.Token() == body.Token() {
			s.selection = append(s.selection[:i], s.selection[i+1:]...)
			s.syncSelectAll()
			s.rebuildNameFields()
			return nil
		}
	}
	if !body.Visible() {
		return host.ErrNotSelectable
	}
	s.selection = append(s.selection, body)
	s.syncSelectAll()
	s.rebuildNameFields()
	return nil
}

// SetSelection replaces the selection wholesale (selection order preserved,
// unselectable bodies skipped) and resynchronizes dependent state.
func (s *Session) SetSelection(bodies []host.Body) {
	s.selection = s.selection[:0]
	for _, b := range bodies {
		if b.Visible() {
			s.selection = append(s.selection, b)
		}
	}
	s.syncSelectAll()
	s.rebuildNameFields()
}

// SetDesign swaps the design under an open dialog, e.g. after the design
// file changed on disk, and resynchronizes the selection against it.
func (s *Session) SetDesign(d host.Design) {
	s.design = d
	s.Resync()
}

// Resync intersects the selection with the design's current body set,
// matching by token. Used when the design changes under an open dialog.
func (s *Session) Resync() {
	current := make(map[string]host.Body)
	for _, b := range s.design.Bodies() {
		current[b.Token()] = b
	}
	kept := s.selection[:0]
	for _, b := range s.selection {
		if fresh, ok := current[b.Token()]; ok && fresh.Visible() {
			kept = append(kept, fresh)
		}
	}
	s.selection = kept
	s.syncSelectAll()
	s.rebuildNameFields()
}

// syncSelectAll recomputes the select-all checked state: true iff the
// selection covers every body in the design and the design is non-empty.
func (s *Session) syncSelectAll() {
	total := len(s.design.Bodies())
	s.selectAll = total > 0 && len(s.selection) == total
}

// =============================================================================
// NAME FIELD MAINTENANCE
// =============================================================================

// EditName stores the text of the name field at index into the custom-name
// map, keyed by that body's token, overriding the default for subsequent
// rebuilds and export. Out-of-range indices are ignored.
func (s *Session) EditName(index int, text string) {
	if index < 0 || index >= len(s.nameFields) {
		return
	}
	s.nameFields[index].Value = text
	s.customNames[s.nameFields[index].Token] = text
}

// rebuildNameFields discards the field list and recreates one row per
// selected body, in selection order. The default value is the stored
// override for the body's token when present, else the sanitized display
// name.
func (s *Session) rebuildNameFields() {
	s.nameFields = s.nameFields[:0]
	for _, b := range s.selection {
		value, ok := s.customNames[b.Token()]
		if !ok {
			value = export.SanitizeName(b.Name())
		}
		s.nameFields = append(s.nameFields, NameField{
			Token: b.Token(),
			Label: b.Name(),
			Value: value,
		})
	}
}

// =============================================================================
// VALIDATION AND SNAPSHOT
// =============================================================================

// Valid reports whether the dialog may be confirmed: at least one body
// selected and a non-empty trimmed output path. The directory is created
// at execution time, so no filesystem check happens here.
func (s *Session) Valid() bool {
	return len(s.selection) > 0 && strings.TrimSpace(s.outputPath) != ""
}

// Snapshot captures the execution-time inputs: bodies in selection order,
// the current name-field values matched by position (so an unsaved
// keystroke still counts), the quality, and the trimmed output path.
type Snapshot struct {
	Bodies    []host.Body
	Names     []string
	Quality   host.Quality
	OutputDir string
}

// Snapshot returns the inputs the execution phase runs on.
func (s *Session) Snapshot() Snapshot {
	bodies := make([]host.Body, len(s.selection))
	copy(bodies, s.selection)
	names := make([]string, len(s.nameFields))
	for i, f := range s.nameFields {
		names[i] = f.Value
	}
	return Snapshot{
		Bodies:    bodies,
		Names:     names,
		Quality:   s.quality,
		OutputDir: strings.TrimSpace(s.outputPath),
	}
}
