// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package host

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// QUALITY
// =============================================================================

// Quality is the mesh refinement level used when exporting a body.
type Quality int

const (
	// QualityHigh is the densest triangulation and the default.
	QualityHigh Quality = iota
	// QualityMedium trades triangle count for file size.
	QualityMedium
	// QualityLow is the coarsest triangulation.
	QualityLow
)

// Qualities lists all levels in dialog order.
var Qualities = []Quality{QualityHigh, QualityMedium, QualityLow}

// String returns the display name of the quality level.
func (q Quality) String() string {
	switch q {
	case QualityHigh:
		return "High"
	case QualityMedium:
		return "Medium"
	case QualityLow:
		return "Low"
	default:
		return fmt.Sprintf("Quality(%d)", int(q))
	}
}

// ParseQuality converts a display name to a Quality. Unknown names map to
// QualityHigh, matching the dialog default.
func ParseQuality(s string) Quality {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "medium":
		return QualityMedium
	case "low":
		return QualityLow
	default:
		return QualityHigh
	}
}

// =============================================================================
// DOCUMENT SURFACE
// =============================================================================

// ErrNotSelectable is returned when a body refuses selection, e.g. because
// it is hidden or suppressed in the host document.
var ErrNotSelectable = errors.New("body is not selectable")

// Body is an opaque handle to a host-managed solid body.
type Body interface {
	// Token is a stable identity for the body within a document.
	Token() string
	// Name is the body's display name as shown in the host browser tree.
	Name() string
	// Visible reports whether the body can be selected for export.
	Visible() bool
}

// Design is a read-only view of the active document.
type Design interface {
	// Name is the document display name.
	Name() string
	// Bodies returns every solid body from every component, flattened,
	// in a stable order.
	Bodies() []Body
}

// MeshExporter converts a body's geometry to a mesh file on disk.
type MeshExporter interface {
	// ExportSTL synchronously writes body as an STL file at path using the
	// given refinement level. It may fail per call; failures are reported,
	// never retried.
	ExportSTL(ctx context.Context, body Body, path string, quality Quality) error
}

// =============================================================================
// COMMAND REGISTRATION SURFACE
// =============================================================================

// CommandDefinition describes a command registered on the host toolbar.
type CommandDefinition struct {
	ID          string
	Name        string
	Description string
	// OnActivate fires when the user invokes the command.
	OnActivate func() error
}

// Toolbar is the host's add-ins panel: a flat registry of command
// definitions keyed by identifier.
type Toolbar interface {
	// Command returns the registered definition for id, or nil.
	Command(id string) *CommandDefinition
	// AddCommand registers def, replacing nothing: callers remove stale
	// registrations first.
	AddCommand(def *CommandDefinition) error
	// RemoveCommand unregisters id. Removing an unknown id is not an error.
	RemoveCommand(id string)
}
