// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package host

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// GEOMETRY
// =============================================================================

// Vec3 is a point or direction in model space.
type Vec3 [3]float32

// Triangle is one facet of a body's triangulated surface.
type Triangle struct {
	Normal   Vec3
	Vertices [3]Vec3
}

// normal computes the facet normal from the vertex winding when the stored
// normal is zero.
func (t Triangle) normal() Vec3 {
	if t.Normal != (Vec3{}) {
		return t.Normal
	}
	ax := t.Vertices[1][0] - t.Vertices[0][0]
	ay := t.Vertices[1][1] - t.Vertices[0][1]
	az := t.Vertices[1][2] - t.Vertices[0][2]
	bx := t.Vertices[2][0] - t.Vertices[0][0]
	by := t.Vertices[2][1] - t.Vertices[0][1]
	bz := t.Vertices[2][2] - t.Vertices[0][2]
	n := Vec3{ay*bz - az*by, az*bx - ax*bz, ax*by - ay*bx}
	mag := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])))
	if mag == 0 {
		return Vec3{}
	}
	return Vec3{n[0] / mag, n[1] / mag, n[2] / mag}
}

// =============================================================================
// MEMORY BODY / DESIGN
// =============================================================================

// MemoryBody is an in-memory Body carrying its own triangulations.
type MemoryBody struct {
	token   string
	name    string
	visible bool

	// meshes maps refinement level to triangle list. Missing levels fall
	// back to the finest populated one at export time.
	meshes map[Quality][]Triangle
}

// NewMemoryBody creates a visible body with a fresh token and a single
// triangulation used for every quality level.
func NewMemoryBody(name string, tris []Triangle) *MemoryBody {
	return &MemoryBody{
		token:   uuid.New().String(),
		name:    name,
		visible: true,
		meshes:  map[Quality][]Triangle{QualityHigh: tris},
	}
}

// Token implements Body.
func (b *MemoryBody) Token() string { return b.token }

// Name implements Body.
func (b *MemoryBody) Name() string { return b.name }

// Visible implements Body.
func (b *MemoryBody) Visible() bool { return b.visible }

// SetVisible marks the body selectable or not.
func (b *MemoryBody) SetVisible(v bool) { b.visible = v }

// SetMesh stores a triangulation for one refinement level.
func (b *MemoryBody) SetMesh(q Quality, tris []Triangle) {
	if b.meshes == nil {
		b.meshes = make(map[Quality][]Triangle)
	}
	b.meshes[q] = tris
}

// MeshAt returns the triangulation for q, falling back to the finest
// populated level. A body with no mesh at all yields an empty list.
func (b *MemoryBody) MeshAt(q Quality) []Triangle {
	if tris, ok := b.meshes[q]; ok {
		return tris
	}
	// Finest-first fallback.
	levels := make([]Quality, 0, len(b.meshes))
	for level := range b.meshes {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	if len(levels) > 0 {
		return b.meshes[levels[0]]
	}
	return nil
}

// MemoryDesign is an in-memory Design.
type MemoryDesign struct {
	name   string
	bodies []*MemoryBody
}

// NewMemoryDesign creates a design over the given bodies.
func NewMemoryDesign(name string, bodies ...*MemoryBody) *MemoryDesign {
	return &MemoryDesign{name: name, bodies: bodies}
}

// Name implements Design.
func (d *MemoryDesign) Name() string { return d.name }

// Bodies implements Design.
func (d *MemoryDesign) Bodies() []Body {
	out := make([]Body, len(d.bodies))
	for i, b := range d.bodies {
		out[i] = b
	}
	return out
}

// AddBody appends a body to the design.
func (d *MemoryDesign) AddBody(b *MemoryBody) { d.bodies = append(d.bodies, b) }

// RemoveBody deletes the body with the given token, if present.
func (d *MemoryDesign) RemoveBody(token string) {
	for i, b := range d.bodies {
		if b.token == token {
			d.bodies = append(d.bodies[:i], d.bodies[i+1:]...)
			return
		}
	}
}

// =============================================================================
// MEMORY EXPORTER
// =============================================================================

// MemoryExporter writes binary STL files from MemoryBody triangulations.
type MemoryExporter struct{}

// ExportSTL implements MeshExporter. Bodies that are not MemoryBody values
// are rejected. The destination directory must already exist; creating it
// is the orchestrator's responsibility.
func (MemoryExporter) ExportSTL(ctx context.Context, body Body, path string, quality Quality) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mb, ok := body.(*MemoryBody)
	if !ok {
		return fmt.Errorf("body %q is not backed by this host", body.Name())
	}
	return writeBinarySTL(path, mb.Name(), mb.MeshAt(quality))
}

// writeBinarySTL encodes triangles in the binary STL layout: an 80-byte
// header, a uint32 facet count, then 50 bytes per facet (normal, three
// vertices, attribute byte count).
func writeBinarySTL(path, name string, tris []Triangle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	var header [80]byte
	copy(header[:], "meshbatch: "+name)
	if _, err := f.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(tris))); err != nil {
		return fmt.Errorf("write facet count: %w", err)
	}

	for _, tri := range tris {
		record := make([]float32, 0, 12)
		n := tri.normal()
		record = append(record, n[:]...)
		for _, v := range tri.Vertices {
			record = append(record, v[:]...)
		}
		if err := binary.Write(f, binary.LittleEndian, record); err != nil {
			return fmt.Errorf("write facet: %w", err)
		}
		if err := binary.Write(f, binary.LittleEndian, uint16(0)); err != nil {
			return fmt.Errorf("write attribute bytes: %w", err)
		}
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// MEMORY TOOLBAR
// =============================================================================

// MemoryToolbar is an in-memory Toolbar.
type MemoryToolbar struct {
	mu       sync.Mutex
	commands map[string]*CommandDefinition
}

// NewMemoryToolbar creates an empty toolbar.
func NewMemoryToolbar() *MemoryToolbar {
	return &MemoryToolbar{commands: make(map[string]*CommandDefinition)}
}

// Command implements Toolbar.
func (t *MemoryToolbar) Command(id string) *CommandDefinition {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commands[id]
}

// AddCommand implements Toolbar.
func (t *MemoryToolbar) AddCommand(def *CommandDefinition) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("command definition requires an id")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.commands[def.ID]; exists {
		return fmt.Errorf("command %q already registered", def.ID)
	}
	t.commands[def.ID] = def
	return nil
}

// RemoveCommand implements Toolbar.
func (t *MemoryToolbar) RemoveCommand(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.commands, id)
}
