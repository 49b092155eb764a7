// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package host

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// DESIGN FIXTURE FILE
// =============================================================================

// designFile is the TOML layout of a design fixture. Triangles are flat
// rows of nine floats (three vertices); facet normals are derived from the
// winding. Coarser refinement levels are optional and fall back to the
// finest one.
type designFile struct {
	Name   string      `toml:"name"`
	Bodies []bodyEntry `toml:"body"`
}

type bodyEntry struct {
	Name      string       `toml:"name"`
	Visible   *bool        `toml:"visible"`
	Triangles [][9]float32 `toml:"triangles"`
	Medium    [][9]float32 `toml:"triangles_medium"`
	Low       [][9]float32 `toml:"triangles_low"`
}

// LoadDesignFile parses a TOML design fixture into a MemoryDesign.
func LoadDesignFile(path string) (*MemoryDesign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read design file: %w", err)
	}
	var df designFile
	if err := toml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse design file %s: %w", path, err)
	}

	design := NewMemoryDesign(df.Name)
	for _, entry := range df.Bodies {
		if entry.Name == "" {
			return nil, fmt.Errorf("design file %s: body without a name", path)
		}
		body := NewMemoryBody(entry.Name, rowsToTriangles(entry.Triangles))
		if entry.Visible != nil {
			body.SetVisible(*entry.Visible)
		}
		if len(entry.Medium) > 0 {
			body.SetMesh(QualityMedium, rowsToTriangles(entry.Medium))
		}
		if len(entry.Low) > 0 {
			body.SetMesh(QualityLow, rowsToTriangles(entry.Low))
		}
		design.AddBody(body)
	}
	return design, nil
}

func rowsToTriangles(rows [][9]float32) []Triangle {
	tris := make([]Triangle, 0, len(rows))
	for _, row := range rows {
		tris = append(tris, Triangle{
			Vertices: [3]Vec3{
				{row[0], row[1], row[2]},
				{row[3], row[4], row[5]},
				{row[6], row[7], row[8]},
			},
		})
	}
	return tris
}
