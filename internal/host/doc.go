// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package host defines the CAD host surface meshbatch is built against.
//
// The tool never owns geometry: it enumerates solid bodies from a Design,
// hands each one to a MeshExporter together with a destination path and a
// Quality level, and registers its command with a Toolbar. Everything else
// (document model, triangulation, STL encoding) belongs to the host behind
// these interfaces.
//
// # Key Types
//
//   - Body, Design: read-only view of the open document
//   - Quality: mesh refinement level (High, Medium, Low)
//   - MeshExporter: body -> STL file at a quality level
//   - Toolbar, CommandDefinition: command registration surface
//   - MemoryDesign, MemoryExporter: in-memory host used by the demo
//     fixture and the tests
package host
