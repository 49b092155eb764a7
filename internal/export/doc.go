// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export turns a body selection into STL files on disk.
//
// Job construction sanitizes the user-chosen save names, numbers name
// collisions so every destination in a batch is distinct, and pins each
// job to an absolute path. The runner then deletes any file already at a
// destination (overwrite-first) and exports jobs in order, accumulating
// per-job failures instead of aborting, polling for cancellation between
// jobs, and reporting progress after each one.
//
// # Key Types
//
//   - Job: one (body, destination path) pair
//   - Runner: executes a batch against a host.MeshExporter
//   - Summary: consolidated result shown to the user
package export
