// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the state of one open export dialog: the body
// selection, the per-body save-name overrides, the quality and output-path
// choices, and the reaction guard that keeps dependent inputs from feeding
// back into each other. A Session lives from dialog open to confirmation
// or dismissal; reopening the dialog creates a fresh one.
package session
