// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dialog provides the interactive export dialog.
//
// The dialog walks the user through one export batch: pick bodies from the
// design (with a select-all shortcut), pick a mesh quality, override file
// names per body, choose an output folder, then run the batch with live
// progress and a closing summary.
//
// The dialog is a Bubble Tea model with four phases:
//
//	picking   - the main form: body list, quality, names, output path
//	browsing  - folder picker overlay for the output path
//	exporting - batch running with a progress bar, cancellable
//	summary   - per-batch result report
package dialog
