// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for meshbatch: atomic file
// writes for configuration persistence and display-width aware string
// truncation for dialog rows.
package util
