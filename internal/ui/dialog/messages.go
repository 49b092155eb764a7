// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dialog

import (
	"github.com/jeranaias/meshbatch/internal/export"
	"github.com/jeranaias/meshbatch/internal/host"
)

// exportProgressMsg reports batch progress: done of total jobs finished.
type exportProgressMsg struct {
	done  int
	total int
}

// exportDoneMsg carries the batch result.
type exportDoneMsg struct {
	summary export.Summary
	err     error
}

// designChangedMsg fires when the design file changes on disk.
type designChangedMsg struct{}

// designReloadedMsg carries the freshly loaded design, or the load error.
type designReloadedMsg struct {
	design host.Design
	err    error
}
