// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "github.com/mattn/go-runewidth"

// StringWidth returns the display width of a string in terminal columns.
// Double-width characters (CJK) count as 2 columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth truncates a string to a maximum display width, appending
// "..." when the string was cut. Safe for multi-byte and double-width
// characters.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadWidth pads a string with spaces on the right to the given display
// width. Strings already at or beyond the width are returned unchanged.
func PadWidth(s string, width int) string {
	return runewidth.FillRight(s, width)
}
