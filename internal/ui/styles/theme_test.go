// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	// Distinct list states must render differently.
	if theme.BodyItemSelected.String() == theme.BodyItemHidden.String() {
		t.Error("selected and hidden body styles should differ")
	}
}

func TestSetSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(120, 40)
	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("SetSize: got %dx%d", theme.Width, theme.Height)
	}
}
