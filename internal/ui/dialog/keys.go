// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dialog

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keyboard bindings for the export dialog.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Cycle   key.Binding
	Browse  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Pick    key.Binding // accept the browsed directory
}

// DefaultKeyMap returns the default dialog key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "shift+tab"),
			key.WithHelp("up", "previous field"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "tab"),
			key.WithHelp("down", "next field"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle body"),
		),
		All: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("C-a", "select all"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("left", "right"),
			key.WithHelp("left/right", "change quality"),
		),
		Browse: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "browse folder"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "export"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("Esc", "cancel"),
		),
		Pick: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "use this folder"),
		),
	}
}
