// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the meshbatch
// dialog. It detects the terminal's color capability and adjusts
// accordingly.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the dialog.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND CONTAINER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	Container   lipgloss.Style

	// ==========================================================================
	// BODY LIST STYLES
	// ==========================================================================

	BodyItem         lipgloss.Style
	BodyItemSelected lipgloss.Style
	BodyItemHidden   lipgloss.Style
	Checkbox         lipgloss.Style
	CheckboxChecked  lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	FieldLabel       lipgloss.Style
	FieldLabelActive lipgloss.Style
	QualityOption    lipgloss.Style
	QualitySelected  lipgloss.Style
	PathText         lipgloss.Style

	// ==========================================================================
	// PROGRESS AND SUMMARY STYLES
	// ==========================================================================

	ProgressLabel lipgloss.Style
	SummaryBox    lipgloss.Style
	SummaryTitle  lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	ErrorText    lipgloss.Style
	SuccessText  lipgloss.Style
	WarningText  lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	accent := lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FD7FF"}
	muted := lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#808080"}
	errCol := lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}
	okCol := lipgloss.AdaptiveColor{Light: "#008700", Dark: "#5FFF87"}
	warnCol := lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD75F"}

	t.Header = lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true)
	t.Container = lipgloss.NewStyle().
		Padding(1, 2)

	t.BodyItem = lipgloss.NewStyle()
	t.BodyItemSelected = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true)
	t.BodyItemHidden = lipgloss.NewStyle().
		Foreground(muted).
		Strikethrough(true)
	t.Checkbox = lipgloss.NewStyle().
		Foreground(muted)
	t.CheckboxChecked = lipgloss.NewStyle().
		Foreground(okCol)

	t.FieldLabel = lipgloss.NewStyle().
		Foreground(muted)
	t.FieldLabelActive = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true)
	t.QualityOption = lipgloss.NewStyle().
		Padding(0, 1)
	t.QualitySelected = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(accent).
		Bold(true).
		Underline(true)
	t.PathText = lipgloss.NewStyle().
		Foreground(accent)

	t.ProgressLabel = lipgloss.NewStyle().
		Foreground(muted)
	t.SummaryBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2)
	t.SummaryTitle = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(muted).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(muted)
	t.ErrorText = lipgloss.NewStyle().
		Foreground(errCol).
		Bold(true)
	t.SuccessText = lipgloss.NewStyle().
		Foreground(okCol)
	t.WarningText = lipgloss.NewStyle().
		Foreground(warnCol)

	return t
}

// SetSize updates the theme's layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
