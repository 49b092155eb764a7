// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dialog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/meshbatch/internal/host"
	"github.com/jeranaias/meshbatch/internal/util"
)

const maxLabelWidth = 40

// =============================================================================
// PICKING VIEW
// =============================================================================

func (m Model) viewPicking() string {
	var b strings.Builder

	b.WriteString(m.theme.HeaderTitle.Render("Multi Mesh Export"))
	b.WriteString("  ")
	b.WriteString(m.theme.ShortcutDesc.Render(m.sess.Design().Name()))
	b.WriteString("\n\n")

	// Select-all row
	b.WriteString(m.renderCheckRow(m.cursor == m.rowSelectAll(), m.sess.SelectAll(), "Select all bodies", false))
	b.WriteString("\n")

	// Body rows
	selected := make(map[string]bool)
	for _, body := range m.sess.Selection() {
		selected[body.Token()] = true
	}
	for i, body := range m.bodies {
		label := util.TruncateWidth(body.Name(), maxLabelWidth)
		b.WriteString(m.renderCheckRow(m.cursor == m.rowBody(i), selected[body.Token()], label, !body.Visible()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Quality row
	b.WriteString(m.renderQualityRow())
	b.WriteString("\n")

	// Name fields
	if len(m.nameInputs) > 0 {
		b.WriteString("\n")
		b.WriteString(m.theme.FieldLabel.Render("File names:"))
		b.WriteString("\n")
		fields := m.sess.NameFields()
		for i := range m.nameInputs {
			label := ""
			if i < len(fields) {
				label = util.TruncateWidth(fields[i].Label, maxLabelWidth)
			}
			style := m.theme.FieldLabel
			if m.cursor == m.rowName(i) {
				style = m.theme.FieldLabelActive
			}
			b.WriteString(fmt.Sprintf("  %s %s%s\n",
				style.Render(util.PadWidth(label, 20)),
				m.nameInputs[i].View(),
				m.theme.ShortcutDesc.Render(".stl"),
			))
		}
	}

	// Path row
	b.WriteString("\n")
	pathLabel := m.theme.FieldLabel
	if m.cursor == m.rowPath() {
		pathLabel = m.theme.FieldLabelActive
	}
	b.WriteString(fmt.Sprintf("%s %s\n", pathLabel.Render("Save to:"), m.pathInput.View()))

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.statusStyle().Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderShortcuts([][2]string{
		{"space", "toggle"},
		{"C-a", "select all"},
		{"left/right", "quality"},
		{"C-b", "browse"},
		{"Enter", "export"},
		{"Esc", "quit"},
	}))

	return m.theme.Container.Render(b.String())
}

// statusStyle maps the status tone to a theme style.
func (m Model) statusStyle() lipgloss.Style {
	switch m.statusTone {
	case toneError:
		return m.theme.ErrorText
	case toneOK:
		return m.theme.SuccessText
	default:
		return m.theme.WarningText
	}
}

func (m Model) renderCheckRow(focused, checked bool, label string, hidden bool) string {
	box := "[ ]"
	boxStyle := m.theme.Checkbox
	if checked {
		box = "[x]"
		boxStyle = m.theme.CheckboxChecked
	}

	cursor := "  "
	labelStyle := m.theme.BodyItem
	if focused {
		cursor = "> "
		labelStyle = m.theme.BodyItemSelected
	}
	if hidden {
		labelStyle = m.theme.BodyItemHidden
		label += " (hidden)"
	}

	return cursor + boxStyle.Render(box) + " " + labelStyle.Render(label)
}

func (m Model) renderQualityRow() string {
	cursor := "  "
	labelStyle := m.theme.FieldLabel
	if m.cursor == m.rowQuality() {
		cursor = "> "
		labelStyle = m.theme.FieldLabelActive
	}

	var opts []string
	for _, q := range host.Qualities {
		if q == m.sess.Quality() {
			opts = append(opts, m.theme.QualitySelected.Render(q.String()))
		} else {
			opts = append(opts, m.theme.QualityOption.Render(q.String()))
		}
	}
	return cursor + labelStyle.Render("Quality:") + " " + strings.Join(opts, " ")
}

// =============================================================================
// BROWSING VIEW
// =============================================================================

func (m Model) viewBrowsing() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("Choose output folder"))
	b.WriteString("\n")
	b.WriteString(m.theme.PathText.Render(m.picker.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	b.WriteString(m.renderShortcuts([][2]string{
		{".", "use this folder"},
		{"Enter", "open"},
		{"Esc", "back"},
	}))
	return m.theme.Container.Render(b.String())
}

// =============================================================================
// EXPORTING VIEW
// =============================================================================

func (m Model) viewExporting() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("Exporting..."))
	b.WriteString("\n\n")

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	b.WriteString(m.prog.ViewAs(percent))
	b.WriteString("\n\n")
	label := fmt.Sprintf("%d of %d bodies", m.done, m.total)
	if m.done < len(m.jobNames) {
		label += "  " + util.TruncateWidth(m.jobNames[m.done], maxLabelWidth)
	}
	b.WriteString(m.theme.ProgressLabel.Render(label))
	b.WriteString("\n\n")
	b.WriteString(m.renderShortcuts([][2]string{{"Esc", "cancel"}}))
	return m.theme.Container.Render(b.String())
}

// =============================================================================
// SUMMARY VIEW
// =============================================================================

func (m Model) viewSummary() string {
	title := "Export complete"
	if m.summary.Cancelled {
		title = "Export stopped"
	}
	var b strings.Builder
	b.WriteString(m.theme.SummaryTitle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.summary.Format())
	content := m.theme.SummaryBox.Render(b.String())

	return m.theme.Container.Render(content + "\n" + m.renderShortcuts([][2]string{
		{"n", "new batch"},
		{"Enter", "close"},
	}))
}

// =============================================================================
// SHORTCUT BAR
// =============================================================================

func (m Model) renderShortcuts(pairs [][2]string) string {
	var parts []string
	for _, p := range pairs {
		parts = append(parts, m.theme.ShortcutKey.Render(p[0])+" "+m.theme.ShortcutDesc.Render(p[1]))
	}
	return m.theme.StatusBar.Render(strings.Join(parts, "  "))
}
