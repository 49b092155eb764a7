// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dialog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/meshbatch/internal/export"
	"github.com/jeranaias/meshbatch/internal/host"
	"github.com/jeranaias/meshbatch/internal/session"
	"github.com/jeranaias/meshbatch/internal/settings"
	"github.com/jeranaias/meshbatch/internal/ui/styles"
)

// =============================================================================
// PHASES
// =============================================================================

// Phase is the dialog's current screen.
type Phase int

const (
	PhasePicking Phase = iota
	PhaseBrowsing
	PhaseExporting
	PhaseSummary
)

// statusTone picks the style the status line renders with.
type statusTone int

const (
	toneWarn statusTone = iota
	toneError
	toneOK
)

// =============================================================================
// DIALOG MODEL
// =============================================================================

// Options configures a new dialog.
type Options struct {
	Design   host.Design
	Exporter host.MeshExporter
	Settings *settings.Store
	Theme    *styles.Theme

	// Quality is the initial mesh quality.
	Quality host.Quality

	// Compact collapses the per-body name list; exports use the default
	// sanitized names.
	Compact bool

	// Watcher, when set, reloads the design into the open dialog whenever
	// the design file changes. Reload performs the actual load.
	Watcher *host.DesignWatcher
	Reload  func() (host.Design, error)

	// Record, when set, is called with the batch result after every run.
	Record func(export.Summary)
}

// Model is the Bubble Tea model for the export dialog.
type Model struct {
	phase Phase
	theme *styles.Theme
	keys  KeyMap

	sess     *session.Session
	exporter host.MeshExporter
	store    *settings.Store
	watcher  *host.DesignWatcher
	reload   func() (host.Design, error)
	record   func(export.Summary)

	// Picking phase
	cursor     int
	compact    bool
	bodies     []host.Body
	nameInputs []textinput.Model
	pathInput  textinput.Model
	status     string
	statusTone statusTone

	// Browsing phase
	picker filepicker.Model

	// Exporting phase
	prog       progress.Model
	jobNames   []string
	done       int
	total      int
	cancelRun  context.CancelFunc
	progressCh chan tea.Msg

	// Summary phase
	summary export.Summary

	width  int
	height int
}

// New creates the export dialog over a design.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	outputPath := opts.Settings.Get(settings.KeyOutputPath, settings.DefaultDownloadDir())

	sess := session.New(opts.Design, outputPath)
	sess.SetQuality(opts.Quality)

	pi := textinput.New()
	pi.Prompt = ""
	pi.Placeholder = "output folder"
	pi.CharLimit = 512
	pi.SetValue(outputPath)

	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowHidden = false
	if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
		fp.CurrentDirectory = outputPath
	} else if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	m := Model{
		phase:     PhasePicking,
		theme:     theme,
		keys:      DefaultKeyMap(),
		sess:      sess,
		exporter:  opts.Exporter,
		store:     opts.Settings,
		watcher:   opts.Watcher,
		reload:    opts.Reload,
		record:    opts.Record,
		compact:   opts.Compact,
		bodies:    opts.Design.Bodies(),
		pathInput: pi,
		picker:    fp,
		prog:      progress.New(progress.WithDefaultGradient()),
	}
	m.syncNameInputs()
	m.setFocus()
	return m
}

// Session exposes the dialog's session state, mainly for tests.
func (m *Model) Session() *session.Session {
	return m.sess
}

// CurrentPhase returns the dialog's current phase.
func (m *Model) CurrentPhase() Phase {
	return m.phase
}

// Summary returns the result of the last completed batch.
func (m *Model) Summary() export.Summary {
	return m.summary
}

// =============================================================================
// ROW LAYOUT
// =============================================================================
//
// The picking form is one linear focus list:
//
//	row 0                    select-all checkbox
//	rows 1..len(bodies)      one row per design body
//	next row                 quality selector
//	next len(names) rows     one name field per selected body
//	last row                 output path field

func (m *Model) rowSelectAll() int { return 0 }
func (m *Model) rowBody(i int) int { return 1 + i }
func (m *Model) rowQuality() int   { return 1 + len(m.bodies) }
func (m *Model) rowName(i int) int { return m.rowQuality() + 1 + i }
func (m *Model) rowPath() int      { return m.rowQuality() + 1 + len(m.nameInputs) }
func (m *Model) rowCount() int     { return m.rowPath() + 1 }

func (m *Model) bodyAt(row int) (host.Body, bool) {
	i := row - 1
	if i < 0 || i >= len(m.bodies) {
		return nil, false
	}
	return m.bodies[i], true
}

func (m *Model) nameIndexAt(row int) (int, bool) {
	i := row - m.rowQuality() - 1
	if i < 0 || i >= len(m.nameInputs) {
		return 0, false
	}
	return i, true
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the dialog.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.picker.Init()}
	if m.watcher != nil {
		cmds = append(cmds, waitForDesignChange(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.prog.Width = msg.Width - 8
		if m.prog.Width > 60 {
			m.prog.Width = 60
		}
		m.picker.Height = msg.Height - 6
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case designChangedMsg:
		return m, tea.Batch(reloadDesign(m.reload), waitForDesignChange(m.watcher))

	case designReloadedMsg:
		if msg.err != nil {
			m.status = "design reload failed: " + msg.err.Error()
			m.statusTone = toneError
			return m, nil
		}
		m.sess.React(func() {
			m.sess.SetDesign(msg.design)
		})
		m.bodies = msg.design.Bodies()
		m.syncNameInputs()
		m.clampCursor()
		m.setFocus()
		m.status = "design reloaded"
		m.statusTone = toneOK
		return m, nil

	case exportProgressMsg:
		m.done = msg.done
		m.total = msg.total
		return m, waitForExport(m.progressCh)

	case exportDoneMsg:
		return m.handleExportDone(msg)
	}

	return m.updateFocused(msg)
}

// View renders the current phase.
func (m Model) View() string {
	switch m.phase {
	case PhaseBrowsing:
		return m.viewBrowsing()
	case PhaseExporting:
		return m.viewExporting()
	case PhaseSummary:
		return m.viewSummary()
	default:
		return m.viewPicking()
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case PhaseBrowsing:
		return m.handleBrowsingKey(msg)
	case PhaseExporting:
		return m.handleExportingKey(msg)
	case PhaseSummary:
		return m.handleSummaryKey(msg)
	default:
		return m.handlePickingKey(msg)
	}
}

func (m Model) handlePickingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	m.statusTone = toneWarn

	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
		m.setFocus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
		m.setFocus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.All):
		m.sess.React(func() {
			m.sess.SetSelectAll(!m.sess.AllSelectableSelected())
		})
		m.syncNameInputs()
		m.clampCursor()
		m.setFocus()
		return m, nil

	case key.Matches(msg, m.keys.Browse):
		// Reseed the picker at the path field's current value when it is an
		// existing directory.
		if info, err := os.Stat(strings.TrimSpace(m.pathInput.Value())); err == nil && info.IsDir() {
			m.picker.CurrentDirectory = strings.TrimSpace(m.pathInput.Value())
		}
		m.phase = PhaseBrowsing
		return m, m.picker.Init()

	case key.Matches(msg, m.keys.Confirm):
		// Enter inside a text field still confirms: names and path are
		// already synced keystroke by keystroke.
		if !m.sess.Valid() {
			m.status = "select at least one body and an output folder"
			return m, nil
		}
		return m.startExport()
	}

	// Toggle only acts on checkbox rows; elsewhere space is just a space.
	if key.Matches(msg, m.keys.Toggle) {
		if m.cursor == m.rowSelectAll() {
			m.sess.React(func() {
				m.sess.SetSelectAll(!m.sess.AllSelectableSelected())
			})
			m.syncNameInputs()
			m.clampCursor()
			m.setFocus()
			return m, nil
		}
		if body, ok := m.bodyAt(m.cursor); ok {
			var err error
			m.sess.React(func() {
				err = m.sess.ToggleBody(body)
			})
			if err != nil {
				m.status = fmt.Sprintf("%s: %v", body.Name(), err)
			}
			m.syncNameInputs()
			m.clampCursor()
			m.setFocus()
			return m, nil
		}
	}

	if key.Matches(msg, m.keys.Cycle) && m.cursor == m.rowQuality() {
		m.cycleQuality(msg.String() == "right")
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) handleBrowsingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.phase = PhasePicking
		return m, nil

	case key.Matches(msg, m.keys.Pick):
		m.choosePath(m.picker.CurrentDirectory)
		m.phase = PhasePicking
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.choosePath(path)
		m.phase = PhasePicking
		return m, nil
	}
	return m, cmd
}

func (m Model) handleExportingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) && m.cancelRun != nil {
		// The runner polls the context between jobs; the batch finishes
		// with Cancelled set once the current job completes.
		m.cancelRun()
	}
	return m, nil
}

func (m Model) handleSummaryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "q", "ctrl+c":
		return m, tea.Quit
	case "n":
		// Start another batch with the same selection.
		m.phase = PhasePicking
		m.status = ""
		return m, textinput.Blink
	}
	return m, nil
}

// =============================================================================
// FOCUS AND FIELD SYNC
// =============================================================================

func (m *Model) clampCursor() {
	if m.cursor < 0 {
		m.cursor = m.rowCount() - 1
	}
	if m.cursor >= m.rowCount() {
		m.cursor = 0
	}
}

// setFocus focuses the text input under the cursor, if any, and blurs the
// rest.
func (m *Model) setFocus() {
	for i := range m.nameInputs {
		if m.cursor == m.rowName(i) {
			m.nameInputs[i].Focus()
		} else {
			m.nameInputs[i].Blur()
		}
	}
	if m.cursor == m.rowPath() {
		m.pathInput.Focus()
	} else {
		m.pathInput.Blur()
	}
}

// syncNameInputs rebuilds the per-body name inputs from the session's name
// fields after any selection change.
func (m *Model) syncNameInputs() {
	if m.compact {
		m.nameInputs = nil
		return
	}
	fields := m.sess.NameFields()
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 128
		ti.SetValue(f.Value)
		inputs[i] = ti
	}
	m.nameInputs = inputs
}

// updateFocused forwards a message to the focused text input and mirrors
// the edit into the session.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if i, ok := m.nameIndexAt(m.cursor); ok {
		m.nameInputs[i], cmd = m.nameInputs[i].Update(msg)
		m.sess.EditName(i, m.nameInputs[i].Value())
		return m, cmd
	}
	if m.cursor == m.rowPath() {
		m.pathInput, cmd = m.pathInput.Update(msg)
		m.sess.SetOutputPath(m.pathInput.Value())
		return m, cmd
	}
	return m, nil
}

func (m *Model) cycleQuality(forward bool) {
	cur := 0
	for i, q := range host.Qualities {
		if q == m.sess.Quality() {
			cur = i
			break
		}
	}
	if forward {
		cur = (cur + 1) % len(host.Qualities)
	} else {
		cur = (cur - 1 + len(host.Qualities)) % len(host.Qualities)
	}
	m.sess.SetQuality(host.Qualities[cur])
}

func (m *Model) choosePath(path string) {
	m.pathInput.SetValue(path)
	m.sess.SetOutputPath(path)
}

// =============================================================================
// EXPORT EXECUTION
// =============================================================================

func (m Model) startExport() (tea.Model, tea.Cmd) {
	snap := m.sess.Snapshot()

	if err := os.MkdirAll(snap.OutputDir, 0755); err != nil {
		m.status = "cannot create output folder: " + err.Error()
		m.statusTone = toneError
		return m, nil
	}

	// The chosen folder becomes the default for the next run.
	m.store.Save(map[string]string{settings.KeyOutputPath: snap.OutputDir})

	jobs := export.BuildJobs(snap.Bodies, snap.Names, snap.OutputDir)

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan tea.Msg, len(jobs)+1)

	m.phase = PhaseExporting
	m.cancelRun = cancel
	m.progressCh = ch
	m.done = 0
	m.total = len(jobs)
	m.jobNames = make([]string, len(jobs))
	for i, job := range jobs {
		m.jobNames[i] = job.Body.Name()
	}

	runner := export.Runner{Exporter: m.exporter}
	go func() {
		summary, err := runner.Run(ctx, jobs, snap.Quality, func(done, total int) {
			ch <- exportProgressMsg{done: done, total: total}
		})
		ch <- exportDoneMsg{summary: summary, err: err}
		close(ch)
	}()

	return m, waitForExport(ch)
}

func (m Model) handleExportDone(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	if m.cancelRun != nil {
		m.cancelRun()
		m.cancelRun = nil
	}
	m.progressCh = nil

	if msg.err != nil {
		m.phase = PhasePicking
		m.status = "export failed: " + msg.err.Error()
		m.statusTone = toneError
		return m, nil
	}

	m.summary = msg.summary
	if m.record != nil {
		m.record(msg.summary)
	}
	m.phase = PhaseSummary
	return m, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForExport returns the next progress or completion message from the
// running batch.
func waitForExport(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// waitForDesignChange blocks until the design watcher signals a change.
func waitForDesignChange(w *host.DesignWatcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.Changes(); !ok {
			return nil
		}
		return designChangedMsg{}
	}
}

// reloadDesign loads the design again after a change on disk.
func reloadDesign(reload func() (host.Design, error)) tea.Cmd {
	if reload == nil {
		return nil
	}
	return func() tea.Msg {
		design, err := reload()
		return designReloadedMsg{design: design, err: err}
	}
}
