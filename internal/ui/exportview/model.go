// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exportview provides the Bubble Tea model that drives an export
// run in the terminal: a live message counter while pages are fetched,
// then the written file path or the failure reason.
package exportview

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/chanmark/internal/fetch"
	"github.com/morganforge/chanmark/internal/ui/styles"
)

// =============================================================================
// PHASES
// =============================================================================

// phase is the export view state machine.
type phase int

const (
	phaseFetching phase = iota
	phaseWriting
	phaseDone
	phaseCancelled
	phaseError
)

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of an export run, delivered by the worker
// goroutine once the fetch and write have finished.
type Result struct {
	// OutputPath is the written file, empty on error
	OutputPath string

	// MessageCount is the number of messages written
	MessageCount int

	// Cancelled reports a user-stopped run; OutputPath still holds the
	// partial export
	Cancelled bool

	// Err is the terminal failure, nil on success or cancel
	Err error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for one export run.
type Model struct {
	theme *styles.Theme
	keys  KeyMap

	spinner spinner.Model
	bar     progress.Model

	channelLabel string
	abort        *fetch.Abort
	events       <-chan fetch.Progress
	result       <-chan Result

	phase     phase
	fetched   int
	output    string
	err       error
	startedAt time.Time
	width     int
}

// New creates the export view. events carries per-page progress from the
// fetcher; result delivers the final outcome; abort is shared with the
// fetch loop so the user can stop it.
func New(channelLabel string, theme *styles.Theme, abort *fetch.Abort, events <-chan fetch.Progress, result <-chan Result) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	bar := progress.New(progress.WithDefaultGradient())

	return Model{
		theme:        theme,
		keys:         DefaultKeyMap(),
		spinner:      sp,
		bar:          bar,
		channelLabel: channelLabel,
		abort:        abort,
		events:       events,
		result:       result,
		phase:        phaseFetching,
		startedAt:    time.Now(),
		width:        80,
	}
}

// Init starts the spinner and the event listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForProgress(m.events), waitForResult(m.result))
}

// Terminal reports whether the run has reached a final state.
func (m Model) Terminal() bool {
	return m.phase == phaseDone || m.phase == phaseCancelled || m.phase == phaseError
}

// Err returns the failure after the program exits, nil otherwise.
func (m Model) Err() error {
	return m.err
}

// OutputPath returns the written file after the program exits.
func (m Model) OutputPath() string {
	return m.output
}
