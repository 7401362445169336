// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exportview

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 8
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}
		return m, nil

	case progressMsg:
		m.fetched = msg.Fetched
		if msg.Done && m.phase == phaseFetching {
			// The fetch loop finished; the worker is now writing the
			// file unless the run was stopped.
			if m.abort.Aborted() {
				m.phase = phaseCancelled
			} else {
				m.phase = phaseWriting
			}
		}
		return m, waitForProgress(m.events)

	case eventsClosedMsg:
		return m, nil

	case resultMsg:
		m.fetched = msg.MessageCount
		m.output = msg.OutputPath
		switch {
		case msg.Err != nil:
			m.phase = phaseError
			m.err = msg.Err
		case msg.Cancelled:
			m.phase = phaseCancelled
		default:
			m.phase = phaseDone
		}
		return m, m.bar.SetPercent(1.0)

	case spinner.TickMsg:
		if m.Terminal() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.Terminal() {
			return m, tea.Quit
		}
		// Stop fetching; the worker finishes the partial export and
		// reports the outcome through the result channel.
		m.abort.Set()
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		if m.Terminal() {
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}
