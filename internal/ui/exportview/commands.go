// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exportview

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/chanmark/internal/fetch"
)

// =============================================================================
// MESSAGES
// =============================================================================

// progressMsg carries one fetch progress event into the update loop.
type progressMsg fetch.Progress

// eventsClosedMsg signals that the fetcher stopped emitting progress.
type eventsClosedMsg struct{}

// resultMsg carries the final export outcome.
type resultMsg Result

// =============================================================================
// COMMANDS
// =============================================================================

// waitForProgress blocks on the next progress event. The update loop
// re-issues it after each message, one outstanding read at a time.
func waitForProgress(events <-chan fetch.Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return progressMsg(p)
	}
}

// waitForResult blocks until the worker goroutine reports the outcome.
func waitForResult(result <-chan Result) tea.Cmd {
	return func() tea.Msg {
		return resultMsg(<-result)
	}
}
