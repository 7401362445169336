// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exportview

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/chanmark/internal/fetch"
	"github.com/morganforge/chanmark/internal/ui/styles"
	"github.com/morganforge/chanmark/internal/util"
)

func newTestModel() (Model, chan fetch.Progress, chan Result) {
	events := make(chan fetch.Progress, 8)
	result := make(chan Result, 1)
	m := New("#general", styles.NewTheme("dark"), fetch.NewAbort(), events, result)
	return m, events, result
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestProgressUpdatesCount(t *testing.T) {
	m, _, _ := newTestModel()

	m = update(t, m, progressMsg(fetch.Progress{Fetched: 100}))
	m = update(t, m, progressMsg(fetch.Progress{Fetched: 250}))

	if m.fetched != 250 {
		t.Errorf("fetched = %d, want 250", m.fetched)
	}
	if m.Terminal() {
		t.Error("model should still be running")
	}
	if !strings.Contains(m.View(), "250") {
		t.Errorf("view missing count:\n%s", m.View())
	}
}

func TestLongChannelLabelTruncated(t *testing.T) {
	events := make(chan fetch.Progress, 8)
	result := make(chan Result, 1)
	label := "Group DM: " + strings.Repeat("participant, ", 12)
	m := New(label, styles.NewTheme("dark"), fetch.NewAbort(), events, result)

	m = update(t, m, tea.WindowSizeMsg{Width: 50, Height: 24})

	view := m.View()
	if strings.Contains(view, label) {
		t.Error("full label should not fit a 50-column window")
	}
	want := util.TruncateWidth(label, 50-22)
	if !strings.HasSuffix(want, "...") {
		t.Fatalf("label %q should have been shortened", want)
	}
	if !strings.Contains(view, want) {
		t.Errorf("view missing truncated label %q:\n%s", want, view)
	}
}

func TestTerminalProgressMovesToWriting(t *testing.T) {
	m, _, _ := newTestModel()

	m = update(t, m, progressMsg(fetch.Progress{Fetched: 300, Done: true}))

	if m.phase != phaseWriting {
		t.Errorf("phase = %d, want writing", m.phase)
	}
	if !strings.Contains(m.View(), "Writing document") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestResultComplete(t *testing.T) {
	m, _, _ := newTestModel()

	m = update(t, m, resultMsg(Result{
		OutputPath:   "/tmp/general-export-all_2024-06-12.md",
		MessageCount: 300,
	}))

	if m.phase != phaseDone {
		t.Errorf("phase = %d, want done", m.phase)
	}
	view := m.View()
	if !strings.Contains(view, "Exported 300 messages") {
		t.Errorf("view missing summary:\n%s", view)
	}
	if !strings.Contains(view, "general-export-all_2024-06-12.md") {
		t.Errorf("view missing path:\n%s", view)
	}
	if m.OutputPath() == "" {
		t.Error("OutputPath() empty")
	}
}

func TestResultError(t *testing.T) {
	m, _, _ := newTestModel()

	m = update(t, m, resultMsg(Result{Err: errors.New("Missing permissions to read this channel.")}))

	if m.phase != phaseError {
		t.Errorf("phase = %d, want error", m.phase)
	}
	if !strings.Contains(m.View(), "Missing permissions") {
		t.Errorf("view missing error:\n%s", m.View())
	}
	if m.Err() == nil {
		t.Error("Err() should report the failure")
	}
}

func TestResultCancelled(t *testing.T) {
	m, _, _ := newTestModel()

	m = update(t, m, resultMsg(Result{
		OutputPath:   "/tmp/general-export-all_2024-06-12.md",
		MessageCount: 120,
		Cancelled:    true,
	}))

	if m.phase != phaseCancelled {
		t.Errorf("phase = %d, want cancelled", m.phase)
	}
	if !strings.Contains(m.View(), "120 messages saved") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestCancelKeySetsAbort(t *testing.T) {
	m, _, _ := newTestModel()

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	if !m.abort.Aborted() {
		t.Error("ctrl+c should set the abort handle")
	}
	if m.Terminal() {
		t.Error("cancel waits for the worker result before finishing")
	}
}

func TestQuitAfterDone(t *testing.T) {
	m, _, _ := newTestModel()
	m = update(t, m, resultMsg(Result{MessageCount: 1}))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("got %v, want tea.Quit", msg)
	}
}

func TestQuitIgnoredWhileRunning(t *testing.T) {
	m, _, _ := newTestModel()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd != nil {
		t.Error("q should be inert during the fetch")
	}
	if next.(Model).Terminal() {
		t.Error("model should still be running")
	}
}
