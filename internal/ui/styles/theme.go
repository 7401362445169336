// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the export view.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Header
	Title   lipgloss.Style
	Channel lipgloss.Style

	// Progress area
	Box         lipgloss.Style
	StatusLabel lipgloss.Style
	StatusValue lipgloss.Style
	Count       lipgloss.Style

	// Terminal states
	Success lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style

	// Help line
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// NewTheme builds a theme for the requested mode: "dark", "light", or
// "auto" (detect from the terminal background).
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}

	t.Title = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.Channel = lipgloss.NewStyle().Bold(true).Foreground(Cyan)

	t.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.StatusLabel = lipgloss.NewStyle().Foreground(TextMuted)
	t.StatusValue = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Count = lipgloss.NewStyle().Bold(true).Foreground(Purple)

	t.Success = lipgloss.NewStyle().Bold(true).Foreground(Emerald)
	t.Error = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	t.HelpKey = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.HelpDesc = lipgloss.NewStyle().Foreground(TextMuted)

	return t
}
