// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exportview

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/morganforge/chanmark/internal/ui/styles"
	"github.com/morganforge/chanmark/internal/util"
)

// countPrinter renders message counts with digit grouping.
var countPrinter = message.NewPrinter(language.AmericanEnglish)

// View renders the export view.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("chanmark export"))
	b.WriteString("  ")
	// Long DM and group titles must not overflow the box.
	b.WriteString(m.theme.Channel.Render(util.TruncateWidth(m.channelLabel, m.width-22)))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseFetching:
		b.WriteString(fmt.Sprintf("%s Fetching messages... %s fetched\n",
			m.spinner.View(),
			m.theme.Count.Render(countPrinter.Sprintf("%d", m.fetched))))
		b.WriteString(m.statusLine())
		b.WriteString("\n\n")
		b.WriteString(m.helpLine(m.keys.Cancel.Help().Key, m.keys.Cancel.Help().Desc))

	case phaseWriting:
		b.WriteString(fmt.Sprintf("%s Writing document... %s messages\n",
			m.spinner.View(),
			m.theme.Count.Render(countPrinter.Sprintf("%d", m.fetched))))

	case phaseDone:
		b.WriteString(m.bar.View())
		b.WriteString("\n\n")
		b.WriteString(styles.RenderSuccess(countPrinter.Sprintf("Exported %d messages", m.fetched)))
		b.WriteString("\n")
		b.WriteString(m.theme.StatusLabel.Render("File: "))
		b.WriteString(m.theme.StatusValue.Render(m.output))
		b.WriteString("\n\n")
		b.WriteString(m.helpLine(m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc))

	case phaseCancelled:
		b.WriteString(styles.RenderWarning(countPrinter.Sprintf("Export stopped; %d messages saved", m.fetched)))
		b.WriteString("\n")
		if m.output != "" {
			b.WriteString(m.theme.StatusLabel.Render("File: "))
			b.WriteString(m.theme.StatusValue.Render(m.output))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.helpLine(m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc))

	case phaseError:
		b.WriteString(styles.RenderError("Export failed"))
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(m.theme.Error.Render(m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.helpLine(m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc))
	}

	return m.theme.Box.Width(m.width - 2).Render(b.String())
}

// statusLine shows the elapsed time while the fetch runs.
func (m Model) statusLine() string {
	elapsed := time.Since(m.startedAt).Round(time.Second)
	return m.theme.StatusLabel.Render("Elapsed: ") +
		m.theme.StatusValue.Render(elapsed.String())
}

func (m Model) helpLine(key, desc string) string {
	return m.theme.HelpKey.Render(key) + m.theme.HelpDesc.Render(" "+desc)
}
