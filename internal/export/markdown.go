// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/morganforge/chanmark/internal/model"
	"github.com/morganforge/chanmark/internal/util"
)

// replyPreviewLimit is the number of characters of a referenced message
// shown in a reply quote.
const replyPreviewLimit = 200

// countPrinter renders message counts with locale-style digit grouping.
var countPrinter = message.NewPrinter(language.AmericanEnglish)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a message history as a Markdown document:
// a channel header, then one block per message separated by horizontal
// rules, with optional facets gated by the export settings.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// MimeType returns the Markdown MIME type.
func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

// Build renders the document. Messages are emitted in input order; the
// fetcher guarantees chronological order. Malformed or missing optional
// fields degrade to defaults, so Build never fails.
func (e *MarkdownExporter) Build(channel *model.Channel, guild *model.Guild, messages []model.Message) []byte {
	parts := []string{
		e.channelHeader(channel, guild, len(messages)),
		"---\n",
	}

	for i := range messages {
		formatted := e.formatMessage(&messages[i], messages)
		if formatted != "" {
			parts = append(parts, formatted, "\n---\n")
		}
	}

	return []byte(strings.Join(parts, "\n"))
}

// =============================================================================
// HEADER
// =============================================================================

// channelHeader renders the document title and metadata line. The title
// depends on the channel kind: DM channels use the counterpart's name,
// group channels list all participants, named channels use "#name".
func (e *MarkdownExporter) channelHeader(channel *model.Channel, guild *model.Guild, messageCount int) string {
	var lines []string

	switch channel.Type {
	case model.ChannelDM:
		name := "Unknown User"
		if len(channel.Recipients) > 0 {
			name = channel.Recipients[0].Username
		}
		lines = append(lines, "# DM with "+name)
	case model.ChannelGroupDM:
		names := "Unknown"
		if len(channel.Recipients) > 0 {
			parts := make([]string, len(channel.Recipients))
			for i, r := range channel.Recipients {
				parts[i] = r.Username
			}
			names = strings.Join(parts, ", ")
		}
		lines = append(lines, "# Group DM: "+names)
	default:
		lines = append(lines, "# #"+channel.Name)
	}

	lines = append(lines, "")

	var meta []string
	if guild != nil {
		meta = append(meta, "**Server:** "+guild.Name)
	}
	if channel.Topic != "" {
		meta = append(meta, "**Topic:** "+channel.Topic)
	}
	exported := e.options.exportedAt().UTC().Format("2006-01-02 15:04:05") + " UTC"
	meta = append(meta, "**Exported:** "+exported)
	meta = append(meta, "**Messages:** "+countPrinter.Sprintf("%d", messageCount))

	lines = append(lines, strings.Join(meta, "  |  "), "")

	return strings.Join(lines, "\n")
}

// =============================================================================
// MESSAGE BLOCKS
// =============================================================================

// formatMessage renders one message block, or "" when the message is a
// system message and those are toggled off.
func (e *MarkdownExporter) formatMessage(msg *model.Message, all []model.Message) string {
	if msg.Type.IsSystem() {
		if !e.options.Settings.IncludeSystemMessages {
			return ""
		}
		return e.systemMessage(msg)
	}

	var parts []string

	pin := ""
	if e.options.Settings.IncludePinIndicator && msg.Pinned {
		pin = " 📌"
	}
	edited := ""
	if msg.EditedTimestamp != nil {
		edited = " (edited)"
	}
	parts = append(parts,
		fmt.Sprintf("### %s — %s%s%s", msg.DisplayName(), e.timestamp(msg.Timestamp), edited, pin),
		"")

	if msg.Type == model.TypeReply && msg.MessageReference != nil {
		parts = append(parts, e.replyQuote(msg.MessageReference.MessageID, all)...)
	}

	if msg.Content != "" {
		// Raw content, verbatim: no escaping.
		parts = append(parts, msg.Content, "")
	}

	if e.options.Settings.IncludeEmbeds {
		for i := range msg.Embeds {
			parts = append(parts, formatEmbed(&msg.Embeds[i]), "")
		}
	}

	if e.options.Settings.IncludeAttachments && len(msg.Attachments) > 0 {
		parts = append(parts, formatAttachments(msg.Attachments), "")
	}

	if e.options.Settings.IncludeReactions && len(msg.Reactions) > 0 {
		parts = append(parts, formatReactions(msg.Reactions), "")
	}

	if e.options.Settings.IncludeEditHistory && len(msg.EditHistory) > 0 {
		parts = append(parts, e.formatEditHistory(msg.EditHistory), "")
	}

	return strings.Join(parts, "\n")
}

// replyQuote renders a block-quoted preview of the referenced message,
// or a placeholder when it is not part of the exported set.
func (e *MarkdownExporter) replyQuote(refID string, all []model.Message) []string {
	var ref *model.Message
	for i := range all {
		if all[i].ID == refID {
			ref = &all[i]
			break
		}
	}
	if ref == nil {
		return []string{"> **Replying to** a deleted or unavailable message", ""}
	}

	preview := ref.Content
	if util.RuneLen(preview) > replyPreviewLimit {
		preview = util.TruncateRunesNoEllipsis(preview, replyPreviewLimit) + "..."
	}

	lines := []string{fmt.Sprintf("> **Replying to %s:**", ref.DisplayName())}
	for _, line := range strings.Split(preview, "\n") {
		lines = append(lines, "> "+line)
	}
	return append(lines, "")
}

// systemMessage dispatches a system-message type onto its template.
// Unrecognized types fall back to a generic marker; a missing mention
// falls back to "someone".
func (e *MarkdownExporter) systemMessage(msg *model.Message) string {
	author := msg.Author.Username
	mention := "someone"
	if len(msg.Mentions) > 0 {
		mention = msg.Mentions[0].Username
	}

	switch msg.Type {
	case model.TypeRecipientAdd:
		return fmt.Sprintf("*%s added %s to the group.*", author, mention)
	case model.TypeRecipientRemove:
		return fmt.Sprintf("*%s removed %s from the group.*", author, mention)
	case model.TypeCall:
		return fmt.Sprintf("*%s started a call.*", author)
	case model.TypeChannelNameChange:
		return fmt.Sprintf("*%s changed the channel name: **%s**.*", author, msg.Content)
	case model.TypeChannelIconChange:
		return fmt.Sprintf("*%s changed the channel icon.*", author)
	case model.TypeChannelPinnedMessage:
		return fmt.Sprintf("*%s pinned a message to this channel.*", author)
	case model.TypeUserJoin:
		return fmt.Sprintf("*%s joined the server.*", author)
	case model.TypeGuildBoost:
		return fmt.Sprintf("*%s boosted the server!*", author)
	case model.TypeGuildBoostTier1:
		return fmt.Sprintf("*%s boosted the server! Server has achieved **Level 1**!*", author)
	case model.TypeGuildBoostTier2:
		return fmt.Sprintf("*%s boosted the server! Server has achieved **Level 2**!*", author)
	case model.TypeGuildBoostTier3:
		return fmt.Sprintf("*%s boosted the server! Server has achieved **Level 3**!*", author)
	case model.TypeChannelFollowAdd:
		return fmt.Sprintf("*%s added **%s** to this channel.*", author, msg.Content)
	case model.TypeGuildDiscoveryDisqualified:
		return "*This server has been removed from Server Discovery.*"
	case model.TypeGuildDiscoveryRequalified:
		return "*This server is eligible for Server Discovery again.*"
	case model.TypeGuildInviteReminder:
		return fmt.Sprintf("*%s sent a reminder to check out the server.*", author)
	default:
		return fmt.Sprintf("*System message (type %d)*", msg.Type)
	}
}

// =============================================================================
// FACET BLOCKS
// =============================================================================

// formatEmbed renders an embed as a block quote.
func formatEmbed(embed *model.Embed) string {
	var lines []string

	if embed.Title != "" {
		lines = append(lines, "> **Embed: "+embed.Title+"**")
	} else {
		lines = append(lines, "> **Embed**")
	}

	if embed.Description != "" {
		for _, line := range strings.Split(embed.Description, "\n") {
			lines = append(lines, "> "+line)
		}
	}

	if len(embed.Fields) > 0 {
		lines = append(lines, ">")
		for _, field := range embed.Fields {
			lines = append(lines, fmt.Sprintf("> **%s:** %s", field.Name, field.Value))
		}
	}

	if embed.Image != nil && embed.Image.URL != "" {
		lines = append(lines, fmt.Sprintf("> *Image:* [%s](%s)", lastURLSegment(embed.Image.URL, "image"), embed.Image.URL))
	}
	if embed.Thumbnail != nil && embed.Thumbnail.URL != "" {
		lines = append(lines, fmt.Sprintf("> *Thumbnail:* [%s](%s)", lastURLSegment(embed.Thumbnail.URL, "thumbnail"), embed.Thumbnail.URL))
	}
	if embed.URL != "" {
		lines = append(lines, "> *URL:* "+embed.URL)
	}

	return strings.Join(lines, "\n")
}

// formatAttachments renders the attachment list with linked filenames
// and human-readable sizes.
func formatAttachments(attachments []model.Attachment) string {
	lines := []string{"**Attachments:**"}
	for _, att := range attachments {
		suffix := ""
		if att.ContentType != "" {
			suffix = ", " + att.ContentType
		}
		lines = append(lines, fmt.Sprintf("- [%s](%s) (%s%s)", att.Filename, att.URL, FormatFileSize(att.Size), suffix))
	}
	return strings.Join(lines, "\n")
}

// formatReactions renders the reactions summary. Custom emoji (those
// with an id) render as :name:, native emoji as the glyph itself.
func formatReactions(reactions []model.Reaction) string {
	parts := make([]string, len(reactions))
	for i, r := range reactions {
		emoji := r.Emoji.Name
		if r.Emoji.ID != "" {
			emoji = ":" + r.Emoji.Name + ":"
		}
		parts[i] = fmt.Sprintf("%s (%d)", emoji, r.Count)
	}
	return "**Reactions:** " + strings.Join(parts, " | ")
}

// formatEditHistory renders prior revisions inside a disclosure element.
func (e *MarkdownExporter) formatEditHistory(history []model.EditRevision) string {
	plural := "s"
	if len(history) == 1 {
		plural = ""
	}

	lines := []string{
		"<details>",
		fmt.Sprintf("<summary>Edit History (%d edit%s)</summary>", len(history), plural),
		"",
	}
	for _, edit := range history {
		lines = append(lines, fmt.Sprintf("**%s:** %s", e.timestamp(edit.Timestamp), edit.Content), "")
	}
	lines = append(lines, "</details>")
	return strings.Join(lines, "\n")
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// timestamp renders a message timestamp in locale style,
// MM/DD/YYYY, HH:MM AM/PM, in the configured timezone.
func (e *MarkdownExporter) timestamp(t time.Time) string {
	return t.In(e.options.location()).Format("01/02/2006, 03:04 PM")
}

// FormatFileSize renders a byte count in human-readable form: bytes
// below 1024, then one-decimal KB, MB, GB.
func FormatFileSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes < kb:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	case bytes < gb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	default:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	}
}

// lastURLSegment returns the final path segment of a URL, or fallback
// when there is none.
func lastURLSegment(u, fallback string) string {
	segments := strings.Split(u, "/")
	last := segments[len(segments)-1]
	if last == "" {
		return fallback
	}
	return last
}
