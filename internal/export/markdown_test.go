// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/morganforge/chanmark/internal/model"
)

var testExportedAt = time.Date(2024, 6, 12, 15, 4, 5, 0, time.UTC)

func testOptions() *Options {
	return &Options{
		Settings:   DefaultSettings(),
		ExportedAt: testExportedAt,
		Location:   time.UTC,
	}
}

func testChannel() *model.Channel {
	return &model.Channel{
		ID:    "1000",
		Type:  model.ChannelGuildText,
		Name:  "general",
		Topic: "Daily chatter",
	}
}

func testMessage(id, content string) model.Message {
	return model.Message{
		ID:        id,
		Author:    model.Author{Username: "alice"},
		Content:   content,
		Timestamp: time.Date(2024, 6, 12, 9, 30, 0, 0, time.UTC),
	}
}

func buildString(t *testing.T, opts *Options, channel *model.Channel, guild *model.Guild, msgs []model.Message) string {
	t.Helper()
	return string(NewMarkdownExporter(opts).Build(channel, guild, msgs))
}

func TestBuildHeaderGuildChannel(t *testing.T) {
	doc := buildString(t, testOptions(), testChannel(), &model.Guild{ID: "1", Name: "Morgan Forge"},
		[]model.Message{testMessage("1", "hi")})

	if !strings.HasPrefix(doc, "# #general\n") {
		t.Fatalf("missing channel title, got:\n%s", doc)
	}
	want := "**Server:** Morgan Forge  |  **Topic:** Daily chatter  |  **Exported:** 2024-06-12 15:04:05 UTC  |  **Messages:** 1"
	if !strings.Contains(doc, want) {
		t.Errorf("metadata line mismatch\nwant substring: %s\ngot:\n%s", want, doc)
	}
}

func TestBuildHeaderDM(t *testing.T) {
	channel := &model.Channel{
		ID:         "2000",
		Type:       model.ChannelDM,
		Recipients: []model.Author{{Username: "bob"}},
	}
	doc := buildString(t, testOptions(), channel, nil, nil)

	if !strings.HasPrefix(doc, "# DM with bob\n") {
		t.Errorf("wrong DM title:\n%s", doc)
	}
	if strings.Contains(doc, "**Server:**") {
		t.Error("DM export should not carry a server line")
	}
	if !strings.Contains(doc, "**Messages:** 0") {
		t.Errorf("missing message count:\n%s", doc)
	}
}

func TestBuildHeaderGroupDM(t *testing.T) {
	channel := &model.Channel{
		ID:   "3000",
		Type: model.ChannelGroupDM,
		Recipients: []model.Author{
			{Username: "bob"},
			{Username: "carol"},
		},
	}
	doc := buildString(t, testOptions(), channel, nil, nil)

	if !strings.HasPrefix(doc, "# Group DM: bob, carol\n") {
		t.Errorf("wrong group DM title:\n%s", doc)
	}
}

func TestBuildMessageCountGrouping(t *testing.T) {
	msgs := make([]model.Message, 1234)
	for i := range msgs {
		msgs[i] = testMessage("1", "x")
	}
	doc := buildString(t, testOptions(), testChannel(), nil, msgs)

	if !strings.Contains(doc, "**Messages:** 1,234") {
		t.Errorf("count not grouped:\n%s", doc[:200])
	}
}

func TestBuildMessageHeading(t *testing.T) {
	msg := testMessage("1", "hello world")
	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{msg})

	if !strings.Contains(doc, "### alice — 06/12/2024, 09:30 AM\n") {
		t.Errorf("missing heading:\n%s", doc)
	}
	if !strings.Contains(doc, "hello world") {
		t.Errorf("missing content:\n%s", doc)
	}
}

func TestBuildGlobalNamePreferred(t *testing.T) {
	msg := testMessage("1", "hi")
	msg.Author.GlobalName = "Alice A."
	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{msg})

	if !strings.Contains(doc, "### Alice A. — ") {
		t.Errorf("global name not used:\n%s", doc)
	}
}

func TestBuildEditedAndPinnedMarkers(t *testing.T) {
	edited := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	msg := testMessage("1", "hi")
	msg.EditedTimestamp = &edited
	msg.Pinned = true

	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{msg})
	if !strings.Contains(doc, "(edited) 📌") {
		t.Errorf("missing edited/pin markers:\n%s", doc)
	}

	opts := testOptions()
	opts.Settings.IncludePinIndicator = false
	doc = buildString(t, opts, testChannel(), nil, []model.Message{msg})
	if strings.Contains(doc, "📌") {
		t.Errorf("pin shown with indicator disabled:\n%s", doc)
	}
	if !strings.Contains(doc, "(edited)") {
		t.Errorf("edited marker should not depend on pin setting:\n%s", doc)
	}
}

func TestBuildSeparators(t *testing.T) {
	msgs := []model.Message{testMessage("1", "one"), testMessage("2", "two")}
	doc := buildString(t, testOptions(), testChannel(), nil, msgs)

	if got := strings.Count(doc, "\n---\n"); got < 3 {
		t.Errorf("expected header rule plus one rule per message, got %d", got)
	}
}

func TestBuildSystemMessages(t *testing.T) {
	tests := []struct {
		name string
		typ  model.MessageType
		want string
	}{
		{"join", model.TypeUserJoin, "*alice joined the server.*"},
		{"call", model.TypeCall, "*alice started a call.*"},
		{"pin", model.TypeChannelPinnedMessage, "*alice pinned a message to this channel.*"},
		{"boost", model.TypeGuildBoost, "*alice boosted the server!*"},
		{"boost tier 2", model.TypeGuildBoostTier2, "*alice boosted the server! Server has achieved **Level 2**!*"},
		{"discovery disqualified", model.TypeGuildDiscoveryDisqualified, "*This server has been removed from Server Discovery.*"},
		{"unknown type", model.MessageType(21), "*System message (type 21)*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := testMessage("1", "")
			msg.Type = tt.typ
			doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{msg})
			if !strings.Contains(doc, tt.want) {
				t.Errorf("want %q in:\n%s", tt.want, doc)
			}
		})
	}
}

func TestBuildSystemMessageWithMention(t *testing.T) {
	msg := testMessage("1", "")
	msg.Type = model.TypeRecipientAdd
	msg.Mentions = []model.Author{{Username: "bob"}}

	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{msg})
	if !strings.Contains(doc, "*alice added bob to the group.*") {
		t.Errorf("mention not rendered:\n%s", doc)
	}

	msg.Mentions = nil
	doc = buildString(t, testOptions(), testChannel(), nil, []model.Message{msg})
	if !strings.Contains(doc, "*alice added someone to the group.*") {
		t.Errorf("missing mention fallback:\n%s", doc)
	}
}

func TestBuildSystemMessagesDisabled(t *testing.T) {
	msg := testMessage("1", "")
	msg.Type = model.TypeUserJoin

	opts := testOptions()
	opts.Settings.IncludeSystemMessages = false
	doc := buildString(t, opts, testChannel(), nil, []model.Message{msg})

	if strings.Contains(doc, "joined the server") {
		t.Errorf("system message rendered while disabled:\n%s", doc)
	}
	// The header still reports the raw count.
	if !strings.Contains(doc, "**Messages:** 1") {
		t.Errorf("count should include skipped messages:\n%s", doc)
	}
}

func TestBuildReplyQuote(t *testing.T) {
	original := testMessage("10", "the original message")
	reply := testMessage("11", "agreed")
	reply.Type = model.TypeReply
	reply.Author.Username = "bob"
	reply.MessageReference = &model.MessageReference{MessageID: "10"}

	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{original, reply})

	if !strings.Contains(doc, "> **Replying to alice:**\n> the original message") {
		t.Errorf("missing reply quote:\n%s", doc)
	}
}

func TestBuildReplyQuoteTruncated(t *testing.T) {
	original := testMessage("10", strings.Repeat("é", 250))
	reply := testMessage("11", "ok")
	reply.Type = model.TypeReply
	reply.MessageReference = &model.MessageReference{MessageID: "10"}

	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{original, reply})

	want := "> " + strings.Repeat("é", 200) + "..."
	if !strings.Contains(doc, want) {
		t.Errorf("preview not truncated at 200 runes:\n%s", doc)
	}
}

func TestBuildReplyQuoteDeletedReference(t *testing.T) {
	reply := testMessage("11", "ok")
	reply.Type = model.TypeReply
	reply.MessageReference = &model.MessageReference{MessageID: "999"}

	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{reply})

	if !strings.Contains(doc, "> **Replying to** a deleted or unavailable message") {
		t.Errorf("missing deleted-reference placeholder:\n%s", doc)
	}
}

func TestBuildEmbed(t *testing.T) {
	msg := testMessage("1", "")
	msg.Embeds = []model.Embed{{
		Title:       "Release Notes",
		Description: "Line one\nLine two",
		URL:         "https://example.com/notes",
		Fields: []model.EmbedField{
			{Name: "Version", Value: "1.2.0"},
		},
		Image: &model.EmbedMedia{URL: "https://cdn.example.com/img/banner.png"},
	}}

	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{msg})

	for _, want := range []string{
		"> **Embed: Release Notes**",
		"> Line one\n> Line two",
		">\n> **Version:** 1.2.0",
		"> *Image:* [banner.png](https://cdn.example.com/img/banner.png)",
		"> *URL:* https://example.com/notes",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("want %q in:\n%s", want, doc)
		}
	}

	opts := testOptions()
	opts.Settings.IncludeEmbeds = false
	doc = buildString(t, opts, testChannel(), nil, []model.Message{msg})
	if strings.Contains(doc, "Embed") {
		t.Errorf("embed rendered while disabled:\n%s", doc)
	}
}

func TestBuildAttachments(t *testing.T) {
	msg := testMessage("1", "")
	msg.Attachments = []model.Attachment{
		{Filename: "report.pdf", Size: 2048, URL: "https://cdn.example.com/report.pdf", ContentType: "application/pdf"},
		{Filename: "raw.bin", Size: 500, URL: "https://cdn.example.com/raw.bin"},
	}

	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{msg})

	if !strings.Contains(doc, "**Attachments:**\n- [report.pdf](https://cdn.example.com/report.pdf) (2.0 KB, application/pdf)\n- [raw.bin](https://cdn.example.com/raw.bin) (500 B)") {
		t.Errorf("attachment list mismatch:\n%s", doc)
	}

	opts := testOptions()
	opts.Settings.IncludeAttachments = false
	doc = buildString(t, opts, testChannel(), nil, []model.Message{msg})
	if strings.Contains(doc, "Attachments") {
		t.Errorf("attachments rendered while disabled:\n%s", doc)
	}
}

func TestBuildReactions(t *testing.T) {
	msg := testMessage("1", "nice")
	msg.Reactions = []model.Reaction{
		{Emoji: model.Emoji{Name: "👍"}, Count: 3},
		{Emoji: model.Emoji{ID: "5555", Name: "forgehammer"}, Count: 1},
	}

	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{msg})

	if !strings.Contains(doc, "**Reactions:** 👍 (3) | :forgehammer: (1)") {
		t.Errorf("reactions mismatch:\n%s", doc)
	}
}

func TestBuildEditHistory(t *testing.T) {
	msg := testMessage("1", "final text")
	msg.EditHistory = []model.EditRevision{
		{Timestamp: time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC), Content: "first draft"},
	}

	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{msg})

	for _, want := range []string{
		"<details>",
		"<summary>Edit History (1 edit)</summary>",
		"**06/12/2024, 09:00 AM:** first draft",
		"</details>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("want %q in:\n%s", want, doc)
		}
	}
}

func TestBuildEditHistoryPlural(t *testing.T) {
	msg := testMessage("1", "final")
	msg.EditHistory = []model.EditRevision{
		{Timestamp: testExportedAt, Content: "a"},
		{Timestamp: testExportedAt, Content: "b"},
	}

	doc := buildString(t, testOptions(), testChannel(), nil, []model.Message{msg})
	if !strings.Contains(doc, "<summary>Edit History (2 edits)</summary>") {
		t.Errorf("plural summary mismatch:\n%s", doc)
	}
}

func TestBuildDeterministic(t *testing.T) {
	msgs := []model.Message{testMessage("1", "one"), testMessage("2", "two")}
	first := NewMarkdownExporter(testOptions()).Build(testChannel(), nil, msgs)
	second := NewMarkdownExporter(testOptions()).Build(testChannel(), nil, msgs)

	if !bytes.Equal(first, second) {
		t.Error("same input produced different documents")
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{2048, "2.0 KB"},
		{5242880, "5.0 MB"},
		{2147483648, "2.0 GB"},
	}

	for _, tt := range tests {
		if got := FormatFileSize(tt.bytes); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
