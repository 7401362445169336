// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the wire-level data structures returned by the
// message API: messages, authors, embeds, attachments and reactions.
package model

import "time"

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// MessageType is the numeric message type reported by the API.
type MessageType int

const (
	TypeDefault                    MessageType = 0
	TypeRecipientAdd               MessageType = 1
	TypeRecipientRemove            MessageType = 2
	TypeCall                       MessageType = 3
	TypeChannelNameChange          MessageType = 4
	TypeChannelIconChange          MessageType = 5
	TypeChannelPinnedMessage       MessageType = 6
	TypeUserJoin                   MessageType = 7
	TypeGuildBoost                 MessageType = 8
	TypeGuildBoostTier1            MessageType = 9
	TypeGuildBoostTier2            MessageType = 10
	TypeGuildBoostTier3            MessageType = 11
	TypeChannelFollowAdd           MessageType = 12
	TypeGuildDiscoveryDisqualified MessageType = 14
	TypeGuildDiscoveryRequalified  MessageType = 15
	TypeReply                      MessageType = 19
	TypeGuildInviteReminder        MessageType = 22
)

// systemTypes is the fixed set of types rendered through the
// system-message templates rather than as a regular message block.
var systemTypes = map[MessageType]bool{
	TypeRecipientAdd:               true,
	TypeRecipientRemove:            true,
	TypeCall:                       true,
	TypeChannelNameChange:          true,
	TypeChannelIconChange:          true,
	TypeChannelPinnedMessage:       true,
	TypeUserJoin:                   true,
	TypeGuildBoost:                 true,
	TypeGuildBoostTier1:            true,
	TypeGuildBoostTier2:            true,
	TypeGuildBoostTier3:            true,
	TypeChannelFollowAdd:           true,
	TypeGuildDiscoveryDisqualified: true,
	TypeGuildDiscoveryRequalified:  true,
	TypeGuildInviteReminder:        true,
}

// IsSystem reports whether the type is a system-generated message.
func (t MessageType) IsSystem() bool {
	return systemTypes[t]
}

// =============================================================================
// MESSAGE STRUCTURE
// =============================================================================

// Message is one message as returned by the messages endpoint, carrying
// only the fields the exporter consumes. Unknown fields are ignored.
type Message struct {
	// ID is a snowflake: a numeric string that encodes the creation
	// timestamp and increases monotonically with creation order.
	ID string `json:"id"`

	Author  Author      `json:"author"`
	Content string      `json:"content"`
	Type    MessageType `json:"type"`

	Timestamp       time.Time  `json:"timestamp"`
	EditedTimestamp *time.Time `json:"edited_timestamp,omitempty"`
	Pinned          bool       `json:"pinned,omitempty"`

	// Mentions are consumed by the group add/remove system templates.
	Mentions []Author `json:"mentions,omitempty"`

	Embeds      []Embed      `json:"embeds,omitempty"`
	Attachments []Attachment `json:"attachments"`
	Reactions   []Reaction   `json:"reactions,omitempty"`

	// EditHistory is populated by message-logging middleware, not by the
	// remote API itself. Absent unless such middleware ran.
	EditHistory []EditRevision `json:"edit_history,omitempty"`

	// MessageReference is set on replies (TypeReply).
	MessageReference *MessageReference `json:"message_reference,omitempty"`
}

// DisplayName returns the author's display name, preferring the global
// display name over the raw username.
func (m *Message) DisplayName() string {
	return m.Author.DisplayName()
}

// Author identifies who wrote a message.
type Author struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name,omitempty"`
}

// DisplayName prefers the global display name over the raw username.
func (a Author) DisplayName() string {
	if a.GlobalName != "" {
		return a.GlobalName
	}
	return a.Username
}

// MessageReference points a reply at the message it replies to.
type MessageReference struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id,omitempty"`
	GuildID   string `json:"guild_id,omitempty"`
}

// EditRevision is one historical revision of an edited message.
type EditRevision struct {
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

// =============================================================================
// MESSAGE FACETS
// =============================================================================

// Embed is rich embedded content attached to a message.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Image       *EmbedMedia  `json:"image,omitempty"`
	Thumbnail   *EmbedMedia  `json:"thumbnail,omitempty"`
}

// EmbedField is a single name/value pair inside an embed.
type EmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// EmbedMedia is an image or thumbnail inside an embed.
type EmbedMedia struct {
	URL string `json:"url"`
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
}

// Reaction is an aggregated emoji reaction on a message.
type Reaction struct {
	Emoji Emoji `json:"emoji"`
	Count int   `json:"count"`
}

// Emoji is either a custom emoji (ID set, Name is the custom name) or a
// native unicode emoji (ID empty, Name is the glyph).
type Emoji struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}
