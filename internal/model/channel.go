// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// CHANNEL TYPES
// =============================================================================

// ChannelType is the numeric channel kind reported by the API.
type ChannelType int

const (
	ChannelGuildText ChannelType = 0
	ChannelDM        ChannelType = 1
	ChannelGroupDM   ChannelType = 3
)

// =============================================================================
// CHANNEL / GUILD STRUCTURES
// =============================================================================

// Channel is the channel being exported.
type Channel struct {
	ID      string      `json:"id"`
	Type    ChannelType `json:"type"`
	Name    string      `json:"name,omitempty"`
	Topic   string      `json:"topic,omitempty"`
	GuildID string      `json:"guild_id,omitempty"`

	// Recipients is set for DM and group DM channels.
	Recipients []Author `json:"recipients,omitempty"`
}

// Label returns a short human-readable identifier for the channel:
// "#name" for named channels, "DM" otherwise.
func (c *Channel) Label() string {
	if c.Name != "" {
		return "#" + c.Name
	}
	return "DM"
}

// ExportName returns the base name used in export filenames:
// the channel name, or "dm-<id>" for unnamed (direct message) channels.
func (c *Channel) ExportName() string {
	if c.Name != "" {
		return c.Name
	}
	return "dm-" + c.ID
}

// Guild is the server a channel belongs to, when it belongs to one.
type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
