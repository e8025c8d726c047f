// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/voxchat-tui/internal/util"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single chat bubble in the transcript.
//
// Messages are immutable after creation. They are removed only by the
// clear-chat flow, which empties the whole transcript.
type Message struct {
	// ID is an opaque unique identifier, generated at creation time and
	// stable across persistence round-trips.
	ID string `json:"id"`

	// Text is the displayed content.
	Text string `json:"text"`

	// IsUser is true when the human authored the message.
	IsUser bool `json:"is_user"`

	// Notice marks display-only messages (rate-limit warnings, errors).
	// Notices never have a corresponding history entry.
	Notice bool `json:"notice,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewUserMessage creates a message authored by the human.
func NewUserMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		IsUser:    true,
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage creates a message authored by the assistant.
func NewAssistantMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// NewNotice creates a display-only message (warning or error text).
func NewNotice(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Notice:    true,
		CreatedAt: time.Now(),
	}
}

// BackfillID assigns a fresh id when a record loaded from an old snapshot
// lacks one. Returns true if an id was generated.
func (m *Message) BackfillID() bool {
	if m.ID != "" {
		return false
	}
	m.ID = uuid.NewString()
	return true
}

// Preview returns a truncated single-line preview of the message text.
func (m Message) Preview(maxRunes int) string {
	return util.TruncateRunes(m.Text, maxRunes)
}
