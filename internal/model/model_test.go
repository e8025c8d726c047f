// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello!")

	if msg.ID == "" {
		t.Error("expected non-empty ID")
	}
	if msg.Text != "Hello!" {
		t.Errorf("Text = %q, want %q", msg.Text, "Hello!")
	}
	if !msg.IsUser {
		t.Error("IsUser should be true")
	}
	if msg.Notice {
		t.Error("user messages should not be notices")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage("Hi there!")
	if msg.IsUser {
		t.Error("IsUser should be false")
	}
	if msg.Notice {
		t.Error("assistant messages should not be notices")
	}
}

func TestNewNotice(t *testing.T) {
	msg := NewNotice("slow down")
	if msg.IsUser {
		t.Error("notices are not user messages")
	}
	if !msg.Notice {
		t.Error("Notice flag should be set")
	}
}

func TestMessageIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewUserMessage("x")
		if seen[msg.ID] {
			t.Fatalf("duplicate ID generated: %s", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestBackfillID(t *testing.T) {
	// Old snapshots predate the id field
	var msg Message
	if err := json.Unmarshal([]byte(`{"text":"legacy","is_user":true}`), &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !msg.BackfillID() {
		t.Error("BackfillID should report a generated id")
	}
	if msg.ID == "" {
		t.Error("expected a freshly generated id")
	}

	// A message that already has an id keeps it
	before := msg.ID
	if msg.BackfillID() {
		t.Error("BackfillID should not replace an existing id")
	}
	if msg.ID != before {
		t.Error("existing id was replaced")
	}
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestNewHistory(t *testing.T) {
	h := NewHistory("You are a helpful assistant.", 0)

	entries := h.Entries()
	if len(entries) != 1 {
		t.Fatalf("new history length = %d, want 1", len(entries))
	}
	if entries[0].Role != RoleSystem {
		t.Errorf("first entry role = %q, want system", entries[0].Role)
	}
	if entries[0].Content != "You are a helpful assistant." {
		t.Errorf("persona content = %q", entries[0].Content)
	}
}

func TestHistory_AppendOrder(t *testing.T) {
	h := NewHistory("persona", 0)
	h.AppendUser("Hello!")
	h.AppendAssistant("Hi there!")

	entries := h.Entries()
	want := []HistoryEntry{
		{Role: RoleSystem, Content: "persona"},
		{Role: RoleUser, Content: "Hello!"},
		{Role: RoleAssistant, Content: "Hi there!"},
	}
	if len(entries) != len(want) {
		t.Fatalf("history length = %d, want %d", len(entries), len(want))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestHistory_ResetIdempotent(t *testing.T) {
	h := NewHistory("persona", 0)
	h.AppendUser("a")
	h.AppendAssistant("b")

	h.Reset()
	if h.Len() != 1 {
		t.Fatalf("after reset, length = %d, want 1", h.Len())
	}
	if h.Entries()[0].Role != RoleSystem {
		t.Error("after reset, first entry should be system")
	}

	// Reset twice in a row yields the same single-entry result
	h.Reset()
	if h.Len() != 1 {
		t.Errorf("after double reset, length = %d, want 1", h.Len())
	}
}

func TestHistory_Window(t *testing.T) {
	h := NewHistory("persona", 4)
	for i := 0; i < 5; i++ {
		h.AppendUser("u")
		h.AppendAssistant("a")
	}

	entries := h.Entries()
	if len(entries) != 5 { // system + window of 4
		t.Fatalf("bounded history length = %d, want 5", len(entries))
	}
	if entries[0].Role != RoleSystem {
		t.Error("system entry must survive the window")
	}
	// Oldest non-system entries were dropped, newest kept
	if entries[len(entries)-1].Role != RoleAssistant {
		t.Error("newest entry should be the last assistant turn")
	}
}

func TestHistory_EntriesIsCopy(t *testing.T) {
	h := NewHistory("persona", 0)
	h.AppendUser("original")

	entries := h.Entries()
	entries[1].Content = "mutated"

	if h.Entries()[1].Content != "original" {
		t.Error("Entries must return a copy")
	}
}
