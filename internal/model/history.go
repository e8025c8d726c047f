// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role tags a history entry with its author for the completion service.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the wire representation of the role.
func (r Role) String() string {
	return string(r)
}

// =============================================================================
// HISTORY ENTRY
// =============================================================================

// HistoryEntry is one role-tagged turn of the conversation payload sent
// verbatim to the completion service.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// =============================================================================
// HISTORY BUILDER
// =============================================================================

// History maintains the ordered (oldest-first) entry list sent to the
// remote model. The first entry is always the system persona entry; it is
// removed only by Reset, which immediately re-inserts it.
//
// Entries are append-only: individual entries are never reordered or
// deleted. The optional window bounds growth by dropping the oldest
// non-system entries once the window is exceeded.
type History struct {
	persona string
	window  int // max non-system entries kept; 0 = unbounded
	entries []HistoryEntry
}

// NewHistory creates a history seeded with the system persona entry.
// window is the maximum number of non-system entries to retain
// (0 disables the bound).
func NewHistory(persona string, window int) *History {
	h := &History{persona: persona, window: window}
	h.Reset()
	return h
}

// Reset truncates history to exactly the system entry. Calling Reset
// repeatedly yields the same single-entry result.
func (h *History) Reset() {
	h.entries = []HistoryEntry{{Role: RoleSystem, Content: h.persona}}
}

// AppendUser appends a user-tagged entry.
func (h *History) AppendUser(content string) {
	h.append(HistoryEntry{Role: RoleUser, Content: content})
}

// AppendAssistant appends an assistant-tagged entry.
func (h *History) AppendAssistant(content string) {
	h.append(HistoryEntry{Role: RoleAssistant, Content: content})
}

func (h *History) append(e HistoryEntry) {
	h.entries = append(h.entries, e)
	h.trim()
}

// trim enforces the sliding window, preserving the system entry at index 0.
func (h *History) trim() {
	if h.window <= 0 {
		return
	}
	excess := len(h.entries) - 1 - h.window
	if excess <= 0 {
		return
	}
	kept := make([]HistoryEntry, 0, 1+h.window)
	kept = append(kept, h.entries[0])
	kept = append(kept, h.entries[1+excess:]...)
	h.entries = kept
}

// Entries returns an oldest-first copy of the history.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries, including the system entry.
func (h *History) Len() int {
	return len(h.entries)
}
