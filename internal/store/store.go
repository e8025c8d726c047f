// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/voxchat-tui/internal/model"
)

// =============================================================================
// SNAPSHOT BACKEND
// =============================================================================

// Snapshot is the durable persistence collaborator for the Store.
//
// Save overwrites any prior snapshot with the full message list.
// Load returns the stored list and whether a snapshot existed; a missing
// snapshot is normal on first run and is not an error.
// Clear removes the snapshot entirely.
type Snapshot interface {
	Save(messages []model.Message) error
	Load() (messages []model.Message, found bool, err error)
	Clear() error
}

// =============================================================================
// MESSAGE STORE
// =============================================================================

// Store is the in-memory ordered message list (newest first) with a
// durable Snapshot behind it.
type Store struct {
	mu       sync.Mutex
	messages []model.Message
	snap     Snapshot
}

// New creates a store backed by the given snapshot.
func New(snap Snapshot) *Store {
	return &Store{snap: snap}
}

// Append inserts a message at the head of the display list.
func (s *Store) Append(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append([]model.Message{msg}, s.messages...)
}

// Messages returns a newest-first copy of the display list.
func (s *Store) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the display list.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Clear empties the display list. The durable snapshot is untouched;
// use ClearSnapshot for that.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Persist writes the full list through the snapshot backend, overwriting
// any prior snapshot. Failures are returned for the caller to log; the
// in-memory list stays authoritative either way.
func (s *Store) Persist() error {
	s.mu.Lock()
	msgs := make([]model.Message, len(s.messages))
	copy(msgs, s.messages)
	s.mu.Unlock()

	if err := s.snap.Save(msgs); err != nil {
		log.Printf("store: persist failed: %v", err)
		return err
	}
	return nil
}

// Load restores a prior snapshot into the display list. A missing
// snapshot leaves state untouched. Records that predate the id field get
// a freshly generated id rather than failing.
func (s *Store) Load() error {
	msgs, found, err := s.snap.Load()
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	for i := range msgs {
		if msgs[i].BackfillID() {
			log.Printf("store: backfilled id for legacy message %q", msgs[i].Preview(24))
		}
	}

	s.mu.Lock()
	s.messages = msgs
	s.mu.Unlock()
	return nil
}

// ClearSnapshot removes the durable snapshot.
func (s *Store) ClearSnapshot() error {
	return s.snap.Clear()
}

// =============================================================================
// TRANSCRIPT EXPORT
// =============================================================================

// ExportMarkdown renders the transcript as Markdown, oldest turn first.
func (s *Store) ExportMarkdown() string {
	msgs := s.Messages()

	var sb strings.Builder
	sb.WriteString("# voxchat transcript\n\n")
	sb.WriteString("Exported: " + time.Now().Format(time.RFC3339) + "\n\n---\n\n")

	// Display order is newest first; export reads top to bottom.
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		label := "**Assistant**"
		switch {
		case msg.IsUser:
			label = "**You**"
		case msg.Notice:
			label = "**Notice**"
		}
		sb.WriteString(label + " (" + msg.CreatedAt.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}
