// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/jeranaias/voxchat-tui/internal/model"
)

// =============================================================================
// SQLITE SNAPSHOT
// =============================================================================

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	position   INTEGER NOT NULL,
	id         TEXT NOT NULL,
	text       TEXT NOT NULL,
	is_user    INTEGER NOT NULL,
	notice     INTEGER NOT NULL,
	created_at DATETIME NOT NULL
)
`

// messageRow maps a transcript message onto the messages table.
type messageRow struct {
	Position  int       `db:"position"`
	ID        string    `db:"id"`
	Text      string    `db:"text"`
	IsUser    bool      `db:"is_user"`
	Notice    bool      `db:"notice"`
	CreatedAt time.Time `db:"created_at"`
}

// SQLiteSnapshot persists the message list in a local sqlite database.
// Save replaces the table contents in one transaction, matching the
// overwrite semantics of the file backend.
type SQLiteSnapshot struct {
	db *sqlx.DB
}

// NewSQLiteSnapshot opens (creating if needed) the database at the given
// path and ensures the messages table exists.
func NewSQLiteSnapshot(path string) (*SQLiteSnapshot, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(createMessagesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create messages table: %w", err)
	}
	return &SQLiteSnapshot{db: db}, nil
}

// Save replaces the stored message list with the given one.
func (s *SQLiteSnapshot) Save(messages []model.Message) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return fmt.Errorf("failed to clear messages table: %w", err)
	}

	const insert = `INSERT INTO messages (position, id, text, is_user, notice, created_at)
		VALUES (:position, :id, :text, :is_user, :notice, :created_at)`
	for i, msg := range messages {
		row := messageRow{
			Position:  i,
			ID:        msg.ID,
			Text:      msg.Text,
			IsUser:    msg.IsUser,
			Notice:    msg.Notice,
			CreatedAt: msg.CreatedAt,
		}
		if _, err := tx.NamedExec(insert, row); err != nil {
			return fmt.Errorf("failed to insert message %s: %w", msg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Load reads the stored message list, newest first (position order).
func (s *SQLiteSnapshot) Load() ([]model.Message, bool, error) {
	var rows []messageRow
	err := s.db.Select(&rows, "SELECT position, id, text, is_user, notice, created_at FROM messages ORDER BY position ASC")
	if err != nil {
		return nil, false, fmt.Errorf("failed to read messages: %w", err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	messages := make([]model.Message, len(rows))
	for i, row := range rows {
		messages[i] = model.Message{
			ID:        row.ID,
			Text:      row.Text,
			IsUser:    row.IsUser,
			Notice:    row.Notice,
			CreatedAt: row.CreatedAt,
		}
	}
	return messages, true, nil
}

// Clear removes all stored messages.
func (s *SQLiteSnapshot) Clear() error {
	if _, err := s.db.Exec("DELETE FROM messages"); err != nil {
		return fmt.Errorf("failed to clear messages table: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteSnapshot) Close() error {
	return s.db.Close()
}
