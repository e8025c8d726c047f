// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/util"
)

// =============================================================================
// FILE SNAPSHOT
// =============================================================================

// FileSnapshot persists the message list as a single JSON document.
// Writes are atomic (temp file + fsync + rename) so a crash leaves either
// the previous snapshot or the complete new one.
type FileSnapshot struct {
	Path string
}

// NewFileSnapshot creates a file-backed snapshot at the given path.
func NewFileSnapshot(path string) *FileSnapshot {
	return &FileSnapshot{Path: path}
}

// Save overwrites the snapshot with the full message list.
func (f *FileSnapshot) Save(messages []model.Message) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}
	if err := util.AtomicWriteFile(f.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot if one exists.
func (f *FileSnapshot) Load() ([]model.Message, bool, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var messages []model.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return messages, true, nil
}

// Clear removes the snapshot file. A missing file is not an error.
func (f *FileSnapshot) Clear() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}
