// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - one-shot question handler.
//
// Examples:
//   voxchat ask "what is a goroutine?"
//   voxchat ask -m gpt-4o "summarize this design"
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/voxchat-tui/internal/client"
	"github.com/jeranaias/voxchat-tui/internal/model"
)

// RunAsk sends one question and prints the reply to stdout. No
// transcript is recorded and no rate gate applies; the client's own
// pacing is the only throttle.
func RunAsk(c *client.Client, persona, query string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	history := []model.HistoryEntry{
		{Role: model.RoleSystem, Content: persona},
		{Role: model.RoleUser, Content: query},
	}

	reply, err := c.Complete(ctx, history)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	fmt.Println(reply)
	return nil
}
