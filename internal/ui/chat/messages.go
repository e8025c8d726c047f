// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/jeranaias/voxchat-tui/internal/model"

// =============================================================================
// MESSAGE TYPES
// =============================================================================
// Bubble Tea messages delivered to the chat model. ReplyMsg and
// PersistErrorMsg arrive from outside the event loop via Program.Send,
// bridged from the session controller's callbacks.

// ReplyMsg carries a settled completion outcome: the assistant reply or
// the failure notice that was appended to the transcript.
type ReplyMsg struct {
	Message model.Message
}

// PersistErrorMsg reports a failed background snapshot write.
type PersistErrorMsg struct {
	Err error
}

// RecognizedMsg carries the result of a voice capture.
type RecognizedMsg struct {
	Text string
	Err  error
}

// SpokenMsg reports that speaking a reply finished.
type SpokenMsg struct {
	Err error
}

// clearStatusMsg clears the transient status line.
type clearStatusMsg struct{}
