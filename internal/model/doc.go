// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript and
// the conversation history sent to the completion service.
//
// The two lists are deliberately separate:
//
//   - Message is a display bubble. Notices (rate-limit warnings, errors)
//     are display-only messages that never reach the remote model.
//   - HistoryEntry is a role-tagged turn in the payload sent to the
//     completion service. History always starts with the system persona
//     entry and is managed by History.
//
// # Key Types
//
//   - Message: an immutable chat bubble with a stable id
//   - History: the builder for the role/content list, with an optional
//     sliding window to bound growth
package model
