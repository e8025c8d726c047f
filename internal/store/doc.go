// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the in-memory message list and its durable
// persistence for voxchat.
//
// The Store holds the display transcript (newest first) and delegates
// durability to a Snapshot backend. Two backends are available:
//
//   - FileSnapshot: a single JSON document written atomically
//   - SQLiteSnapshot: a messages table in a local sqlite database
//
// Persistence is best-effort: the in-memory list is the source of truth
// for the running session, and snapshot failures never interrupt the
// conversational flow.
package store
