// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ratelimit guards outgoing completion requests with a minimum
// spacing between accepted sends.
package ratelimit

import "time"

// DefaultMinInterval is the minimum spacing between accepted sends.
const DefaultMinInterval = 3 * time.Second

// Gate enforces a minimum interval between accepted sends.
//
// TryAcquire never mutates state: on an allowed send the caller records
// the accepted time explicitly with Record. The gate is single-threaded
// by contract — the session controller allows only one send in flight.
type Gate struct {
	minInterval time.Duration
	last        time.Time
	hasLast     bool
}

// NewGate creates a gate with the given minimum interval. A non-positive
// interval falls back to DefaultMinInterval.
func NewGate(minInterval time.Duration) *Gate {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Gate{minInterval: minInterval}
}

// TryAcquire reports whether a send at the given instant is allowed.
// It is allowed when no send was ever accepted, or when the elapsed time
// since the last accepted send is at least the minimum interval.
// Denial does not advance any internal state.
func (g *Gate) TryAcquire(now time.Time) bool {
	if !g.hasLast {
		return true
	}
	return now.Sub(g.last) >= g.minInterval
}

// Record marks now as the last accepted send time. Callers invoke it
// exactly once per allowed TryAcquire.
func (g *Gate) Record(now time.Time) {
	g.last = now
	g.hasLast = true
}

// Remaining returns how long until the next send would be allowed.
// Zero means a send is allowed now.
func (g *Gate) Remaining(now time.Time) time.Duration {
	if !g.hasLast {
		return 0
	}
	remaining := g.minInterval - now.Sub(g.last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MinInterval returns the configured minimum interval.
func (g *Gate) MinInterval() time.Duration {
	return g.minInterval
}
