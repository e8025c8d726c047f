// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"testing"
	"time"
)

func TestGate_FirstSendAllowed(t *testing.T) {
	g := NewGate(3 * time.Second)
	if !g.TryAcquire(time.Now()) {
		t.Error("first send should always be allowed")
	}
}

func TestGate_DenyWithinInterval(t *testing.T) {
	g := NewGate(3 * time.Second)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !g.TryAcquire(base) {
		t.Fatal("first acquire should be allowed")
	}
	g.Record(base)

	// Everything under 3s after the accepted send is denied
	for _, d := range []time.Duration{0, time.Second, 2999 * time.Millisecond} {
		if g.TryAcquire(base.Add(d)) {
			t.Errorf("send at +%v should be denied", d)
		}
	}

	if !g.TryAcquire(base.Add(3 * time.Second)) {
		t.Error("send at exactly the interval should be allowed")
	}
}

func TestGate_DenialDoesNotAdvanceState(t *testing.T) {
	g := NewGate(3 * time.Second)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g.Record(base)

	// A burst of denied attempts must not push the window forward
	for i := 1; i <= 5; i++ {
		g.TryAcquire(base.Add(time.Duration(i) * 500 * time.Millisecond))
	}

	if !g.TryAcquire(base.Add(3 * time.Second)) {
		t.Error("denials must not reset the interval")
	}
}

func TestGate_Remaining(t *testing.T) {
	g := NewGate(3 * time.Second)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if g.Remaining(base) != 0 {
		t.Error("remaining should be zero before any send")
	}

	g.Record(base)
	if got := g.Remaining(base.Add(time.Second)); got != 2*time.Second {
		t.Errorf("Remaining = %v, want 2s", got)
	}
	if got := g.Remaining(base.Add(time.Minute)); got != 0 {
		t.Errorf("Remaining long after = %v, want 0", got)
	}
}

func TestNewGate_DefaultInterval(t *testing.T) {
	g := NewGate(0)
	if g.MinInterval() != DefaultMinInterval {
		t.Errorf("MinInterval = %v, want %v", g.MinInterval(), DefaultMinInterval)
	}
}
