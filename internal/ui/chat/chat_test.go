// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/ratelimit"
	"github.com/jeranaias/voxchat-tui/internal/session"
	"github.com/jeranaias/voxchat-tui/internal/store"
)

type stubCompleter struct{ reply string }

func (s stubCompleter) Complete(context.Context, []model.HistoryEntry) (string, error) {
	return s.reply, nil
}

func newTestModel(t *testing.T) (*Model, *store.Store, *session.Controller) {
	t.Helper()
	st := store.New(store.NewFileSnapshot(filepath.Join(t.TempDir(), "messages.json")))
	ctrl := session.NewController(session.Options{
		Store:     st,
		History:   model.NewHistory("persona", 50),
		Gate:      ratelimit.NewGate(time.Millisecond),
		Completer: stubCompleter{reply: "Hi there!"},
		Timeout:   time.Second,
	})
	m := New(Options{Controller: ctrl, Store: st})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, st, ctrl
}

func TestRenderTranscript_OldestFirst(t *testing.T) {
	m, st, _ := newTestModel(t)
	st.Append(model.NewUserMessage("first question"))
	st.Append(model.NewAssistantMessage("second answer"))

	out := m.renderTranscript()

	q := strings.Index(out, "first question")
	a := strings.Index(out, "second answer")
	if q == -1 || a == -1 {
		t.Fatalf("transcript missing messages:\n%s", out)
	}
	if q > a {
		t.Error("older message should render above the newer one")
	}
}

func TestRenderTranscript_Empty(t *testing.T) {
	m, _, _ := newTestModel(t)
	if !strings.Contains(m.renderTranscript(), "No messages yet") {
		t.Error("empty transcript should show the placeholder")
	}
}

func TestSubmit_ClearsInputAndStartsSpinner(t *testing.T) {
	m, _, ctrl := newTestModel(t)
	m.input.SetValue("Hello!")

	cmd := m.submit()
	ctrl.Flush()

	if m.input.Value() != "" {
		t.Error("input should be cleared on an accepted submit")
	}
	if cmd == nil {
		t.Error("an accepted submit should start the spinner tick")
	}
}

func TestSubmit_EmptyInputIsNoop(t *testing.T) {
	m, st, _ := newTestModel(t)
	m.input.SetValue("   ")

	if cmd := m.submit(); cmd != nil {
		t.Error("blank input should do nothing")
	}
	if st.Len() != 0 {
		t.Error("blank input must not reach the transcript")
	}
}

func TestRecognizedMsg_FillsInput(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.voice = VoiceListening

	m.Update(RecognizedMsg{Text: "hello from the microphone"})

	if m.voice != VoiceIdle {
		t.Error("voice state should return to idle")
	}
	if m.input.Value() != "hello from the microphone" {
		t.Errorf("input = %q", m.input.Value())
	}
}

func TestClearConfirmation(t *testing.T) {
	m, st, ctrl := newTestModel(t)
	m.input.SetValue("Hello!")
	m.submit()
	ctrl.Flush()
	if st.Len() == 0 {
		t.Fatal("setup: transcript should have messages")
	}

	// ctrl+l arms the confirmation
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlL})
	if !m.confirmingClear {
		t.Fatal("ctrl+l should ask for confirmation")
	}

	// n declines
	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if m.confirmingClear || st.Len() == 0 {
		t.Fatal("declining should keep the transcript")
	}

	// y clears
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlL})
	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	if st.Len() != 0 {
		t.Error("confirming should empty the transcript")
	}
}

func TestStatusLine(t *testing.T) {
	m, _, _ := newTestModel(t)

	cmd := m.setStatus("something happened")
	if cmd == nil {
		t.Fatal("setStatus should schedule its own expiry")
	}
	if !strings.Contains(m.statusView(), "something happened") {
		t.Error("status bar should show the transient status")
	}

	m.Update(clearStatusMsg{})
	if strings.Contains(m.statusView(), "something happened") {
		t.Error("status should clear")
	}
}
