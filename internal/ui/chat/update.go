// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/voxchat-tui/internal/session"
	"github.com/jeranaias/voxchat-tui/internal/speech"
)

const statusLifetime = 4 * time.Second

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		model, cmd := m.handleKey(msg)
		return model, cmd

	case spinner.TickMsg:
		if m.sending() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case ReplyMsg:
		m.refreshTranscript()
		if !msg.Message.Notice {
			cmds = append(cmds, m.speakCmd(msg.Message.Text))
		}

	case PersistErrorMsg:
		cmds = append(cmds, m.setStatus("Could not save the conversation: "+msg.Err.Error()))

	case RecognizedMsg:
		m.voice = VoiceIdle
		switch {
		case msg.Err != nil && !errors.Is(msg.Err, speech.ErrDisabled):
			cmds = append(cmds, m.setStatus("Voice capture failed."))
		case msg.Text != "":
			m.input.SetValue(msg.Text)
		}

	case SpokenMsg:
		m.speaking = false
		if msg.Err != nil && !errors.Is(msg.Err, speech.ErrDisabled) {
			cmds = append(cmds, m.setStatus("Could not play the reply."))
		}

	case clearStatusMsg:
		m.status = ""
	}

	if m.voice == VoiceIdle && !m.confirmingClear {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey routes keyboard input.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Inline clear confirmation swallows everything except y/n/esc
	if m.confirmingClear {
		switch msg.String() {
		case "y", "Y":
			m.confirmingClear = false
			if err := m.ctrl.Clear(nil); err != nil {
				return m, m.setStatus("Could not clear the conversation.")
			}
			m.refreshTranscript()
		case "n", "N", "esc":
			m.confirmingClear = false
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		m.ctrl.Flush()
		return m, tea.Quit

	case "enter":
		return m, m.submit()

	case "ctrl+l":
		if m.store.Len() > 0 {
			m.confirmingClear = true
		}
		return m, nil

	case "ctrl+r":
		if m.voice == VoiceListening {
			return m, nil
		}
		m.voice = VoiceListening
		return m, m.listenCmd()

	case "ctrl+s":
		return m, m.speakNewestReply()

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input text to the controller.
func (m *Model) submit() tea.Cmd {
	text := m.input.Value()

	err := m.ctrl.Submit(text)
	switch {
	case err == nil:
		m.input.Reset()
		m.refreshTranscript()
		return m.spinner.Tick
	case errors.Is(err, session.ErrRateLimited):
		// The controller already appended the explanatory notice
		m.refreshTranscript()
		return nil
	case errors.Is(err, session.ErrBusy):
		return m.setStatus("Still waiting on the previous reply.")
	default:
		return nil
	}
}

// listenCmd runs one voice capture in the background.
func (m *Model) listenCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		text, err := m.recognizer.Recognize(ctx)
		return RecognizedMsg{Text: text, Err: err}
	}
}

// speakCmd vocalizes text in the background.
func (m *Model) speakCmd(text string) tea.Cmd {
	m.speaking = true
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return SpokenMsg{Err: m.speaker.Speak(ctx, text)}
	}
}

// speakNewestReply speaks the most recent assistant message, if any.
func (m *Model) speakNewestReply() tea.Cmd {
	for _, msg := range m.store.Messages() {
		if !msg.IsUser && !msg.Notice {
			return m.speakCmd(msg.Text)
		}
	}
	return nil
}

// setStatus shows a transient status line.
func (m *Model) setStatus(text string) tea.Cmd {
	m.status = text
	return tea.Tick(statusLifetime, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// resize lays the screen out for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 1
	inputHeight := 3
	statusHeight := 1
	vpHeight := height - headerHeight - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}

	wrap := width - 6
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		m.renderer = renderer
	}

	m.input.Width = width - 6
	m.refreshTranscript()
}
