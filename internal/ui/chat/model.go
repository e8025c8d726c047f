// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea model for the voxchat screen:
// a scrolling transcript, a text input with a typing indicator, and the
// voice capture / speak shortcuts.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/voxchat-tui/internal/session"
	"github.com/jeranaias/voxchat-tui/internal/speech"
	"github.com/jeranaias/voxchat-tui/internal/store"
	"github.com/jeranaias/voxchat-tui/internal/ui/styles"
)

// =============================================================================
// VOICE STATE
// =============================================================================

// VoiceState is the microphone state shown next to the input.
type VoiceState int

const (
	// VoiceIdle means the input field owns the keyboard.
	VoiceIdle VoiceState = iota
	// VoiceListening means a capture command is running.
	VoiceListening
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctrl       *session.Controller
	store      *store.Store
	recognizer speech.Recognizer
	speaker    speech.Speaker
	theme      *styles.Theme

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	voice           VoiceState
	confirmingClear bool
	speaking        bool
	status          string

	showTimestamps bool
}

// Options configures the chat model.
type Options struct {
	Controller     *session.Controller
	Store          *store.Store
	Recognizer     speech.Recognizer
	Speaker        speech.Speaker
	ShowTimestamps bool
}

// New creates the chat model.
func New(opts Options) *Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	recognizer := opts.Recognizer
	if recognizer == nil {
		recognizer = speech.NoopRecognizer{}
	}
	speaker := opts.Speaker
	if speaker == nil {
		speaker = speech.NoopSpeaker{}
	}

	return &Model{
		ctrl:           opts.Controller,
		store:          opts.Store,
		recognizer:     recognizer,
		speaker:        speaker,
		theme:          theme,
		input:          input,
		spinner:        sp,
		showTimestamps: opts.ShowTimestamps,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// sending reports whether a completion is in flight.
func (m *Model) sending() bool {
	return m.ctrl.State() == session.StateSending
}
