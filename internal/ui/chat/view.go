// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/util"
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Starting voxchat..."
	}

	var b strings.Builder
	b.WriteString(m.theme.Header.Width(m.width).Render("voxchat"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.inputView())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	return b.String()
}

// refreshTranscript re-renders the message list into the viewport and
// pins the scroll position to the newest message.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// renderTranscript renders the transcript oldest-first for reading order.
// The store keeps messages newest-first for display lists; the terminal
// wants chronology top to bottom.
func (m *Model) renderTranscript() string {
	msgs := m.store.Messages()
	if len(msgs) == 0 {
		return m.theme.Timestamp.Render("No messages yet. Say hello!")
	}

	var parts []string
	for i := len(msgs) - 1; i >= 0; i-- {
		parts = append(parts, m.renderMessage(msgs[i]))
	}
	return strings.Join(parts, "\n")
}

// renderMessage renders one transcript entry as a labeled bubble.
func (m *Model) renderMessage(msg model.Message) string {
	if msg.Notice {
		return m.theme.NoticeBubble.Render("• " + msg.Text)
	}

	var label, body string
	if msg.IsUser {
		label = m.theme.UserLabel.Render("You")
		body = m.theme.UserBubble.Render(msg.Text)
	} else {
		label = m.theme.AssistantLabel.Render("Assistant")
		body = m.theme.AssistantBubble.Render(m.renderMarkdown(msg.Text))
	}

	if m.showTimestamps {
		label += " " + m.theme.Timestamp.Render(msg.CreatedAt.Local().Format("15:04"))
	}
	return label + "\n" + body
}

// renderMarkdown renders assistant text through glamour, falling back to
// the raw text when rendering fails.
func (m *Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// inputView renders the input row: the text field, the listening
// indicator, or the spinner while a reply is pending.
func (m *Model) inputView() string {
	switch {
	case m.confirmingClear:
		return m.theme.InputContainer.Width(m.width - 2).Render(
			m.theme.ConfirmText.Render("Clear the conversation? (y/n)"))
	case m.voice == VoiceListening:
		return m.theme.InputContainer.Width(m.width - 2).Render(
			m.theme.Listening.Render("● Listening..."))
	case m.sending():
		return m.theme.InputContainer.Width(m.width - 2).Render(
			m.spinner.View() + " Waiting for a reply...")
	default:
		return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
	}
}

// statusView renders the bottom bar: a transient status when present,
// otherwise the shortcut hints.
func (m *Model) statusView() string {
	if m.status != "" {
		return m.theme.StatusBar.Width(m.width).Render(util.TruncateWidth(m.status, m.width-2))
	}

	hints := []string{
		m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" send"),
		m.theme.ShortcutKey.Render("ctrl+r") + m.theme.ShortcutDesc.Render(" voice"),
		m.theme.ShortcutKey.Render("ctrl+s") + m.theme.ShortcutDesc.Render(" speak"),
		m.theme.ShortcutKey.Render("ctrl+l") + m.theme.ShortcutDesc.Render(" clear"),
		m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" quit"),
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(hints, lipgloss.NewStyle().Render("  ")))
}
