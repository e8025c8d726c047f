// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - line-based REPL for terminals where the full-screen TUI is
// unwanted (ssh sessions, scripts, screen readers).
//
// Interactive commands:
//   /help, /h      Show available commands
//   /clear, /c     Clear the conversation
//   /history       Print the conversation so far
//   /export FILE   Write the transcript as markdown
//   /quit, /q      Exit
//   Ctrl+D         Exit
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/voxchat-tui/internal/config"
	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/session"
	"github.com/jeranaias/voxchat-tui/internal/store"
	"github.com/jeranaias/voxchat-tui/internal/ui/styles"
	"github.com/jeranaias/voxchat-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	noticeStyle = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Italic(true)

	replyStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)
)

// =============================================================================
// REPL
// =============================================================================

// replCLI provides input history and line editing for the chat command.
type replCLI struct {
	line        *liner.State
	historyFile string
}

func newReplCLI() *replCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	return &replCLI{line: line, historyFile: historyFile}
}

func (r *replCLI) close() {
	if f, err := os.Create(r.historyFile); err == nil {
		r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// RunChat runs the line-based chat loop until the user exits.
func RunChat(ctrl *session.Controller, st *store.Store, quiet bool) error {
	repl := newReplCLI()
	defer repl.close()

	if !quiet {
		fmt.Println(welcomeStyle.Render("voxchat") + infoStyle.Render("  /help for commands, /quit to exit"))
	}

	// The controller delivers replies asynchronously; the REPL waits for
	// each one before prompting again.
	replies := make(chan model.Message, 1)
	ctrl.OnReply = func(msg model.Message) {
		replies <- msg
	}

	for {
		input, err := repl.line.Prompt(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			// io.EOF on Ctrl+D
			fmt.Println()
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		repl.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if done := runSlashCommand(input, ctrl, st); done {
				break
			}
			continue
		}

		if err := ctrl.Submit(input); err != nil {
			switch {
			case errors.Is(err, session.ErrRateLimited):
				if head := st.Messages(); len(head) > 0 {
					fmt.Println(noticeStyle.Render("• " + head[0].Text))
				}
			default:
				fmt.Println(noticeStyle.Render("• " + err.Error()))
			}
			continue
		}

		msg := <-replies
		if msg.Notice {
			fmt.Println(noticeStyle.Render("• " + msg.Text))
		} else {
			fmt.Println(replyStyle.Render(msg.Text))
		}
	}

	ctrl.Flush()
	return nil
}

// runSlashCommand executes an interactive /command. Returns true when
// the REPL should exit.
func runSlashCommand(input string, ctrl *session.Controller, st *store.Store) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Println(infoStyle.Render(`Commands:
  /clear, /c     Clear the conversation
  /history       Print the conversation so far
  /export FILE   Write the transcript as markdown
  /quit, /q      Exit`))

	case "/clear", "/c":
		err := ctrl.Clear(func() bool {
			fmt.Print(noticeStyle.Render("Clear the conversation? [y/N] "))
			var answer string
			fmt.Scanln(&answer)
			return strings.EqualFold(strings.TrimSpace(answer), "y")
		})
		if err != nil {
			fmt.Println(noticeStyle.Render("• " + err.Error()))
		}

	case "/history":
		msgs := st.Messages()
		for i := len(msgs) - 1; i >= 0; i-- {
			m := msgs[i]
			switch {
			case m.Notice:
				fmt.Println(noticeStyle.Render("• " + m.Text))
			case m.IsUser:
				fmt.Println(promptStyle.Render("you> ") + m.Text)
			default:
				fmt.Println(replyStyle.Render(m.Text))
			}
		}

	case "/export":
		if len(fields) < 2 {
			fmt.Println(noticeStyle.Render("• usage: /export FILE"))
			break
		}
		if err := util.AtomicWriteFile(fields[1], []byte(st.ExportMarkdown()), 0600); err != nil {
			fmt.Println(noticeStyle.Render("• export failed: " + err.Error()))
		} else {
			fmt.Println(infoStyle.Render("exported to " + fields[1]))
		}

	default:
		fmt.Println(noticeStyle.Render("• unknown command " + fields[0] + " (try /help)"))
	}
	return false
}
