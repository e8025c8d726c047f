// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// voxchat is a voice-enabled chat assistant for the terminal.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/jeranaias/voxchat-tui/internal/cli"
	"github.com/jeranaias/voxchat-tui/internal/client"
	"github.com/jeranaias/voxchat-tui/internal/config"
	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/ratelimit"
	"github.com/jeranaias/voxchat-tui/internal/session"
	"github.com/jeranaias/voxchat-tui/internal/speech"
	"github.com/jeranaias/voxchat-tui/internal/store"
	"github.com/jeranaias/voxchat-tui/internal/ui/chat"
)

func main() {
	// A local .env is a convenience for development; absence is normal.
	_ = godotenv.Load()

	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "voxchat:", err)
		os.Exit(2)
	}

	switch args.Command {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "voxchat: bad configuration:", err)
		os.Exit(1)
	}
	if args.Model != "" {
		cfg.API.Model = args.Model
	}

	if cfg.API.Key == "" {
		fmt.Fprintln(os.Stderr, "voxchat: no API key configured.")
		fmt.Fprintln(os.Stderr, "Set VOXCHAT_API_KEY (or api.key in ~/.voxchat/config.toml) and try again.")
		os.Exit(1)
	}

	setupLogging()

	if err := run(args, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "voxchat:", err)
		os.Exit(1)
	}
}

// setupLogging sends the standard logger to a file under the config
// directory. The terminal belongs to the UI.
func setupLogging() {
	if err := config.EnsureConfigDir(); err != nil {
		log.SetOutput(io.Discard)
		return
	}
	dir, err := config.ConfigDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "voxchat.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
}

// run builds the session and dispatches the chosen command.
func run(args *cli.Args, cfg *config.Config) error {
	completionClient := client.New(client.Options{
		APIKey:      cfg.API.Key,
		BaseURL:     cfg.API.BaseURL,
		Model:       cfg.API.Model,
		Temperature: cfg.Chat.Temperature,
		TopP:        cfg.Chat.TopP,
		MaxTokens:   cfg.Chat.MaxTokens,
		Timeout:     cfg.Timeout(),
	})

	if args.Command == cli.CmdAsk {
		return cli.RunAsk(completionClient, cfg.Chat.SystemPrompt, args.Query, cfg.Timeout())
	}

	snap, closeSnap, err := openSnapshot(cfg)
	if err != nil {
		return err
	}
	defer closeSnap()

	st := store.New(snap)
	if err := st.Load(); err != nil {
		// A corrupt snapshot should not brick the app
		log.Printf("[main] could not load previous conversation: %v", err)
	}

	ctrl := session.NewController(session.Options{
		Store:     st,
		History:   model.NewHistory(cfg.Chat.SystemPrompt, cfg.Chat.HistoryWindow),
		Gate:      ratelimit.NewGate(cfg.MinSendInterval()),
		Completer: completionClient,
		Timeout:   cfg.Timeout(),
	})
	defer ctrl.Flush()

	if args.Command == cli.CmdChat {
		return cli.RunChat(ctrl, st, args.Quiet)
	}

	return runTUI(cfg, ctrl, st)
}

// openSnapshot builds the configured persistence backend.
func openSnapshot(cfg *config.Config) (store.Snapshot, func(), error) {
	path, err := cfg.SnapshotPath()
	if err != nil {
		return nil, nil, err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return nil, nil, err
	}

	if cfg.Persistence.Backend == "sqlite" {
		snap, err := store.NewSQLiteSnapshot(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open conversation database: %w", err)
		}
		return snap, func() { snap.Close() }, nil
	}
	return store.NewFileSnapshot(path), func() {}, nil
}

// runTUI starts the full-screen chat.
func runTUI(cfg *config.Config, ctrl *session.Controller, st *store.Store) error {
	m := chat.New(chat.Options{
		Controller:     ctrl,
		Store:          st,
		Recognizer:     speech.NewRecognizer(cfg.Speech.RecognizeCommand),
		Speaker:        speech.NewSpeaker(cfg.Speech.SpeakCommand),
		ShowTimestamps: cfg.UI.ShowTimestamps,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Bridge the controller's callbacks into the Bubble Tea event loop.
	ctrl.OnReply = func(msg model.Message) {
		p.Send(chat.ReplyMsg{Message: msg})
	}
	ctrl.OnPersistError = func(err error) {
		log.Printf("[main] persistence failed: %v", err)
		p.Send(chat.PersistErrorMsg{Err: err})
	}

	start := time.Now()
	_, err := p.Run()
	log.Printf("[main] session ended after %s", time.Since(start).Round(time.Second))
	return err
}
