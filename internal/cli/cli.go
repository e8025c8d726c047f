// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses voxchat's command line and hosts the non-TUI
// command handlers.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	// CmdTUI launches the full-screen chat (the default).
	CmdTUI Command = iota
	// CmdChat starts the line-based REPL.
	CmdChat
	// CmdAsk sends a single question and prints the reply.
	CmdAsk
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Query is the question text for the ask command.
	Query string

	// Model overrides the configured completion model.
	Model string

	// Quiet suppresses the REPL banner.
	Quiet bool
}

// Parse interprets os.Args-style arguments (without the program name).
func Parse(argv []string) (*Args, error) {
	args := &Args{Command: CmdTUI}

	var positional []string
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-h" || arg == "--help":
			args.Command = CmdHelp
			return args, nil
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "-m" || arg == "--model":
			if i+1 >= len(argv) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			args.Model = argv[i]
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown flag %q", arg)
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		return args, nil
	}

	switch positional[0] {
	case "chat":
		args.Command = CmdChat
	case "ask":
		args.Command = CmdAsk
		if len(positional) < 2 {
			return nil, fmt.Errorf("ask requires a question, e.g. voxchat ask \"hello\"")
		}
		args.Query = strings.Join(positional[1:], " ")
	case "version":
		args.Command = CmdVersion
	case "help":
		args.Command = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command %q (try voxchat help)", positional[0])
	}
	return args, nil
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("voxchat %s (%s, %s, %s/%s)\n", Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// PrintUsage writes usage to stdout.
func PrintUsage() {
	fmt.Fprintln(os.Stdout, `voxchat - a voice-enabled chat assistant for your terminal

Usage:
  voxchat                 Launch the full-screen chat
  voxchat chat            Start a line-based chat session
  voxchat ask "question"  Ask one question and print the reply
  voxchat version         Show version information
  voxchat help            Show this help

Flags:
  -m, --model NAME        Override the configured model
  -q, --quiet             Suppress the chat banner
  -h, --help              Show this help

Environment:
  VOXCHAT_API_KEY         API key for the completion service (required)
  VOXCHAT_API_BASE_URL    Override the API base URL
  VOXCHAT_MODEL           Override the configured model
  VOXCHAT_PERSISTENCE     Snapshot backend: file or sqlite

Configuration lives at ~/.voxchat/config.toml.`)
}
