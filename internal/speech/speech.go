// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech provides the voice input/output collaborators.
//
// Both sides are pluggable external commands so any local recognizer or
// synthesizer works: the recognize command prints one utterance on
// stdout, the speak command reads text on stdin. Empty commands yield
// no-op implementations and the chat degrades to text only.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// =============================================================================
// INTERFACES
// =============================================================================

// Recognizer captures a single utterance and returns the recognized text.
type Recognizer interface {
	// Recognize blocks until one utterance is captured or ctx is done.
	// An empty string with nil error means nothing was heard.
	Recognize(ctx context.Context) (string, error)
}

// Speaker vocalizes assistant replies.
type Speaker interface {
	// Speak blocks until the text has been spoken or ctx is done.
	Speak(ctx context.Context, text string) error
}

// ErrDisabled is returned by the no-op implementations.
var ErrDisabled = errors.New("speech is not configured")

// =============================================================================
// NO-OP IMPLEMENTATIONS
// =============================================================================

// NoopRecognizer is used when no recognize command is configured.
type NoopRecognizer struct{}

func (NoopRecognizer) Recognize(context.Context) (string, error) { return "", ErrDisabled }

// NoopSpeaker is used when no speak command is configured.
type NoopSpeaker struct{}

func (NoopSpeaker) Speak(context.Context, string) error { return ErrDisabled }

// =============================================================================
// COMMAND-BACKED IMPLEMENTATIONS
// =============================================================================

// CommandRecognizer runs an external command and treats its stdout as the
// recognized utterance.
type CommandRecognizer struct {
	Command []string
}

// NewRecognizer returns a command-backed recognizer, or the no-op when
// the command is empty.
func NewRecognizer(command []string) Recognizer {
	if len(command) == 0 {
		return NoopRecognizer{}
	}
	return &CommandRecognizer{Command: command}
}

func (r *CommandRecognizer) Recognize(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("recognizer failed: %s: %w", msg, err)
		}
		return "", fmt.Errorf("recognizer failed: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CommandSpeaker pipes text to an external command's stdin.
type CommandSpeaker struct {
	Command []string
}

// NewSpeaker returns a command-backed speaker, or the no-op when the
// command is empty.
func NewSpeaker(command []string) Speaker {
	if len(command) == 0 {
		return NoopSpeaker{}
	}
	return &CommandSpeaker{Command: command}
}

func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, s.Command[0], s.Command[1:]...)
	cmd.Stdin = strings.NewReader(text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("speaker failed: %s: %w", msg, err)
		}
		return fmt.Errorf("speaker failed: %w", err)
	}
	return nil
}
