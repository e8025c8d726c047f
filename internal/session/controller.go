// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session coordinates the chat session: the display transcript,
// the conversation history sent to the model, the send rate gate, and
// the completion client.
//
// The controller is the single writer of session state. At most one
// completion is in flight; the Sending state is the authoritative guard.
// Persistence runs on background goroutines and never gates a state
// transition; its failures surface through OnPersistError.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/voxchat-tui/internal/client"
	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/ratelimit"
	"github.com/jeranaias/voxchat-tui/internal/store"
)

// =============================================================================
// STATE AND ERRORS
// =============================================================================

// State is the controller's send state.
type State int

const (
	// StateIdle means no completion is in flight; submits are accepted.
	StateIdle State = iota
	// StateSending means a completion is in flight; submits are rejected.
	StateSending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrEmptyMessage reports a submit with no visible text.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy reports a submit or clear while a completion is in flight.
	ErrBusy = errors.New("a reply is already in progress")
	// ErrRateLimited reports a submit denied by the send gate. The
	// controller has already appended an explanatory notice.
	ErrRateLimited = errors.New("sending too fast")
)

// Notice texts shown in the transcript. The rate-limit one names the
// actual interval at construction time.
const (
	noticeNoCredential = "No API key configured. Set VOXCHAT_API_KEY and restart."
	noticeTransport    = "Could not reach the assistant. Check your connection and try again."
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Completer is the completion client as the controller sees it.
type Completer interface {
	Complete(ctx context.Context, history []model.HistoryEntry) (string, error)
}

// Options wires the controller's collaborators.
type Options struct {
	Store     *store.Store
	History   *model.History
	Gate      *ratelimit.Gate
	Completer Completer

	// Timeout bounds a single completion call.
	Timeout time.Duration

	// Now is the clock, injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// Controller owns the session state machine.
type Controller struct {
	mu    sync.Mutex
	state State

	store     *store.Store
	history   *model.History
	gate      *ratelimit.Gate
	completer Completer
	timeout   time.Duration
	now       func() time.Time

	// persists tracks in-flight snapshot writes so Flush can drain them.
	persists sync.WaitGroup
	// sends tracks the in-flight completion goroutine.
	sends sync.WaitGroup

	// OnReply fires after a completion attempt settles, with the message
	// that was appended (the assistant reply or the failure notice).
	OnReply func(msg model.Message)
	// OnPersistError fires when a background snapshot write fails.
	OnPersistError func(err error)
}

// NewController creates a session controller. The history is reset so
// the persona entry is in place before the first submit.
func NewController(opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = client.DefaultTimeout
	}
	opts.History.Reset()
	return &Controller{
		store:     opts.Store,
		history:   opts.History,
		gate:      opts.Gate,
		completer: opts.Completer,
		timeout:   timeout,
		now:       now,
	}
}

// State returns the current send state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit runs the send pipeline for one user turn. On acceptance the
// user message is visible immediately, the state moves to Sending, and
// the completion runs on a background goroutine; the outcome arrives via
// OnReply. The returned error reports only synchronous rejections.
func (c *Controller) Submit(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state == StateSending {
		c.mu.Unlock()
		return ErrBusy
	}

	now := c.now()
	if !c.gate.TryAcquire(now) {
		remaining := c.gate.Remaining(now).Round(time.Second)
		notice := model.NewNotice(fmt.Sprintf("You're sending messages too quickly. Try again in %s.", remaining))
		c.store.Append(notice)
		c.mu.Unlock()

		c.persistAsync()
		return ErrRateLimited
	}
	c.gate.Record(now)

	c.store.Append(model.NewUserMessage(text))
	c.history.AppendUser(text)
	c.state = StateSending
	snapshot := c.history.Entries()
	c.mu.Unlock()

	c.persistAsync()

	c.sends.Add(1)
	go func() {
		defer c.sends.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		reply, err := c.completer.Complete(ctx, snapshot)
		c.finish(reply, err)
	}()
	return nil
}

// finish applies a settled completion attempt: exactly one message is
// appended and the state returns to Idle.
func (c *Controller) finish(reply string, err error) {
	c.mu.Lock()
	var msg model.Message
	if err == nil {
		msg = model.NewAssistantMessage(reply)
		c.history.AppendAssistant(reply)
	} else {
		log.Printf("[session] completion failed: %v", err)
		msg = model.NewNotice(noticeFor(err))
	}
	c.store.Append(msg)
	c.state = StateIdle
	c.mu.Unlock()

	c.persistAsync()

	if c.OnReply != nil {
		c.OnReply(msg)
	}
}

// noticeFor maps a completion failure onto user-facing wording. API
// errors carry the service's message verbatim; everything else gets a
// generic description.
func noticeFor(err error) string {
	if errors.Is(err, client.ErrNoCredential) {
		return noticeNoCredential
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return noticeTransport
}

// =============================================================================
// CLEAR AND LIFECYCLE
// =============================================================================

// Clear empties the transcript, resets the history to just the persona,
// and removes the durable snapshot. The confirm collaborator (typically
// an interactive prompt) decides whether to proceed.
func (c *Controller) Clear(confirm func() bool) error {
	c.mu.Lock()
	if c.state == StateSending {
		c.mu.Unlock()
		return ErrBusy
	}
	c.mu.Unlock()

	if confirm != nil && !confirm() {
		return nil
	}

	c.mu.Lock()
	c.store.Clear()
	c.history.Reset()
	c.mu.Unlock()

	if err := c.store.ClearSnapshot(); err != nil {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

// Flush waits for the in-flight completion (if any) and all background
// snapshot writes. Used on shutdown and in tests.
func (c *Controller) Flush() {
	c.sends.Wait()
	c.persists.Wait()
}

// persistAsync snapshots the transcript on a background goroutine.
func (c *Controller) persistAsync() {
	c.persists.Add(1)
	go func() {
		defer c.persists.Done()
		if err := c.store.Persist(); err != nil {
			if c.OnPersistError != nil {
				c.OnPersistError(err)
			}
		}
	}()
}
