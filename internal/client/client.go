// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client implements the OpenAI-compatible chat completion client.
//
// The client makes exactly one attempt per call: the session layer owns
// retry policy (currently none) and surfaces failures to the user, so
// silently retrying here would hide the latency and double-spend tokens.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/voxchat-tui/internal/model"
)

// =============================================================================
// CONSTANTS AND ERRORS
// =============================================================================

const (
	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps the response body read (defense against a
	// misbehaving endpoint streaming garbage).
	MaxResponseSize = 10 * 1024 * 1024

	// FallbackReply is shown when the API answers 200 with no choices.
	FallbackReply = "Sorry, I could not come up with a reply. Please try again."
)

// ErrNoCredential reports a missing API key. Checked before any network
// activity so the failure is immediate and cheap.
var ErrNoCredential = errors.New("no API key configured (set VOXCHAT_API_KEY)")

// APIError is a non-2xx response from the completion endpoint. Message
// carries the service's own wording when the error envelope parses,
// otherwise a generic fallback.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
}

// sharedHTTPClient pools connections across all completion requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// chatRequest is the OpenAI-compatible completion request body.
type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []model.HistoryEntry `json:"messages"`
	Temperature float64              `json:"temperature"`
	TopP        float64              `json:"top_p"`
	MaxTokens   int                  `json:"max_tokens"`
}

// chatResponse is the subset of the completion response we consume.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Options configures a Client. Zero values fall back to sane defaults.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration

	// HTTPClient overrides the pooled default, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	topP        float64
	maxTokens   int
	httpClient  *http.Client

	// pace smooths outgoing requests so a burst of programmatic callers
	// (the ask subcommand in a shell loop, say) cannot hammer the API.
	// The interactive send gate lives in the ratelimit package; this is
	// a second, transport-level guard.
	pace *rate.Limiter
}

// New creates a completion client.
func New(opts Options) *Client {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = sharedHTTPClient
	}
	if opts.Timeout > 0 && httpClient == sharedHTTPClient {
		clone := *sharedHTTPClient
		clone.Timeout = opts.Timeout
		httpClient = &clone
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Client{
		apiKey:      opts.APIKey,
		baseURL:     baseURL,
		model:       opts.Model,
		temperature: opts.Temperature,
		topP:        opts.TopP,
		maxTokens:   maxTokens,
		httpClient:  httpClient,
		pace:        rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// Complete sends the conversation history and returns the assistant's
// reply text. The history must be non-empty and start with the system
// persona entry. Exactly one attempt is made.
func (c *Client) Complete(ctx context.Context, history []model.HistoryEntry) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoCredential
	}
	if len(history) == 0 {
		return "", errors.New("history must not be empty")
	}
	if history[0].Role != model.RoleSystem {
		return "", fmt.Errorf("history must start with the system entry, got role %q", history[0].Role)
	}

	if err := c.pace.Wait(ctx); err != nil {
		return "", fmt.Errorf("request pacing interrupted: %w", err)
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    history,
		Temperature: c.temperature,
		TopP:        c.topP,
		MaxTokens:   c.maxTokens,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("[client] POST %s model=%s history=%d", url, c.model, len(history))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[client] status=%d bytes=%d elapsed=%s", resp.StatusCode, len(body), time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", parseAPIError(resp.StatusCode, body)
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		log.Printf("[client] empty completion, using fallback reply")
		return FallbackReply, nil
	}
	return completion.Choices[0].Message.Content, nil
}

// parseAPIError extracts the service's error message from a non-2xx
// body, falling back to a generic description when the envelope does
// not parse.
func parseAPIError(status int, body []byte) *APIError {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{Status: status, Message: envelope.Error.Message}
	}
	return &APIError{Status: status, Message: "unknown API error"}
}
