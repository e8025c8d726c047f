// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for voxchat.
//
// Configuration comes from three layers, later layers winning:
//   - Built-in defaults
//   - ~/.voxchat/config.toml
//   - VOXCHAT_* environment variables
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/voxchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete voxchat configuration.
type Config struct {
	API         APIConfig         `toml:"api"`
	Chat        ChatConfig        `toml:"chat"`
	Persistence PersistenceConfig `toml:"persistence"`
	Speech      SpeechConfig      `toml:"speech"`
	UI          UIConfig          `toml:"ui"`
}

// APIConfig describes the remote completion service.
type APIConfig struct {
	// BaseURL is the root of the OpenAI-compatible API.
	BaseURL string `toml:"base_url"`
	// Key is the bearer credential. Usually left empty in the file and
	// supplied via VOXCHAT_API_KEY.
	Key string `toml:"key"`
	// Model is the completion model identifier.
	Model string `toml:"model"`
	// TimeoutSecs bounds a single completion request.
	TimeoutSecs int `toml:"timeout_secs"`
}

// ChatConfig holds the fixed sampling parameters and session behavior.
type ChatConfig struct {
	// SystemPrompt is the assistant persona, always the first history entry.
	SystemPrompt string `toml:"system_prompt"`
	// Temperature in [0, 2].
	Temperature float64 `toml:"temperature"`
	// TopP is the nucleus-sampling parameter in [0, 1].
	TopP float64 `toml:"top_p"`
	// MaxTokens caps the generated reply length.
	MaxTokens int `toml:"max_tokens"`
	// MinSendIntervalSecs is the minimum spacing between accepted sends.
	MinSendIntervalSecs int `toml:"min_send_interval_secs"`
	// HistoryWindow bounds the non-system history entries kept
	// (0 = unbounded).
	HistoryWindow int `toml:"history_window"`
}

// PersistenceConfig selects the transcript snapshot backend.
type PersistenceConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `toml:"backend"`
	// Path overrides the default snapshot location.
	Path string `toml:"path"`
}

// SpeechConfig wires the optional voice collaborators. Empty commands
// disable the corresponding feature.
type SpeechConfig struct {
	// RecognizeCommand captures one utterance and prints the recognized
	// text on stdout, e.g. a whisper wrapper script.
	RecognizeCommand []string `toml:"recognize_command"`
	// SpeakCommand reads text on stdin and vocalizes it, e.g. espeak or say.
	SpeakCommand []string `toml:"speak_command"`
}

// UIConfig holds presentation options.
type UIConfig struct {
	// ShowTimestamps prints a time next to each bubble.
	ShowTimestamps bool `toml:"show_timestamps"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	defaultBaseURL      = "https://api.openai.com/v1"
	defaultModel        = "gpt-4o-mini"
	defaultSystemPrompt = "You are a friendly voice assistant. Keep replies short and conversational."
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     defaultBaseURL,
			Model:       defaultModel,
			TimeoutSecs: 60,
		},
		Chat: ChatConfig{
			SystemPrompt:        defaultSystemPrompt,
			Temperature:         0.7,
			TopP:                1.0,
			MaxTokens:           1024,
			MinSendIntervalSecs: 3,
			HistoryWindow:       50,
		},
		Persistence: PersistenceConfig{
			Backend: "file",
		},
		UI: UIConfig{
			ShowTimestamps: false,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the voxchat configuration directory (~/.voxchat).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".voxchat"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// configPath returns the config file location.
func configPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// SnapshotPath resolves the transcript snapshot location for the
// configured backend, honoring any explicit path override.
func (c *Config) SnapshotPath() (string, error) {
	if c.Persistence.Path != "" {
		return c.Persistence.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	switch c.Persistence.Backend {
	case "sqlite":
		return filepath.Join(dir, "voxchat.db"), nil
	default:
		return filepath.Join(dir, "messages.json"), nil
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration: defaults, then the TOML file if present,
// then environment overrides. A missing file is normal.
func Load() (*Config, error) {
	cfg := Default()

	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides layers VOXCHAT_* environment variables on top of the
// file configuration.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("VOXCHAT_API_KEY"); v != "" {
		c.API.Key = v
	}
	if v := os.Getenv("VOXCHAT_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("VOXCHAT_MODEL"); v != "" {
		c.API.Model = v
	}
	if v := os.Getenv("VOXCHAT_PERSISTENCE"); v != "" {
		c.Persistence.Backend = v
	}
	if v := os.Getenv("VOXCHAT_HISTORY_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Chat.HistoryWindow = n
		}
	}
}

// Validate checks ranges and enumerations, clamping nothing: a bad value
// is reported rather than silently adjusted.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.Model == "" {
		return errors.New("api.model must not be empty")
	}
	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		return fmt.Errorf("chat.temperature %.2f out of range [0, 2]", c.Chat.Temperature)
	}
	if c.Chat.TopP < 0 || c.Chat.TopP > 1 {
		return fmt.Errorf("chat.top_p %.2f out of range [0, 1]", c.Chat.TopP)
	}
	if c.Chat.MaxTokens <= 0 {
		return errors.New("chat.max_tokens must be positive")
	}
	if c.Chat.HistoryWindow < 0 {
		return errors.New("chat.history_window must not be negative")
	}
	switch c.Persistence.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("persistence.backend %q must be \"file\" or \"sqlite\"", c.Persistence.Backend)
	}
	return nil
}

// Timeout returns the completion request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.API.TimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// MinSendInterval returns the rate-limit spacing as a duration.
func (c *Config) MinSendInterval() time.Duration {
	if c.Chat.MinSendIntervalSecs <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Chat.MinSendIntervalSecs) * time.Second
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to ~/.voxchat/config.toml atomically.
func (c *Config) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := configPath()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}
