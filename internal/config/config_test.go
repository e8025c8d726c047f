// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// useTempHome points HOME at a scratch directory so tests never touch the
// real ~/.voxchat.
func useTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoad_Defaults(t *testing.T) {
	useTempHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Chat.MinSendIntervalSecs != 3 {
		t.Errorf("MinSendIntervalSecs = %d, want 3", cfg.Chat.MinSendIntervalSecs)
	}
	if cfg.Chat.HistoryWindow != 50 {
		t.Errorf("HistoryWindow = %d, want 50", cfg.Chat.HistoryWindow)
	}
	if cfg.Persistence.Backend != "file" {
		t.Errorf("Backend = %q, want file", cfg.Persistence.Backend)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	home := useTempHome(t)
	dir := filepath.Join(home, ".voxchat")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}

	content := `
[api]
model = "gpt-4o"

[chat]
temperature = 0.2
min_send_interval_secs = 5

[persistence]
backend = "sqlite"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", cfg.API.Model)
	}
	if cfg.Chat.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.Chat.Temperature)
	}
	if cfg.MinSendInterval() != 5*time.Second {
		t.Errorf("MinSendInterval = %v, want 5s", cfg.MinSendInterval())
	}
	if cfg.Persistence.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite", cfg.Persistence.Backend)
	}
	// Untouched fields keep their defaults
	if cfg.Chat.MaxTokens != 1024 {
		t.Errorf("MaxTokens = %d, want default 1024", cfg.Chat.MaxTokens)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	useTempHome(t)
	t.Setenv("VOXCHAT_API_KEY", "sk-test-123")
	t.Setenv("VOXCHAT_MODEL", "gpt-4.1")
	t.Setenv("VOXCHAT_PERSISTENCE", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Key != "sk-test-123" {
		t.Errorf("Key = %q", cfg.API.Key)
	}
	if cfg.API.Model != "gpt-4.1" {
		t.Errorf("Model = %q", cfg.API.Model)
	}
	if cfg.Persistence.Backend != "sqlite" {
		t.Errorf("Backend = %q", cfg.Persistence.Backend)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	home := useTempHome(t)
	dir := filepath.Join(home, ".voxchat")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not [valid"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected an error for malformed TOML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"temperature too high", func(c *Config) { c.Chat.Temperature = 2.5 }, "temperature"},
		{"negative top_p", func(c *Config) { c.Chat.TopP = -0.1 }, "top_p"},
		{"zero max_tokens", func(c *Config) { c.Chat.MaxTokens = 0 }, "max_tokens"},
		{"negative window", func(c *Config) { c.Chat.HistoryWindow = -1 }, "history_window"},
		{"unknown backend", func(c *Config) { c.Persistence.Backend = "redis" }, "backend"},
		{"empty model", func(c *Config) { c.API.Model = "" }, "model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate failed: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	useTempHome(t)

	cfg := Default()
	cfg.API.Model = "gpt-4o"
	cfg.Chat.HistoryWindow = 20
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.API.Model != "gpt-4o" {
		t.Errorf("Model = %q", loaded.API.Model)
	}
	if loaded.Chat.HistoryWindow != 20 {
		t.Errorf("HistoryWindow = %d", loaded.Chat.HistoryWindow)
	}
}

func TestSnapshotPath(t *testing.T) {
	home := useTempHome(t)

	cfg := Default()
	p, err := cfg.SnapshotPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(home, ".voxchat", "messages.json") {
		t.Errorf("file path = %q", p)
	}

	cfg.Persistence.Backend = "sqlite"
	p, _ = cfg.SnapshotPath()
	if p != filepath.Join(home, ".voxchat", "voxchat.db") {
		t.Errorf("sqlite path = %q", p)
	}

	cfg.Persistence.Path = "/tmp/custom.db"
	p, _ = cfg.SnapshotPath()
	if p != "/tmp/custom.db" {
		t.Errorf("override path = %q", p)
	}
}
