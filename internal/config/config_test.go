package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_CreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sync.LookaheadDays != 60 {
		t.Errorf("LookaheadDays = %d, want 60", cfg.Sync.LookaheadDays)
	}
	if len(cfg.Tasks.Lists) != 0 {
		t.Errorf("Lists = %v, want empty", cfg.Tasks.Lists)
	}
	if cfg.Auth.CallbackTimeoutMinutes != 5 {
		t.Errorf("CallbackTimeoutMinutes = %d, want 5", cfg.Auth.CallbackTimeoutMinutes)
	}
	if cfg.Server.Listen != "127.0.0.1:8275" {
		t.Errorf("Listen = %q, want 127.0.0.1:8275", cfg.Server.Listen)
	}

	// The default file must now exist for the next run.
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("default config.toml not written: %v", err)
	}
}

func TestLoad_ReadsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	content := `
[sync]
lookahead_days = 14

[tasks]
lists = ["My Tasks", "Groceries"]

[auth]
credentials_file = "/etc/calwid/credentials.json"
callback_timeout_minutes = 2

[server]
listen = "127.0.0.1:9000"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sync.LookaheadDays != 14 {
		t.Errorf("LookaheadDays = %d, want 14", cfg.Sync.LookaheadDays)
	}
	if len(cfg.Tasks.Lists) != 2 || cfg.Tasks.Lists[0] != "My Tasks" {
		t.Errorf("Lists = %v, want [My Tasks Groceries]", cfg.Tasks.Lists)
	}
	if cfg.Auth.CredentialsFile != "/etc/calwid/credentials.json" {
		t.Errorf("CredentialsFile = %q", cfg.Auth.CredentialsFile)
	}
	if cfg.Auth.CallbackTimeoutMinutes != 2 {
		t.Errorf("CallbackTimeoutMinutes = %d, want 2", cfg.Auth.CallbackTimeoutMinutes)
	}
	if cfg.Server.Listen != "127.0.0.1:9000" {
		t.Errorf("Listen = %q, want 127.0.0.1:9000", cfg.Server.Listen)
	}
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
[sync]
lookahead_days = 7
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sync.LookaheadDays != 7 {
		t.Errorf("LookaheadDays = %d, want 7", cfg.Sync.LookaheadDays)
	}
	if cfg.Server.Listen != "127.0.0.1:8275" {
		t.Errorf("Listen = %q, want default", cfg.Server.Listen)
	}
}

func TestLoad_MalformedConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[sync\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("expected error for malformed config")
	}
}
