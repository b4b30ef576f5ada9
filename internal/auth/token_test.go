package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTokenUsable(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token *Token
		want  bool
	}{
		{"nil token", nil, false},
		{"no access token", &Token{ExpiresAt: now.Unix() + 3600}, false},
		{"no expiry", &Token{AccessToken: "abc"}, false},
		{"expires in 59s", &Token{AccessToken: "abc", ExpiresAt: now.Unix() + 59}, false},
		{"expires in 61s", &Token{AccessToken: "abc", ExpiresAt: now.Unix() + 61}, true},
		{"expired", &Token{AccessToken: "abc", ExpiresAt: now.Unix() - 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.Usable(now); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewStore(path)

	token := &Token{
		AccessToken:  "ya29.test",
		RefreshToken: "1//refresh",
		ExpiresAt:    1718000000,
	}

	if err := store.Save(token); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *token {
		t.Errorf("Load = %+v, want %+v", loaded, token)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file permissions = %o, want 0600", perm)
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "token.json"))

	token, err := store.Load()
	if err != nil {
		t.Fatalf("Load of missing file should not error, got: %v", err)
	}
	if token != nil {
		t.Errorf("expected nil token, got %+v", token)
	}
}

func TestStore_SaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.json")
	store := NewStore(path)

	if err := store.Save(&Token{AccessToken: "first"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(&Token{AccessToken: "second", RefreshToken: "r2"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// No temp files may survive a successful save.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".token-") {
			t.Errorf("leftover temp file: %s", entry.Name())
		}
	}

	// The destination must always parse as complete JSON.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		t.Fatalf("token file is not valid JSON: %v", err)
	}
	if token.AccessToken != "second" {
		t.Errorf("AccessToken = %q, want %q", token.AccessToken, "second")
	}
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewStore(path)

	if err := store.Save(&Token{AccessToken: "abc"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("token file still exists after Clear")
	}

	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear failed: %v", err)
	}
}
