package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// tokenExpiryBuffer is the margin applied when checking token validity.
// Accounts for clock skew and the latency of the API call about to be made.
const tokenExpiryBuffer = 60 * time.Second

// Token is the persisted OAuth token record. The on-disk shape is fixed:
// access_token, optional refresh_token, optional expires_at epoch seconds.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// Usable reports whether the access token can still be used at now.
// A token without an expiry is never trusted; it goes through refresh.
func (t *Token) Usable(now time.Time) bool {
	if t == nil || t.AccessToken == "" || t.ExpiresAt == 0 {
		return false
	}
	return now.Add(tokenExpiryBuffer).Unix() < t.ExpiresAt
}

// Store loads and saves the token record. Pure data access, no network.
type Store struct {
	path string
}

// NewStore creates a store persisting to the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the token file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted token. Returns (nil, nil) when no token file
// exists; an unreadable or unparseable file is an error the caller may
// treat as "no token".
func (s *Store) Load() (*Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &token, nil
}

// Save persists the token atomically: serialize to a temp file in the same
// directory, then rename over the destination. A reader never observes a
// partially written file.
func (s *Store) Save(token *Token) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp token file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp token file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}

// Clear removes the persisted token, if any.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
