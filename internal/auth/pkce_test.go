package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestGeneratePKCE(t *testing.T) {
	pkce, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("GeneratePKCE() failed: %v", err)
	}

	if pkce.Verifier == "" {
		t.Error("Verifier is empty")
	}
	if pkce.Challenge == "" {
		t.Error("Challenge is empty")
	}

	// 32 bytes base64url without padding is 43 characters.
	if len(pkce.Verifier) != 43 {
		t.Errorf("Verifier length = %d, want 43", len(pkce.Verifier))
	}

	// Re-derive the challenge from the verifier.
	sum := sha256.Sum256([]byte(pkce.Verifier))
	want := base64.RawURLEncoding.EncodeToString(sum[:])
	if pkce.Challenge != want {
		t.Errorf("Challenge verification failed.\nGot:  %q\nWant: %q", pkce.Challenge, want)
	}
}

func TestGeneratePKCE_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		pkce, err := GeneratePKCE()
		if err != nil {
			t.Fatalf("GeneratePKCE() failed on iteration %d: %v", i, err)
		}
		if seen[pkce.Verifier] {
			t.Errorf("Duplicate verifier generated on iteration %d", i)
		}
		seen[pkce.Verifier] = true
	}
}
