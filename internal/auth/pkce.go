package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// PKCE is a Proof Key for Code Exchange pair, scoped to exactly one
// authorization attempt. It is never persisted.
type PKCE struct {
	// Verifier is 32 bytes of cryptographically secure randomness,
	// base64url-encoded without padding. Never leaves this process
	// except inside the code-exchange request.
	Verifier string

	// Challenge is the base64url-encoded SHA-256 digest of the verifier,
	// sent in the authorization request with method S256.
	Challenge string
}

// GeneratePKCE generates a fresh verifier/challenge pair.
func GeneratePKCE() (*PKCE, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	verifier := base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(verifier))

	return &PKCE{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(sum[:]),
	}, nil
}
