package auth

import (
	"encoding/json"
	"os"
)

// Credentials holds the operator-supplied OAuth client configuration.
// Loaded once at startup and read-only thereafter.
type Credentials struct {
	Installed InstalledCredentials `json:"installed"`
}

// InstalledCredentials mirrors the "installed application" record of a
// downloaded Google Cloud credentials file.
type InstalledCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

// LoadCredentials reads and parses the credentials file at path.
// Any failure is a *CredentialsError.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CredentialsError{Path: path, Err: err}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, &CredentialsError{Path: path, Err: err}
	}

	return &creds, nil
}
