package auth

import (
	"errors"
	"fmt"
)

// ErrReauthRequired is returned instead of launching a browser when the
// manager runs in non-interactive mode and no token can be refreshed.
var ErrReauthRequired = errors.New("reauthorization required: run 'calwid auth'")

// CredentialsError indicates the operator-supplied credentials file is
// missing or unparseable. It is fatal; no recovery is attempted.
type CredentialsError struct {
	Path string
	Err  error
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("credentials file %s: %v", e.Path, e.Err)
}

func (e *CredentialsError) Unwrap() error { return e.Err }

// CallbackError indicates the local callback receiver could not bind,
// could not read the single redirect request, or got no authorization code.
type CallbackError struct {
	Reason string
	Err    error
}

func (e *CallbackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oauth callback: %s: %v", e.Reason, e.Err)
	}
	return "oauth callback: " + e.Reason
}

func (e *CallbackError) Unwrap() error { return e.Err }

// ExchangeError carries a non-success response from the token endpoint
// during an authorization-code grant.
type ExchangeError struct {
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

// RefreshError carries a non-success response from the token endpoint
// during a refresh-token grant. Refresh failures are recovered locally by
// falling through to full interactive authorization.
type RefreshError struct {
	StatusCode int
	Body       string
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed with status %d: %s", e.StatusCode, e.Body)
}
