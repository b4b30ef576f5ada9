package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Add1ct1ve/CalWid/internal/logger"
)

// Scopes requested during interactive authorization.
const Scopes = "https://www.googleapis.com/auth/calendar.readonly https://www.googleapis.com/auth/tasks"

// DefaultCallbackTimeout bounds the wait for the authorization redirect.
// The original widget waited forever; a stuck browser tab should not.
const DefaultCallbackTimeout = 5 * time.Minute

// Manager owns the token lifecycle: validity check, refresh-token renewal,
// and full interactive authorization as the last resort. Safe to call
// repeatedly; a usable persisted token costs no network round-trip.
type Manager struct {
	creds      *Credentials
	store      *Store
	httpClient *http.Client

	// interactive controls whether a failed refresh may escalate to a
	// browser launch. Non-interactive callers get ErrReauthRequired.
	interactive bool

	callbackTimeout time.Duration

	// openURL launches the consent page. Defaults to OpenBrowser;
	// overridable for environments without a browser.
	openURL func(url string) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithInteractive enables or disables escalation to the browser flow.
func WithInteractive(enabled bool) Option {
	return func(m *Manager) { m.interactive = enabled }
}

// WithCallbackTimeout overrides the bounded wait for the redirect.
func WithCallbackTimeout(d time.Duration) Option {
	return func(m *Manager) { m.callbackTimeout = d }
}

// WithHTTPClient overrides the client used for token-endpoint calls.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// WithURLOpener overrides how the authorization URL reaches the user.
func WithURLOpener(open func(url string) error) Option {
	return func(m *Manager) { m.openURL = open }
}

// NewManager loads the credentials file and builds a manager around the
// given token store. A missing or unparseable credentials file is fatal.
func NewManager(credentialsPath string, store *Store, opts ...Option) (*Manager, error) {
	creds, err := LoadCredentials(credentialsPath)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		creds:           creds,
		store:           store,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		interactive:     true,
		callbackTimeout: DefaultCallbackTimeout,
		openURL:         OpenBrowser,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// AccessToken returns a usable access token, going through refresh or full
// interactive authorization as needed. Each token-endpoint call is a single
// attempt; there is no retry.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	token, err := m.store.Load()
	if err != nil {
		logger.Warn("stored token unreadable, treating as absent", "error", err)
		token = nil
	}

	if token.Usable(time.Now()) {
		return token.AccessToken, nil
	}

	if token != nil && token.RefreshToken != "" {
		refreshed, err := m.refreshGrant(ctx, token.RefreshToken)
		if err == nil {
			if err := m.store.Save(refreshed); err != nil {
				return "", fmt.Errorf("failed to persist refreshed token: %w", err)
			}
			return refreshed.AccessToken, nil
		}
		// Fall through to full authorization.
		logger.Warn("token refresh failed, full authorization required", "error", err)
	}

	if !m.interactive {
		return "", ErrReauthRequired
	}

	token, err = m.Authorize(ctx)
	if err != nil {
		return "", err
	}
	if err := m.store.Save(token); err != nil {
		return "", fmt.Errorf("failed to persist token: %w", err)
	}
	return token.AccessToken, nil
}

// HasUsableToken reports whether a persisted token can be used right now
// without any network call.
func (m *Manager) HasUsableToken() bool {
	token, err := m.store.Load()
	return err == nil && token.Usable(time.Now())
}

// ClearToken removes the persisted token.
func (m *Manager) ClearToken() error {
	return m.store.Clear()
}

// TokenSource adapts the manager to the oauth2 interface the Google API
// clients expect. The token is obtained once, at the call site.
func (m *Manager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	accessToken, err := m.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}), nil
}

// Authorize runs the full interactive flow: PKCE pair, loopback callback
// receiver, browser launch, code exchange. The returned token is not
// persisted; AccessToken does that.
func (m *Manager) Authorize(ctx context.Context) (*Token, error) {
	pkce, err := GeneratePKCE()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PKCE pair: %w", err)
	}

	callback := NewCallbackServer()
	redirectURI, err := callback.Start(ctx)
	if err != nil {
		return nil, err
	}
	defer callback.Stop()

	authURL := m.buildAuthURL(redirectURI, pkce.Challenge)

	if err := m.openURL(authURL); err != nil {
		logger.Warn("failed to open browser", "error", err)
		fmt.Printf("Please open this URL in your browser:\n%s\n", authURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.callbackTimeout)
	defer cancel()

	code, err := callback.WaitForCode(waitCtx)
	if err != nil {
		return nil, err
	}

	return m.exchangeCode(ctx, code, pkce.Verifier, redirectURI)
}

// buildAuthURL constructs the authorization request URL.
func (m *Manager) buildAuthURL(redirectURI, challenge string) string {
	query := url.Values{}
	query.Set("client_id", m.creds.Installed.ClientID)
	query.Set("redirect_uri", redirectURI)
	query.Set("response_type", "code")
	query.Set("scope", Scopes)
	query.Set("code_challenge", challenge)
	query.Set("code_challenge_method", "S256")
	query.Set("access_type", "offline")
	query.Set("prompt", "consent")

	return m.creds.Installed.AuthURI + "?" + query.Encode()
}

// tokenResponse is the provider's JSON response for both grants.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// exchangeCode trades the authorization code plus the PKCE verifier for a
// token via the authorization-code grant.
func (m *Manager) exchangeCode(ctx context.Context, code, verifier, redirectURI string) (*Token, error) {
	form := url.Values{}
	form.Set("client_id", m.creds.Installed.ClientID)
	form.Set("client_secret", m.creds.Installed.ClientSecret)
	form.Set("code", code)
	form.Set("code_verifier", verifier)
	form.Set("redirect_uri", redirectURI)
	form.Set("grant_type", "authorization_code")

	resp, body, err := m.postForm(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("token exchange request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	return tr.toToken(""), nil
}

// refreshGrant renews the access token via the refresh-token grant.
// A response that omits a new refresh token retains the previous one.
func (m *Manager) refreshGrant(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("client_id", m.creds.Installed.ClientID)
	form.Set("client_secret", m.creds.Installed.ClientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	resp, body, err := m.postForm(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("token refresh request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RefreshError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse refresh response: %w", err)
	}

	return tr.toToken(refreshToken), nil
}

// postForm POSTs a form-encoded body to the token endpoint and drains the
// response. Single attempt, no retry.
func (m *Manager) postForm(ctx context.Context, form url.Values) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.creds.Installed.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read token endpoint response: %w", err)
	}

	return resp, body, nil
}

// toToken converts a provider response into the persisted record.
// previousRefreshToken is kept when the response omits a replacement.
func (tr *tokenResponse) toToken(previousRefreshToken string) *Token {
	token := &Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
	}
	if token.RefreshToken == "" {
		token.RefreshToken = previousRefreshToken
	}
	if tr.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Unix() + tr.ExpiresIn
	}
	return token
}
