package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

const callbackHTML = `<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e;">
	<div style="text-align: center; color: white;">
		<h1>Authorization successful!</h1>
		<p>You can close this window.</p>
	</div>
</body>
</html>`

// CallbackServer is a temporary loopback HTTP server that receives exactly
// one OAuth redirect, hands back the authorization code, and shuts down.
type CallbackServer struct {
	server   *http.Server
	listener net.Listener
	resultCh chan callbackResult
	once     sync.Once
	port     int
}

type callbackResult struct {
	code string
	err  error
}

// NewCallbackServer creates an unstarted callback server.
func NewCallbackServer() *CallbackServer {
	return &CallbackServer{
		resultCh: make(chan callbackResult, 1),
	}
}

// Start binds a loopback listener on an OS-assigned ephemeral port and
// returns the redirect URI to hand to the authorization endpoint. The
// server stops when the context is cancelled.
func (s *CallbackServer) Start(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", &CallbackError{Reason: "failed to bind loopback listener", Err: err}
	}

	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRedirect)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.resultCh <- callbackResult{err: &CallbackError{Reason: "callback server failed", Err: err}}:
			default:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s.RedirectURI(), nil
}

// RedirectURI returns the loopback redirect URI for the bound port.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d", s.port)
}

// Port returns the bound port.
func (s *CallbackServer) Port() int {
	return s.port
}

// WaitForCode blocks until the redirect arrives, the context expires, or
// the server fails. An abandoned browser tab is bounded by the caller's
// context deadline.
func (s *CallbackServer) WaitForCode(ctx context.Context) (string, error) {
	select {
	case result := <-s.resultCh:
		return result.code, result.err
	case <-ctx.Done():
		return "", &CallbackError{Reason: "timed out waiting for authorization redirect", Err: ctx.Err()}
	}
}

// handleRedirect processes the single expected redirect. Later requests
// (favicon fetches, reloads) get a plain 400.
func (s *CallbackServer) handleRedirect(w http.ResponseWriter, r *http.Request) {
	var handled bool
	s.once.Do(func() {
		handled = true
		s.processRedirect(w, r)
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

func (s *CallbackServer) processRedirect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	query := r.URL.Query()

	var result callbackResult
	if errParam := query.Get("error"); errParam != "" {
		result.err = &CallbackError{Reason: "provider returned error: " + errParam}
	} else if code := query.Get("code"); code == "" {
		result.err = &CallbackError{Reason: "no authorization code in callback"}
	} else {
		result.code = code
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, callbackHTML)

	select {
	case s.resultCh <- result:
	default:
	}

	// Give the response time to flush before tearing down.
	go func() {
		time.Sleep(time.Second)
		s.Stop()
	}()
}

// Stop shuts the server down. Safe to call more than once.
func (s *CallbackServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}
