package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodarc/internal/services"
	"github.com/desertthunder/moodarc/internal/shared"
)

// SessionAPI is the slice of the backend the authenticator talks to.
type SessionAPI interface {
	Me(ctx context.Context) (*services.Identity, error)
	Logout(ctx context.Context) error
}

// TokenProvider yields the identity broker's access token. Implementations
// handle their own refresh and caching.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
	SignOut() error
}

// Authenticator owns the session snapshot. It is the only writer; everything
// else reads through [Authenticator.Session].
type Authenticator struct {
	mu      sync.RWMutex
	session Session
	backend SessionAPI
	broker  TokenProvider
	logger  *log.Logger
}

// NewAuthenticator creates an authenticator. broker may be nil when no
// identity broker is configured; the backend cookie session works alone.
func NewAuthenticator(backend SessionAPI, broker TokenProvider, logger *log.Logger) *Authenticator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Authenticator{backend: backend, broker: broker, logger: logger}
}

// Session returns the current snapshot.
func (a *Authenticator) Session() Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// Authenticated reports whether the last check confirmed a session.
func (a *Authenticator) Authenticated() bool {
	return a.Session().Authenticated
}

// CheckBackendSession probes the backend session. It never returns an error;
// the [Probe] carries the cause when the check itself failed. A session
// counts as authenticated only when the backend says authenticated=true and
// supplies a non-empty user id. The display name falls back to the user id.
func (a *Authenticator) CheckBackendSession(ctx context.Context) Probe {
	identity, err := a.backend.Me(ctx)
	if err != nil {
		var reqErr *services.RequestError
		if errors.As(err, &reqErr) && (reqErr.Status == http.StatusUnauthorized || reqErr.Status == http.StatusForbidden) {
			a.reset()
			return Probe{Status: ProbeUnauthenticated}
		}
		a.logger.Warn("session probe failed", "error", err)
		a.reset()
		return Probe{Status: ProbeFailed, Err: err}
	}

	if identity == nil {
		err := fmt.Errorf("%w: session probe returned no identity", shared.ErrAuthFailed)
		a.logger.Warn("session probe failed", "error", err)
		a.reset()
		return Probe{Status: ProbeFailed, Err: err}
	}

	if !identity.Authenticated || identity.UserID == "" {
		a.reset()
		return Probe{Status: ProbeUnauthenticated}
	}

	session := Session{
		Authenticated: true,
		UserID:        identity.UserID,
		DisplayName:   identity.DisplayName,
		BearerToken:   a.BearerToken(ctx),
	}
	if session.DisplayName == "" {
		session.DisplayName = identity.UserID
	}

	a.mu.Lock()
	a.session = session
	a.mu.Unlock()

	return Probe{Status: ProbeAuthenticated, Session: session}
}

// BearerToken implements [services.TokenSource]. Broker errors are swallowed
// so a broken supplementary auth path never blocks a backend call; the token
// just stays empty.
func (a *Authenticator) BearerToken(ctx context.Context) string {
	if a.broker == nil {
		return ""
	}
	token, err := a.broker.AccessToken(ctx)
	if err != nil {
		a.logger.Debug("no broker token available", "error", err)
		return ""
	}
	return token
}

// Logout ends the backend session and signs out of the broker. Both are
// best-effort: failures are logged and the local snapshot resets regardless,
// so a dead backend can never trap the client in a logged-in state. The
// returned error is informational.
func (a *Authenticator) Logout(ctx context.Context) error {
	err := a.backend.Logout(ctx)
	if err != nil {
		a.logger.Warn("backend logout failed", "error", err)
	}

	if a.broker != nil {
		if serr := a.broker.SignOut(); serr != nil {
			a.logger.Warn("broker sign-out failed", "error", serr)
			if err == nil {
				err = serr
			}
		}
	}

	a.reset()
	return err
}

// WaitForSession polls the backend until it confirms a session, the context
// ends, or the timeout elapses. Used after sending the user to the login
// page in a browser.
func (a *Authenticator) WaitForSession(ctx context.Context, interval, timeout time.Duration) (Session, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if probe := a.CheckBackendSession(ctx); probe.Status == ProbeAuthenticated {
			return probe.Session, nil
		}

		select {
		case <-ctx.Done():
			return Session{}, ctx.Err()
		case <-deadline.C:
			return Session{}, fmt.Errorf("%w: no session after %s", shared.ErrTimeout, timeout)
		case <-ticker.C:
		}
	}
}

func (a *Authenticator) reset() {
	a.mu.Lock()
	a.session = Session{}
	a.mu.Unlock()
}
