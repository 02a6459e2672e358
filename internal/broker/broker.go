// Package broker drives the identity broker's OAuth flow for the CLI and
// serves cached access tokens with automatic refresh.
//
// The broker is supplementary: the backend's cookie session is the primary
// authentication and everything works without a broker configured. When one
// is configured, its bearer token rides along on backend requests and its
// claims feed the whoami output.
package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/moodarc/internal/shared"
)

const (
	authorizePath = "/auth/v1/authorize"
	tokenPath     = "/auth/v1/token"
)

// Broker is an OAuth client for one identity broker deployment. The broker's
// anon key doubles as the OAuth client id, matching how the hosted front end
// identifies itself.
type Broker struct {
	mu       sync.Mutex
	config   *oauth2.Config
	cache    *TokenCache
	source   oauth2.TokenSource
	last     string
	provider string
	logger   *log.Logger
}

// New creates a Broker from resolved configuration. It fails with
// [shared.ErrBrokerNotConfigured] when the URL or anon key is missing, so
// callers can treat that case as "run without a broker".
func New(cfg shared.BrokerConfig, redirectURL string, cache *TokenCache, logger *log.Logger) (*Broker, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, shared.ErrBrokerNotConfigured
	}
	if cache == nil {
		var err error
		if cache, err = DefaultTokenCache(); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:    cfg.AnonKey,
		RedirectURL: redirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.URL + authorizePath,
			TokenURL: cfg.URL + tokenPath,
		},
	}

	return &Broker{
		config:   config,
		cache:    cache,
		provider: cfg.Provider,
		logger:   logger,
	}, nil
}

// AuthURL returns the browser URL that starts the provider login. state must
// be unguessable; the callback handler checks it round-trips unchanged.
func (b *Broker) AuthURL(state string) string {
	return b.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("provider", b.provider),
	)
}

// Exchange trades the callback code for a token and caches it.
func (b *Broker) Exchange(ctx context.Context, code string) error {
	token, err := b.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: code exchange failed: %v", shared.ErrAuthFailed, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.source = nil
	b.last = ""
	if err := b.cache.Save(token); err != nil {
		return fmt.Errorf("failed to cache broker token: %w", err)
	}
	return nil
}

// AccessToken returns a live access token, refreshing through the broker
// when the cached one has expired. Refreshed tokens are written back to the
// cache so the next process starts warm.
func (b *Broker) AccessToken(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.source == nil {
		cached, err := b.cache.Load()
		if err != nil {
			return "", err
		}
		if cached == nil {
			return "", fmt.Errorf("%w: no broker login yet", shared.ErrNoToken)
		}
		b.source = b.config.TokenSource(ctx, cached)
		b.last = cached.AccessToken
	}

	token, err := b.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}

	if token.AccessToken != b.last {
		b.last = token.AccessToken
		if err := b.cache.Save(token); err != nil {
			b.logger.Warn("could not persist refreshed broker token", "error", err)
		}
	}
	return token.AccessToken, nil
}

// Claims returns the display claims of the current access token.
func (b *Broker) Claims(ctx context.Context) (*Claims, error) {
	token, err := b.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return ParseClaims(token)
}

// SignOut drops the cached token. The broker's server-side session is left
// alone; the next AuthURL round trip replaces it.
func (b *Broker) SignOut() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.source = nil
	b.last = ""
	return b.cache.Delete()
}
