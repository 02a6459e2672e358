// Cookie persistence for the backend session.
//
// A browser keeps the backend's session cookie alive between page loads; the
// CLI gets the same continuity by snapshotting jar contents for the backend
// host to disk after every change and reloading them on startup.
package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodarc/internal/shared"
)

// PersistentJar is an [http.CookieJar] that mirrors the cookies scoped to one
// backend base URL into a JSON file with owner-only permissions.
type PersistentJar struct {
	mu     sync.Mutex
	path   string
	base   *url.URL
	jar    *cookiejar.Jar
	logger *log.Logger
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewPersistentJar creates a jar persisted at path and scoped to baseURL.
// A missing or unreadable snapshot is not an error; the jar starts empty.
func NewPersistentJar(path, baseURL string, logger *log.Logger) (*PersistentJar, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("%w: cookie jar needs an absolute base URL", shared.ErrInvalidConfig)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	p := &PersistentJar{path: path, base: base, jar: jar, logger: logger}
	p.load()
	return p, nil
}

// Cookies implements [http.CookieJar].
func (p *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jar.Cookies(u)
}

// SetCookies implements [http.CookieJar] and snapshots the backend-scoped
// cookies after every change.
func (p *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jar.SetCookies(u, cookies)
	p.save()
}

// Seed installs cookies against the backend base URL. Used by session import.
func (p *PersistentJar) Seed(cookies []*http.Cookie) {
	p.SetCookies(p.base, cookies)
}

// Clear drops the in-memory cookies and removes the snapshot file.
func (p *PersistentJar) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("failed to reset cookie jar: %w", err)
	}
	p.jar = jar

	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cookie snapshot: %w", err)
	}
	return nil
}

func (p *PersistentJar) load() {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if !os.IsNotExist(err) {
			p.logger.Warn("could not read cookie snapshot", "path", p.path, "error", err)
		}
		return
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		p.logger.Warn("cookie snapshot is corrupt, starting fresh", "path", p.path, "error", err)
		return
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	p.jar.SetCookies(p.base, cookies)
}

// save must be called with the mutex held.
func (p *PersistentJar) save() {
	cookies := p.jar.Cookies(p.base)
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		p.logger.Warn("could not encode cookie snapshot", "error", err)
		return
	}

	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			p.logger.Warn("could not create cookie snapshot directory", "path", dir, "error", err)
			return
		}
	}

	if err := os.WriteFile(p.path, data, 0600); err != nil {
		p.logger.Warn("could not write cookie snapshot", "path", p.path, "error", err)
	}
}
