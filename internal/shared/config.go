package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Frontend FrontendConfig `toml:"frontend"`
	Broker   BrokerConfig   `toml:"broker"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// APIConfig locates the mood-arc backend.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// FrontendConfig describes an optional hosted web front end. Its origin feeds
// the request client's loopback guard and sibling-page URLs are built from its
// directory.
type FrontendConfig struct {
	BaseURL string `toml:"base_url"`
}

// BrokerConfig contains third-party identity broker settings. An empty URL
// means no broker is configured and bearer tokens are never attached.
type BrokerConfig struct {
	URL           string `toml:"url"`
	AnonKey       string `toml:"anon_key"`
	Provider      string `toml:"provider"`
	ProfilesTable string `toml:"profiles_table"`
	HistoryTable  string `toml:"history_table"`
}

// DatabaseConfig contains local history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local broker sign-in callback listener.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, os.ErrExist)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Overrides carries runtime-injected values (CLI flags, environment) that take
// precedence over config-file values during [Config.Resolve].
type Overrides struct {
	APIBaseURL      string
	FrontendBaseURL string
	BrokerURL       string
	BrokerKey       string
}

// EnvOverrides reads the MOODARC_* environment variables into an [Overrides].
func EnvOverrides() Overrides {
	return Overrides{
		APIBaseURL:      os.Getenv("MOODARC_API_BASE_URL"),
		FrontendBaseURL: os.Getenv("MOODARC_FRONTEND_URL"),
		BrokerURL:       os.Getenv("MOODARC_BROKER_URL"),
		BrokerKey:       os.Getenv("MOODARC_BROKER_KEY"),
	}
}

// Merge overlays non-empty values from other on top of o. Used to stack flag
// values over environment values.
func (o Overrides) Merge(other Overrides) Overrides {
	if other.APIBaseURL != "" {
		o.APIBaseURL = other.APIBaseURL
	}
	if other.FrontendBaseURL != "" {
		o.FrontendBaseURL = other.FrontendBaseURL
	}
	if other.BrokerURL != "" {
		o.BrokerURL = other.BrokerURL
	}
	if other.BrokerKey != "" {
		o.BrokerKey = other.BrokerKey
	}
	return o
}

// Resolved holds the effective, read-only client configuration produced by
// [Config.Resolve].
type Resolved struct {
	// APIBaseURL is absolute with no trailing slash.
	APIBaseURL string
	// BasePath is the directory prefix for building sibling-page URLs on the
	// hosted front end. "/" when no front end is configured.
	BasePath string
	// Origin is the hosted front end's scheme://host. Empty means the client
	// is running locally and the loopback guard stays quiet.
	Origin string
	Broker BrokerConfig
}

// DefaultAPIBaseURL is the backend's development address, used when neither an
// override nor the config file supplies a usable base URL.
const DefaultAPIBaseURL = "http://127.0.0.1:8000"

// Resolve derives the effective client configuration. Precedence per value,
// highest first: override (flag/env), config file, derived default. Resolution
// is pure, performs no I/O, and never fails; values that do not parse fall
// through to the next source.
func (c *Config) Resolve(o Overrides) Resolved {
	r := Resolved{BasePath: "/"}

	r.APIBaseURL = firstBaseURL(DefaultAPIBaseURL, o.APIBaseURL, c.API.BaseURL)

	if front, ok := parseBaseURL(o.FrontendBaseURL); ok {
		r.Origin, r.BasePath = splitFrontend(front)
	} else if front, ok := parseBaseURL(c.Frontend.BaseURL); ok {
		r.Origin, r.BasePath = splitFrontend(front)
	}

	r.Broker = c.Broker
	if o.BrokerURL != "" {
		r.Broker.URL = o.BrokerURL
	}
	if o.BrokerKey != "" {
		r.Broker.AnonKey = o.BrokerKey
	}
	if u, ok := parseBaseURL(r.Broker.URL); ok {
		r.Broker.URL = strings.TrimRight(u.String(), "/")
	} else {
		r.Broker.URL = ""
	}
	if r.Broker.Provider == "" {
		r.Broker.Provider = "spotify"
	}
	if r.Broker.ProfilesTable == "" {
		r.Broker.ProfilesTable = "profiles"
	}
	if r.Broker.HistoryTable == "" {
		r.Broker.HistoryTable = "mood_history"
	}

	return r
}

// LoginURL returns the backend's browser login endpoint. It is navigated to
// directly, never called through the request client.
func (r Resolved) LoginURL() string {
	return r.APIBaseURL + "/auth/login"
}

// LoginPageURL returns the login page on the hosted front end when one is
// configured, otherwise the backend login endpoint.
func (r Resolved) LoginPageURL() string {
	if r.Origin == "" {
		return r.LoginURL()
	}
	return r.Origin + r.BasePath + "login.html"
}

// firstBaseURL returns the first candidate that parses as an absolute http(s)
// URL, normalized with no trailing slash, or fallback when none do.
func firstBaseURL(fallback string, candidates ...string) string {
	for _, raw := range candidates {
		if u, ok := parseBaseURL(raw); ok {
			return strings.TrimRight(u.String(), "/")
		}
	}
	return fallback
}

func parseBaseURL(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, false
	}
	return u, true
}

// splitFrontend separates a front-end URL into its origin and the directory
// containing the referenced page, mirroring how a browser derives a base path
// from location.pathname.
func splitFrontend(u *url.URL) (origin, basePath string) {
	origin = u.Scheme + "://" + u.Host
	p := u.Path
	if p == "" {
		return origin, "/"
	}
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return origin, "/"
	}
	return origin, p[:idx+1]
}
