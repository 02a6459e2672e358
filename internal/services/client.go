// Request client for the mood-arc backend.
//
// Every outgoing call gets the same treatment: JSON serialization with the
// right Content-Type, an Accept header, cookies from the persistent jar, an
// optional supplementary bearer token, and failure normalization into a
// single [RequestError] carrying the best human-readable message available.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/moodarc/internal/shared"
)

// RequestError is the uniform failure type for any non-success HTTP status or
// transport failure. Status is 0 when no HTTP status applies (transport
// errors and the pre-flight loopback guard).
type RequestError struct {
	Message string
	Status  int
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

// Unwrap ties RequestError into the sentinel hierarchy so callers can use
// errors.Is(err, shared.ErrAPIRequest).
func (e *RequestError) Unwrap() error {
	return shared.ErrAPIRequest
}

// CallOptions shape a single request. Method defaults to GET. Body values
// other than []byte and io.Reader are serialized as JSON.
type CallOptions struct {
	Method string
	Body   any
	Header http.Header
}

// ClientOpts configures optional collaborators for [NewClient]; zero values
// select defaults.
type ClientOpts struct {
	// HTTPClient defaults to a fresh client. No timeout is imposed either
	// way; a hanging request is the caller's context's problem.
	HTTPClient *http.Client
	// Jar overrides the cookie jar. Defaults to an in-memory jar; commands
	// install a [PersistentJar] so the backend session survives invocations.
	Jar http.CookieJar
	// Tokens supplies supplementary bearer tokens. Usually installed after
	// construction via [Client.SetTokenSource] because the authenticator
	// talks through this same client.
	Tokens TokenSource
	// Origin is the hosted front end's origin for the loopback guard. Empty
	// means the client runs locally and the guard stays quiet.
	Origin string
	// Limiter paces outgoing calls. Defaults to 5 requests/second.
	Limiter *rate.Limiter
	Logger  *log.Logger
}

// Client wraps one backend base URL with the shared call policy. Cookies are
// always sent (the jar rides on the embedded http.Client), so the backend
// cookie session works regardless of identity-broker state.
type Client struct {
	baseURL    *url.URL
	origin     string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient creates a request client for the given absolute base URL.
func NewClient(baseURL string, opts ClientOpts) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("%w: API base URL %q is not an absolute http(s) URL", shared.ErrInvalidConfig, baseURL)
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		clone := *opts.HTTPClient
		hc = &clone
	}
	if opts.Jar != nil {
		hc.Jar = opts.Jar
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(5), 5)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    base,
		origin:     opts.Origin,
		httpClient: hc,
		tokens:     opts.Tokens,
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// SetTokenSource installs the bearer-token supplier. Separate from
// construction because the authenticator that supplies tokens itself calls
// the backend through this client.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// BaseURL returns the client's normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Jar exposes the cookie jar so session import can seed it.
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// Response is a successful raw backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON reports whether the response declared a JSON content type.
func (r *Response) JSON() bool {
	ct := r.Header.Get("Content-Type")
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

// Payload applies the response unwrapping policy: JSON bodies decode to their
// natural Go value and a decode failure despite the success status degrades
// to a nil payload; non-JSON text is wrapped as {"message": text}; an empty
// body is nil.
func (r *Response) Payload() any {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if r.JSON() {
		var v any
		if err := json.Unmarshal(r.Body, &v); err != nil {
			return nil
		}
		return v
	}
	return map[string]any{"message": string(r.Body)}
}

// Call performs a request against a server-relative path and unwraps the
// response per [Response.Payload]. All failures surface as *RequestError.
func (c *Client) Call(ctx context.Context, path string, opts CallOptions) (any, error) {
	resp, err := c.Do(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return resp.Payload(), nil
}

// Do performs a request and returns the raw successful response. Non-success
// statuses and transport failures come back as *RequestError; the error
// message prefers the JSON detail or message field, then the raw body text,
// then a generic string keyed by status code.
func (c *Client) Do(ctx context.Context, path string, opts CallOptions) (*Response, error) {
	if err := c.guardLoopback(); err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	body, rawBody, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+normalizePath(path), body)
	if err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	for key, values := range opts.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if opts.Body != nil && !rawBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Authorization") == "" && c.tokens != nil {
		if token := c.tokens.BearerToken(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("request cancelled: %v", err)}
	}

	c.logger.Debug("calling backend", "method", method, "path", normalizePath(path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("failed to read response: %v", err), Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{Message: errorMessage(raw, resp.StatusCode), Status: resp.StatusCode}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

// encodeBody prepares the request body. []byte and io.Reader pass through
// untouched (rawBody true) so binary payloads never get a forced JSON
// Content-Type; everything else is marshaled as JSON.
func encodeBody(body any) (io.Reader, bool, error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return bytes.NewReader(b), true, nil
	case io.Reader:
		return b, true, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, false, &RequestError{Message: fmt.Sprintf("failed to encode request body: %v", err)}
		}
		return bytes.NewReader(data), false, nil
	}
}

// errorMessage extracts the most useful human-readable text from an error
// response body.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// guardLoopback rejects calls before any network I/O when the API base is a
// loopback address but the configured front end is not. A hosted deployment
// must never silently try to reach a developer's machine.
func (c *Client) guardLoopback() error {
	if c.origin == "" || !isLoopbackHost(c.baseURL.Hostname()) {
		return nil
	}
	origin, err := url.Parse(c.origin)
	if err != nil || isLoopbackHost(origin.Hostname()) {
		return nil
	}
	return &RequestError{Message: fmt.Sprintf(
		"API base URL %s points at a loopback address but the front end runs on %s; set api.base_url to a reachable host",
		c.baseURL, c.origin,
	)}
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}
