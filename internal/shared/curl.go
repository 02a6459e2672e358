// Utilities for parsing cURL commands copied out of a browser session.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

// CurlSession holds the session-bearing parts of a browser "Copy as cURL"
// command: the request URL, plain headers, the cookie string, and the bearer
// token when an Authorization header carries one.
type CurlSession struct {
	URL     string
	Headers map[string]string
	Cookie  string
	Bearer  string
}

// ParseCurlFile reads a file containing a cURL command and extracts the session.
func ParseCurlFile(path string) (*CurlSession, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

var (
	curlHeaderRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlCookieRegex = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
	curlURLRegex    = regexp.MustCompile(`https?://[^'"\s]+`)
)

// ParseCurlCommand parses a cURL command string and extracts the session
// parts. The Cookie header is separated from the plain headers; an explicit
// -b flag wins over a Cookie header.
func ParseCurlCommand(cmd string) (*CurlSession, error) {
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	session := &CurlSession{Headers: make(map[string]string)}

	if m := curlURLRegex.FindString(cmd); m != "" {
		session.URL = m
	}

	for _, match := range curlHeaderRegex.FindAllStringSubmatch(cmd, -1) {
		headerLine := match[1]
		if headerLine == "" {
			headerLine = match[2]
		}

		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "cookie":
			if session.Cookie == "" {
				session.Cookie = value
			}
		case "authorization":
			session.Headers[key] = value
			if len(value) > 7 && strings.EqualFold(value[:7], "bearer ") {
				session.Bearer = strings.TrimSpace(value[7:])
			}
		default:
			session.Headers[key] = value
		}
	}

	if m := curlCookieRegex.FindStringSubmatch(cmd); len(m) > 1 {
		if m[1] != "" {
			session.Cookie = m[1]
		} else if m[2] != "" {
			session.Cookie = m[2]
		}
	}

	if len(session.Headers) == 0 && session.Cookie == "" {
		return nil, fmt.Errorf("no session headers found in curl command")
	}

	return session, nil
}

// Cookies converts the captured cookie string into [http.Cookie] values
// suitable for seeding a cookie jar.
func (c *CurlSession) Cookies() []*http.Cookie {
	if c.Cookie == "" {
		return nil
	}

	var cookies []*http.Cookie
	for _, pair := range strings.Split(c.Cookie, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	return cookies
}
