// Package server provides the loopback HTTP server the CLI runs while an
// identity-broker login bounces through the browser.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [RequestLogger] is the one middleware the CLI installs.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] implements the browser half of the authorization code
// flow: it validates the state parameter (CSRF protection) and delivers the
// authorization code through a channel. Exchanging the code for a token is
// the broker client's job, so this package never touches credentials.
//
// It only processes one callback to prevent replay attacks.
//
// # Usage
//
// When the user runs the broker login command, a temporary HTTP server
// starts on the configured loopback address, renders a small landing page
// once the redirect arrives, and shuts down after handing over the code.
package server
