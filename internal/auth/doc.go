// Package auth tracks the dual-session authentication state: the backend's
// HTTP cookie session and the optional identity broker's bearer token.
//
// # Single Writer
//
// [Authenticator] is the only component that mutates the [Session] snapshot.
// Everything else reads it through [Authenticator.Session], so there is no
// ambient mutable state to chase.
//
// # Probe Semantics
//
// [Authenticator.CheckBackendSession] never returns an error. Its [Probe]
// distinguishes three outcomes:
//   - [ProbeAuthenticated] : the backend confirmed a session
//   - [ProbeUnauthenticated] : the backend affirmatively said no
//   - [ProbeFailed] : the check itself broke (transport, odd status,
//     undecodable payload)
//
// Callers treat the last two the same way, but tests and logs can tell a
// logged-out user apart from an unreachable backend.
//
// # Best Effort
//
// Broker token reads and logout are best-effort. A missing or broken broker
// never blocks a backend call; it only leaves the bearer token empty.
package auth
