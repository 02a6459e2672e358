// Package services implements the request client for the mood-arc backend and the typed operations built on top of it.
//
// # Request Client
//
// [Client] wraps a single backend base URL with the shared call policy: JSON
// serialization with Content-Type set unless the caller chose one, an Accept
// header defaulting to application/json, cookies on every request, and an
// optional supplementary bearer token that is attached only when the caller
// did not set Authorization and the [TokenSource] has a non-empty token.
//
// # Failure Normalization
//
// Every non-success status and every transport failure surfaces as a
// [RequestError]. The message prefers the backend's JSON detail field, then
// message, then the raw body text, then a generic string keyed by status
// code. RequestError unwraps to [shared.ErrAPIRequest].
//
// # Loopback Guard
//
// When a front-end origin is configured and it is not a loopback host, calls
// to a loopback API base are rejected before any network I/O. This catches
// the hosted-deployment misconfiguration where the client would otherwise
// try to reach the operator's own machine.
//
// # Session Continuity
//
// [PersistentJar] snapshots backend-scoped cookies to disk so the cookie
// session survives process restarts, the same continuity a browser gives the
// hosted front end.
//
// # Typed Operations
//
// [Backend] layers the typed calls on the client:
//   - Health: GET /health liveness probe
//   - Me: GET /auth/me session identity probe
//   - Logout: POST /auth/logout, response ignored
//   - Generate: POST /generate-mood-arc-playlist
//
// Generate accepts both key spellings the backend has shipped for the
// playlist name and URL and normalizes them into [PlaylistResult] at this
// boundary, so nothing downstream deals with dual casing.
package services
