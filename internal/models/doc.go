// Package models defines domain values shared by the moodarc client packages.
//
// The package contains two kinds of types:
//
// 1. Boundary values produced by decoding backend responses
//   - [TrackLink] : a name/artist/url triple rendered as a manual fallback
//     when the backend created a playlist but could not populate it
//
// 2. Persistent entities backing the local history store
//   - [HistoryEntry] : one generation outcome (playlist name, url, mode, the
//     submitted texts, track counts, server note, fallback links)
//
// Persistent entities carry uuid identifiers, a monotonic sequence number
// assigned by the repository, and soft-delete timestamps managed by the
// repositories package.
package models
