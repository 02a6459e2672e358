// package services implements the request client and the typed operations
// the moodarc client performs against the mood-arc backend
package services

import (
	"context"

	"github.com/desertthunder/moodarc/internal/models"
	"github.com/desertthunder/moodarc/internal/mood"
)

// TokenSource supplies a bearer token for outgoing requests. Implementations
// swallow their own errors and return "" when no token is available, so the
// request client never blocks on the supplementary auth path.
type TokenSource interface {
	BearerToken(ctx context.Context) string
}

// MoodSubmission is one generation attempt. Constructed fresh per submit,
// never mutated afterwards.
type MoodSubmission struct {
	Text   string
	Goal   string
	Mode   mood.Tag
	Stages int
	Tracks int
	Public bool
}

// Identity is the backend's answer to the "who am I" probe.
type Identity struct {
	Authenticated bool
	UserID        string
	DisplayName   string
}

// PreviewTrack is one entry of the backend's selection preview.
type PreviewTrack struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Stage  int    `json:"stage"`
}

// PlaylistResult is the normalized generation response. A missing URL is a
// terminal creation failure even when the HTTP call itself succeeded.
type PlaylistResult struct {
	Name            string
	URL             string
	TrackLinks      []models.TrackLink
	TracksAdded     int
	Note            string
	Mode            string
	StartLabel      string
	EndLabel        string
	StagesCount     int
	TracksRequested int
	TracksSelected  int
	TracksMissed    int
	Preview         []PreviewTrack
	SafetyNote      string
}

// Created reports whether the backend actually produced a playlist.
func (r *PlaylistResult) Created() bool {
	return r != nil && r.URL != ""
}

// Fallback reports whether the playlist exists but automatic population
// failed and the backend handed back manual track links instead.
func (r *PlaylistResult) Fallback() bool {
	return r.Created() && r.TracksAdded == 0 && len(r.TrackLinks) > 0
}
