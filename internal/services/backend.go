package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodarc/internal/models"
	"github.com/desertthunder/moodarc/internal/shared"
)

// Backend endpoint paths.
const (
	healthPath   = "/health"
	mePath       = "/auth/me"
	logoutPath   = "/auth/logout"
	generatePath = "/generate-mood-arc-playlist"
)

// Backend performs the typed operations the CLI needs from the mood-arc
// service, on top of the shared request client.
type Backend struct {
	client *Client
	logger *log.Logger
}

// NewBackend creates a Backend over an existing request client.
func NewBackend(client *Client, logger *log.Logger) *Backend {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Backend{client: client, logger: logger}
}

type healthResponse struct {
	OK bool `json:"ok"`
}

// Health checks backend liveness.
func (b *Backend) Health(ctx context.Context) error {
	resp, err := b.client.Do(ctx, healthPath, CallOptions{})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	var health healthResponse
	if err := json.Unmarshal(resp.Body, &health); err != nil || !health.OK {
		return fmt.Errorf("%w: unexpected health payload", shared.ErrServiceUnavailable)
	}
	return nil
}

type meResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
}

// Me asks the backend who the current cookie session belongs to. A success
// response that fails to decode yields (nil, nil); callers treat a missing
// identity the same as an anonymous one.
func (b *Backend) Me(ctx context.Context) (*Identity, error) {
	resp, err := b.client.Do(ctx, mePath, CallOptions{})
	if err != nil {
		return nil, err
	}

	var me meResponse
	if err := json.Unmarshal(resp.Body, &me); err != nil {
		b.logger.Warn("auth probe returned an undecodable payload", "error", err)
		return nil, nil
	}
	return &Identity{
		Authenticated: me.Authenticated,
		UserID:        me.UserID,
		DisplayName:   me.DisplayName,
	}, nil
}

// Logout ends the backend cookie session. The response body is ignored.
func (b *Backend) Logout(ctx context.Context) error {
	_, err := b.client.Do(ctx, logoutPath, CallOptions{Method: http.MethodPost})
	return err
}

type generateRequest struct {
	Text   string `json:"text"`
	Goal   string `json:"goal"`
	Mode   string `json:"mode"`
	Stages int    `json:"stages"`
	Tracks int    `json:"tracks"`
	Public bool   `json:"public"`
}

// generateResponse accepts both key spellings the backend has shipped for
// the playlist name and URL; normalize folds each pair into one field.
type generateResponse struct {
	PlaylistName    string             `json:"playlist_name"`
	PlaylistNameAlt string             `json:"playlistName"`
	PlaylistURL     string             `json:"playlist_url"`
	PlaylistURLAlt  string             `json:"playlistUrl"`
	TrackLinks      []models.TrackLink `json:"track_links"`
	SpotifyNote     string             `json:"spotify_note"`
	SafetyNote      string             `json:"safety_note"`
	Mode            string             `json:"mode"`
	StartLabel      string             `json:"start_label"`
	EndLabel        string             `json:"end_label"`
	StagesCount     int                `json:"stages_count"`
	TracksRequested int                `json:"tracks_requested"`
	TracksSelected  int                `json:"tracks_selected"`
	TracksAdded     int                `json:"tracks_added"`
	TracksMissed    int                `json:"tracks_missed"`
	TracksPreview   []PreviewTrack     `json:"tracks_preview"`
}

func (g generateResponse) normalize() *PlaylistResult {
	result := &PlaylistResult{
		Name:            g.PlaylistName,
		URL:             g.PlaylistURL,
		TrackLinks:      g.TrackLinks,
		TracksAdded:     g.TracksAdded,
		Note:            g.SpotifyNote,
		Mode:            g.Mode,
		StartLabel:      g.StartLabel,
		EndLabel:        g.EndLabel,
		StagesCount:     g.StagesCount,
		TracksRequested: g.TracksRequested,
		TracksSelected:  g.TracksSelected,
		TracksMissed:    g.TracksMissed,
		Preview:         g.TracksPreview,
		SafetyNote:      g.SafetyNote,
	}
	if result.Name == "" {
		result.Name = g.PlaylistNameAlt
	}
	if result.URL == "" {
		result.URL = g.PlaylistURLAlt
	}
	return result
}

// Generate submits one mood arc and returns the normalized result. A success
// response that fails to decode yields (nil, nil); downstream treats a nil
// result as a creation failure.
func (b *Backend) Generate(ctx context.Context, sub MoodSubmission) (*PlaylistResult, error) {
	body := generateRequest{
		Text:   sub.Text,
		Goal:   sub.Goal,
		Mode:   string(sub.Mode),
		Stages: sub.Stages,
		Tracks: sub.Tracks,
		Public: sub.Public,
	}

	resp, err := b.client.Do(ctx, generatePath, CallOptions{Method: http.MethodPost, Body: body})
	if err != nil {
		return nil, err
	}

	var decoded generateResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		b.logger.Warn("generation returned an undecodable payload", "error", err)
		return nil, nil
	}
	return decoded.normalize(), nil
}
