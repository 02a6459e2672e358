package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/moodarc/internal/models"
	"github.com/desertthunder/moodarc/internal/mood"
	"github.com/desertthunder/moodarc/internal/shared"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) (*Backend, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	client, err := NewClient(server.URL, ClientOpts{})
	if err != nil {
		server.Close()
		t.Fatalf("failed to create client: %v", err)
	}
	return NewBackend(client, nil), server.Close
}

func TestBackendHealth(t *testing.T) {
	t.Run("Healthy Backend", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("expected path '/health', got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		})
		defer cleanup()

		if err := backend.Health(context.Background()); err != nil {
			t.Errorf("expected healthy backend, got %v", err)
		}
	})

	t.Run("Unhealthy Payload", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]bool{"ok": false})
		})
		defer cleanup()

		if err := backend.Health(context.Background()); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Unreachable Backend", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		defer cleanup()

		if err := backend.Health(context.Background()); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestBackendMe(t *testing.T) {
	t.Run("Authenticated Session", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/me" {
				t.Errorf("expected path '/auth/me', got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"authenticated": true,
				"user_id":       "user-1",
				"display_name":  "Dana",
			})
		})
		defer cleanup()

		identity, err := backend.Me(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !identity.Authenticated {
			t.Error("expected authenticated identity")
		}
		if identity.UserID != "user-1" || identity.DisplayName != "Dana" {
			t.Errorf("unexpected identity %+v", identity)
		}
	})

	t.Run("Unauthenticated Session Surfaces The Status", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
		})
		defer cleanup()

		_, err := backend.Me(context.Background())

		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("expected *RequestError, got %v", err)
		}
		if reqErr.Status != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", reqErr.Status)
		}
		if reqErr.Message != "Not authenticated" {
			t.Errorf("expected backend detail message, got %q", reqErr.Message)
		}
	})

	t.Run("Undecodable Success Yields No Identity And No Error", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, "<html>login page</html>")
		})
		defer cleanup()

		identity, err := backend.Me(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if identity != nil {
			t.Errorf("expected nil identity, got %+v", identity)
		}
	})
}

func TestBackendLogout(t *testing.T) {
	t.Run("Posts And Ignores The Body", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST method, got %s", r.Method)
			}
			if r.URL.Path != "/auth/logout" {
				t.Errorf("expected path '/auth/logout', got %s", r.URL.Path)
			}
			io.WriteString(w, "whatever the server says")
		})
		defer cleanup()

		if err := backend.Logout(context.Background()); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Failure Comes Back As RequestError", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		defer cleanup()

		err := backend.Logout(context.Background())

		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Errorf("expected *RequestError, got %v", err)
		}
	})
}

func TestBackendGenerate(t *testing.T) {
	submission := MoodSubmission{
		Text:   "exhausted after work",
		Goal:   "calm and ready for bed",
		Mode:   mood.TagSleep,
		Stages: 5,
		Tracks: 30,
	}

	t.Run("Sends The Expected Request Body", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/generate-mood-arc-playlist" {
				t.Errorf("expected generation path, got %s", r.URL.Path)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
			}

			body, _ := io.ReadAll(r.Body)
			var data map[string]any
			if err := json.Unmarshal(body, &data); err != nil {
				t.Fatalf("failed to unmarshal request body: %v", err)
			}
			if data["text"] != "exhausted after work" {
				t.Errorf("unexpected text %v", data["text"])
			}
			if data["goal"] != "calm and ready for bed" {
				t.Errorf("unexpected goal %v", data["goal"])
			}
			if data["mode"] != "sleep" {
				t.Errorf("unexpected mode %v", data["mode"])
			}
			if data["stages"] != float64(5) || data["tracks"] != float64(30) {
				t.Errorf("unexpected counts stages=%v tracks=%v", data["stages"], data["tracks"])
			}
			if data["public"] != false {
				t.Errorf("expected public=false, got %v", data["public"])
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"playlist_url": "https://open.spotify.com/playlist/p1"})
		})
		defer cleanup()

		result, err := backend.Generate(context.Background(), submission)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.Created() {
			t.Error("expected a created playlist")
		}
	})

	t.Run("Decodes Snake Case Responses", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"playlist_url":     "https://open.spotify.com/playlist/p1",
				"playlist_name":    "Mood Arc: Exhausted -> Calm (sleep)",
				"mode":             "sleep",
				"start_label":      "Exhausted",
				"end_label":        "Calm",
				"stages_count":     5,
				"tracks_requested": 30,
				"tracks_selected":  28,
				"tracks_added":     28,
				"tracks_missed":    2,
				"spotify_note":     "",
				"safety_note":      "",
				"tracks_preview": []map[string]any{
					{"name": "Weightless", "artist": "Marconi Union", "stage": 1},
				},
			})
		})
		defer cleanup()

		result, err := backend.Generate(context.Background(), submission)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Name != "Mood Arc: Exhausted -> Calm (sleep)" {
			t.Errorf("unexpected name %q", result.Name)
		}
		if result.URL != "https://open.spotify.com/playlist/p1" {
			t.Errorf("unexpected URL %q", result.URL)
		}
		if result.TracksAdded != 28 || result.TracksMissed != 2 {
			t.Errorf("unexpected counts added=%d missed=%d", result.TracksAdded, result.TracksMissed)
		}
		if len(result.Preview) != 1 || result.Preview[0].Artist != "Marconi Union" {
			t.Errorf("unexpected preview %+v", result.Preview)
		}
	})

	t.Run("Accepts Camel Case Spellings", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"playlistUrl":  "https://open.spotify.com/playlist/p2",
				"playlistName": "Mood Arc: Tense -> Loose (calm)",
			})
		})
		defer cleanup()

		result, err := backend.Generate(context.Background(), submission)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.URL != "https://open.spotify.com/playlist/p2" {
			t.Errorf("camel case URL not picked up, got %q", result.URL)
		}
		if result.Name != "Mood Arc: Tense -> Loose (calm)" {
			t.Errorf("camel case name not picked up, got %q", result.Name)
		}
	})

	t.Run("Snake Case Wins When Both Are Present", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"playlist_url": "https://open.spotify.com/playlist/snake",
				"playlistUrl":  "https://open.spotify.com/playlist/camel",
			})
		})
		defer cleanup()

		result, err := backend.Generate(context.Background(), submission)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.URL != "https://open.spotify.com/playlist/snake" {
			t.Errorf("expected snake case to win, got %q", result.URL)
		}
	})

	t.Run("Carries Track Links And Notes", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"playlist_url": "https://open.spotify.com/playlist/p3",
				"tracks_added": 0,
				"spotify_note": "Spotify playlist step failed: rate limited",
				"track_links": []map[string]string{
					{"name": "Breathe", "artist": "Telepopmusik", "url": "https://open.spotify.com/track/t1"},
				},
			})
		})
		defer cleanup()

		result, err := backend.Generate(context.Background(), submission)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.Fallback() {
			t.Error("expected fallback result")
		}
		if result.Note != "Spotify playlist step failed: rate limited" {
			t.Errorf("unexpected note %q", result.Note)
		}
		want := models.TrackLink{Name: "Breathe", Artist: "Telepopmusik", URL: "https://open.spotify.com/track/t1"}
		if len(result.TrackLinks) != 1 || result.TrackLinks[0] != want {
			t.Errorf("unexpected track links %+v", result.TrackLinks)
		}
	})

	t.Run("Undecodable Success Yields No Result And No Error", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, "{not json at all")
		})
		defer cleanup()

		result, err := backend.Generate(context.Background(), submission)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result != nil {
			t.Errorf("expected nil result, got %+v", result)
		}
	})

	t.Run("Backend Failure Surfaces The Detail", func(t *testing.T) {
		backend, cleanup := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": "stages must be between 2 and 10"})
		})
		defer cleanup()

		_, err := backend.Generate(context.Background(), submission)

		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("expected *RequestError, got %v", err)
		}
		if reqErr.Message != "stages must be between 2 and 10" {
			t.Errorf("unexpected message %q", reqErr.Message)
		}
	})
}

func TestPlaylistResult(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		var missing *PlaylistResult
		if missing.Created() {
			t.Error("nil result should not count as created")
		}
		if (&PlaylistResult{}).Created() {
			t.Error("empty URL should not count as created")
		}
		if !(&PlaylistResult{URL: "https://open.spotify.com/playlist/p1"}).Created() {
			t.Error("result with URL should count as created")
		}
	})

	t.Run("Fallback", func(t *testing.T) {
		links := []models.TrackLink{{Name: "Breathe"}}

		if !(&PlaylistResult{URL: "u", TracksAdded: 0, TrackLinks: links}).Fallback() {
			t.Error("zero adds with links should be a fallback")
		}
		if (&PlaylistResult{URL: "u", TracksAdded: 12, TrackLinks: links}).Fallback() {
			t.Error("populated playlist is not a fallback")
		}
		if (&PlaylistResult{URL: "u", TracksAdded: 0}).Fallback() {
			t.Error("zero adds without links is not a fallback")
		}
		if (&PlaylistResult{TracksAdded: 0, TrackLinks: links}).Fallback() {
			t.Error("uncreated playlist is not a fallback")
		}
	})
}
