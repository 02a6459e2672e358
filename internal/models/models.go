// package models defines the data model for the mood-arc playlist client
package models

import (
	"fmt"
	"time"
)

// TrackLink is a manual fallback link for a track the backend selected but
// could not add to the playlist automatically.
type TrackLink struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	URL    string `json:"url"`
}

// HistoryEntry is a locally recorded playlist generation outcome.
type HistoryEntry struct {
	ID              string      `json:"id"`
	Seq             int64       `json:"seq"`
	Name            string      `json:"name"`
	URL             string      `json:"url,omitempty"`
	Mode            string      `json:"mode"`
	MoodText        string      `json:"mood_text"`
	GoalText        string      `json:"goal_text"`
	Stages          int         `json:"stages"`
	TracksRequested int         `json:"tracks_requested"`
	TracksAdded     int         `json:"tracks_added"`
	Note            string      `json:"note,omitempty"`
	Links           []TrackLink `json:"links,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Validate checks the fields the history store requires before insert.
func (e *HistoryEntry) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("history entry requires a playlist name")
	}
	if e.Mode == "" {
		return fmt.Errorf("history entry requires a mode")
	}
	if e.Stages < 0 || e.TracksRequested < 0 || e.TracksAdded < 0 {
		return fmt.Errorf("history entry counts must be non-negative")
	}
	return nil
}

// Populated reports whether the backend managed to add any tracks.
func (e *HistoryEntry) Populated() bool {
	return e.TracksAdded > 0
}
