package flow

import (
	"fmt"

	"github.com/desertthunder/moodarc/internal/services"
)

// ProgressUpdate represents a state change during one submission.
//
// Used to send real-time updates to the CLI or TUI layer for display.
type ProgressUpdate struct {
	State   State  // Submission state the flow just entered
	Message string // Human-readable message for display
	Data    any    // Optional payload, the *Outcome on terminal states
}

// Submission state enumeration
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSuccess
	StatePartialFailure
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StatePartialFailure:
		return "partial_failure"
	case StateFailure:
		return "failure"
	default:
		return ""
	}
}

// Terminal reports whether the state ends a submission.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StatePartialFailure || s == StateFailure
}

func validatingUpdate() ProgressUpdate {
	return ProgressUpdate{
		State:   StateValidating,
		Message: "Checking your mood arc...",
	}
}

func submittingUpdate(sub services.MoodSubmission) ProgressUpdate {
	return ProgressUpdate{
		State:   StateSubmitting,
		Message: fmt.Sprintf("Generating %s arc (%d stages, %d tracks)...", sub.Mode, sub.Stages, sub.Tracks),
	}
}

func outcomeUpdate(o *Outcome) ProgressUpdate {
	update := ProgressUpdate{State: o.State, Data: o}
	switch o.State {
	case StateSuccess:
		update.Message = fmt.Sprintf("✓ Playlist ready: %s", o.Result.Name)
	case StatePartialFailure:
		update.Message = fmt.Sprintf("⚠ Playlist created, but tracks must be added by hand: %s", o.Result.Name)
	default:
		update.Message = fmt.Sprintf("✗ %s", o.Message)
	}
	return update
}
