// package flow drives a mood arc submission from raw input to a terminal
// outcome.
//
// The controller owns the submission state machine: Idle → Validating →
// Submitting → {Success, PartialFailure, Failure} → Idle. Validation and the
// session gate fail before any network call; everything after the gate folds
// into an [Outcome] so callers render one result instead of catching errors.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodarc/internal/auth"
	"github.com/desertthunder/moodarc/internal/models"
	"github.com/desertthunder/moodarc/internal/mood"
	"github.com/desertthunder/moodarc/internal/services"
	"github.com/desertthunder/moodarc/internal/shared"
)

// Submission bounds, matching what the backend accepts.
const (
	MinStages     = 2
	MaxStages     = 10
	DefaultStages = 5
	MinTracks     = 10
	MaxTracks     = 60
	DefaultTracks = 30
)

// FallbackMessage is shown when a failed generation carries no server note.
const FallbackMessage = "Playlist could not be created. Please try again."

// Input is one submission attempt as the user typed it.
type Input struct {
	CurrentMood string
	GoalMood    string
	// Mode overrides the classifier when non-empty.
	Mode   string
	Stages int
	Tracks int
}

// ValidationError reports a single bad input field. Validation failures
// never reach the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return shared.ErrInvalidInput
}

// Outcome is the terminal result of one submission. Result is non-nil
// whenever the backend returned a decodable payload, failures included.
type Outcome struct {
	State   State
	Result  *services.PlaylistResult
	Message string
}

// FormVisible reports whether the input form stays on screen: only a
// failure does, so the user can correct and resubmit. Success and partial
// failure replace the form with the playlist panel.
func (o *Outcome) FormVisible() bool {
	return o.State == StateFailure
}

// Generator is the slice of the backend the controller submits through.
type Generator interface {
	Generate(ctx context.Context, sub services.MoodSubmission) (*services.PlaylistResult, error)
}

// SessionReader supplies the current session snapshot. The authenticator is
// the single writer; the controller only reads.
type SessionReader interface {
	Session() auth.Session
}

// Recorder persists created playlists. Optional; history never gates the
// flow.
type Recorder interface {
	Create(ctx context.Context, entry *models.HistoryEntry) (*models.HistoryEntry, error)
}

// Controller runs submissions one at a time.
type Controller struct {
	mu       sync.Mutex
	state    State
	backend  Generator
	sessions SessionReader
	history  Recorder
	logger   *log.Logger
}

// NewController creates a Controller. history and logger may be nil.
func NewController(backend Generator, sessions SessionReader, history Recorder, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Controller{
		state:    StateIdle,
		backend:  backend,
		sessions: sessions,
		history:  history,
		logger:   logger,
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit runs one submission end to end. Pre-gate conditions come back as
// errors: a *ValidationError for bad fields, [shared.ErrLoginRequired] when
// there is no session, [shared.ErrSubmissionInFlight] while another attempt
// is outstanding. Once the request is sent every result, server note, and
// request failure folds into the returned [Outcome]. The controller is
// re-armed to Idle on every exit path.
func (c *Controller) Submit(ctx context.Context, input Input, progress chan<- ProgressUpdate) (*Outcome, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return nil, shared.ErrSubmissionInFlight
	}
	c.state = StateValidating
	c.mu.Unlock()

	defer c.setState(StateIdle)

	c.send(progress, validatingUpdate())

	sub, err := buildSubmission(input)
	if err != nil {
		return nil, err
	}

	if !c.sessions.Session().Authenticated {
		return nil, shared.ErrLoginRequired
	}

	c.setState(StateSubmitting)
	c.send(progress, submittingUpdate(sub))

	result, err := c.backend.Generate(ctx, sub)
	if err != nil {
		outcome := &Outcome{State: StateFailure, Message: failureMessage(err)}
		c.logger.Warn("generation request failed", "error", err)
		c.send(progress, outcomeUpdate(outcome))
		return outcome, nil
	}

	outcome := outcomeFor(result)
	c.record(ctx, sub, outcome)
	c.send(progress, outcomeUpdate(outcome))
	return outcome, nil
}

// buildSubmission validates and normalizes raw input into the wire shape.
// Playlists are always created private.
func buildSubmission(input Input) (services.MoodSubmission, error) {
	var sub services.MoodSubmission

	current := strings.TrimSpace(input.CurrentMood)
	if current == "" {
		return sub, &ValidationError{Field: "mood", Message: "Please describe your current mood."}
	}

	goal := strings.TrimSpace(input.GoalMood)
	if goal == "" {
		return sub, &ValidationError{Field: "goal", Message: "Please describe your goal mood."}
	}

	stages := input.Stages
	if stages == 0 {
		stages = DefaultStages
	}
	if stages < MinStages || stages > MaxStages {
		return sub, &ValidationError{
			Field:   "stages",
			Message: fmt.Sprintf("Stages must be between %d and %d.", MinStages, MaxStages),
		}
	}

	tracks := input.Tracks
	if tracks == 0 {
		tracks = DefaultTracks
	}
	if tracks < MinTracks || tracks > MaxTracks {
		return sub, &ValidationError{
			Field:   "tracks",
			Message: fmt.Sprintf("Tracks must be between %d and %d.", MinTracks, MaxTracks),
		}
	}

	var tag mood.Tag
	if override := strings.TrimSpace(input.Mode); override != "" {
		parsed, err := mood.ParseTag(override)
		if err != nil {
			return sub, &ValidationError{
				Field:   "mode",
				Message: fmt.Sprintf("Unknown mode %q. Valid modes: %s.", input.Mode, modeList()),
			}
		}
		tag = parsed
	} else {
		tag = mood.Classify(mood.Combine(current, goal))
	}

	return services.MoodSubmission{
		Text:   current,
		Goal:   goal,
		Mode:   tag,
		Stages: stages,
		Tracks: tracks,
		Public: false,
	}, nil
}

// outcomeFor maps a decoded generation result onto a terminal state. A
// playlist URL means the playlist exists: zero tracks added alongside manual
// track links downgrades it to a partial failure, but zero tracks added with
// no links still renders as a plain success, matching how the backend's
// responses have always been read. No URL is a failure carrying the server's
// note verbatim, or [FallbackMessage] when the note is empty.
func outcomeFor(result *services.PlaylistResult) *Outcome {
	if result.Created() {
		if result.Fallback() {
			return &Outcome{State: StatePartialFailure, Result: result, Message: result.Note}
		}
		return &Outcome{State: StateSuccess, Result: result, Message: result.Note}
	}

	message := FallbackMessage
	if result != nil && strings.TrimSpace(result.Note) != "" {
		message = result.Note
	}
	return &Outcome{State: StateFailure, Result: result, Message: message}
}

// record persists a created playlist. Best-effort: history failures are
// logged and never surface.
func (c *Controller) record(ctx context.Context, sub services.MoodSubmission, outcome *Outcome) {
	if c.history == nil || !outcome.Result.Created() {
		return
	}

	result := outcome.Result
	entry := &models.HistoryEntry{
		Name:            result.Name,
		URL:             result.URL,
		Mode:            string(sub.Mode),
		MoodText:        sub.Text,
		GoalText:        sub.Goal,
		Stages:          sub.Stages,
		TracksRequested: sub.Tracks,
		TracksAdded:     result.TracksAdded,
		Note:            result.Note,
		Links:           result.TrackLinks,
	}
	if entry.Name == "" {
		entry.Name = fmt.Sprintf("Mood Arc (%s)", sub.Mode)
	}

	if _, err := c.history.Create(ctx, entry); err != nil {
		c.logger.Warn("could not record playlist in history", "error", err)
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// send delivers a progress update without blocking. A full or absent channel
// drops the update rather than stalling the submission.
func (c *Controller) send(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// failureMessage prefers the normalized request message over the error's
// full rendering, so status suffixes do not leak into the UI.
func failureMessage(err error) string {
	var reqErr *services.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return err.Error()
}

func modeList() string {
	tags := mood.Tags()
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = string(tag)
	}
	return strings.Join(names, ", ")
}
