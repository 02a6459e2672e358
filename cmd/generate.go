package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/moodarc/internal/flow"
	"github.com/desertthunder/moodarc/internal/shared"
	"github.com/urfave/cli/v3"
)

// Generate runs one submission through the flow controller and renders the
// outcome. Created playlists are recorded in local history when the database
// is available.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	useJSON := cmd.Bool("json")

	repo, closeRepo := r.openHistory()
	defer closeRepo()
	controller := r.newController(repo)

	input := flow.Input{
		CurrentMood: cmd.String("text"),
		GoalMood:    cmd.String("goal"),
		Mode:        cmd.String("mode"),
		Stages:      cmd.Int("stages"),
		Tracks:      cmd.Int("tracks"),
	}

	// Progress updates print as they arrive; the terminal one is folded into
	// the outcome rendering below.
	progressCh := make(chan flow.ProgressUpdate, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if update.Message != "" && !update.State.Terminal() && !useJSON {
				r.writePlain("→ %s\n", update.Message)
			}
		}
	}()

	outcome, err := controller.Submit(ctx, input, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		if errors.Is(err, shared.ErrLoginRequired) {
			r.writePlain("✗ You are not signed in.\n")
			r.writePlain("Sign in at %s, or run: moodarc auth login\n", r.resolved.LoginPageURL())
		}
		return err
	}

	if useJSON {
		payload := map[string]any{
			"state":   outcome.State.String(),
			"message": outcome.Message,
			"result":  outcome.Result,
		}
		if err := r.writeJSON(payload, true); err != nil {
			return err
		}
		if outcome.State == flow.StateFailure {
			return fmt.Errorf("%w: %s", shared.ErrPlaylistNotCreated, outcome.Message)
		}
		return nil
	}

	switch outcome.State {
	case flow.StateSuccess:
		r.writePlainln("✓ Playlist ready: %s", outcome.Result.Name)
		r.renderResult(outcome)
	case flow.StatePartialFailure:
		r.writePlainln("⚠ Playlist created, but tracks must be added by hand")
		r.renderResult(outcome)
	default:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotCreated, outcome.Message)
	}

	return nil
}

// renderResult prints the created playlist's details, including the manual
// track links the backend hands back when automatic population fails.
func (r *Runner) renderResult(outcome *flow.Outcome) {
	result := outcome.Result

	r.writePlain("URL: %s\n", result.URL)
	if result.Mode != "" {
		r.writePlain("Mode: %s\n", result.Mode)
	}
	if result.StartLabel != "" && result.EndLabel != "" {
		r.writePlain("Arc: %s → %s\n", result.StartLabel, result.EndLabel)
	}
	if result.StagesCount > 0 {
		r.writePlain("Stages: %d\n", result.StagesCount)
	}
	r.writePlain("Tracks: %d added of %d requested\n", result.TracksAdded, result.TracksRequested)
	if result.TracksMissed > 0 {
		r.writePlain("Missed: %d tracks had no match\n", result.TracksMissed)
	}
	if result.Note != "" {
		r.writePlain("Note: %s\n", result.Note)
	}
	if result.SafetyNote != "" {
		r.writePlain("\n%s\n", result.SafetyNote)
	}

	if len(result.TrackLinks) > 0 {
		r.writePlain("\nAdd these tracks by hand:\n")
		for i, link := range result.TrackLinks {
			r.writePlain("  %d. %s - %s\n", i+1, link.Artist, link.Name)
			if link.URL != "" {
				r.writePlain("     %s\n", link.URL)
			}
		}
	}

	if len(result.Preview) > 0 {
		r.writePlain("\nSelection preview:\n")
		for _, track := range result.Preview {
			r.writePlain("  stage %d: %s - %s\n", track.Stage, track.Artist, track.Name)
		}
	}
}
