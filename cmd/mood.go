package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moodarc/internal/mood"
	"github.com/desertthunder/moodarc/internal/shared"
	"github.com/urfave/cli/v3"
)

// Mood previews the mode classifier: it prints the tag a generation with
// this mood text (and optional goal) would run under.
func (r *Runner) Mood(ctx context.Context, cmd *cli.Command) error {
	text := cmd.StringArg("text")
	goal := cmd.String("goal")

	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: mood text is required", shared.ErrMissingArgument)
	}

	tag := mood.Classify(mood.Combine(text, goal))

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{"mode": string(tag)}, false)
	}
	return r.writePlain("%s\n", tag)
}
