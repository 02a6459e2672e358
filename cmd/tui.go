package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodarc/internal/shared"
	"github.com/desertthunder/moodarc/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive mood arc form.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/moodarc-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	repo, closeRepo := r.openHistory()
	defer closeRepo()
	controller := r.newController(repo)

	model := ui.NewModel(ctx, r.auth, controller, repo, r.resolved.LoginPageURL())
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
