package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodarc/internal/auth"
	"github.com/desertthunder/moodarc/internal/shared"
	"github.com/urfave/cli/v3"
)

// Status checks backend health and reports the current session state.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	r.logger.Info("checking backend health", "base", r.resolved.APIBaseURL)

	if err := r.backend.Health(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	r.writePlain("✓ Service is healthy\n")

	probe := r.auth.CheckBackendSession(ctx)
	switch probe.Status {
	case auth.ProbeAuthenticated:
		r.writePlain("Session: ✓ Signed in as %s\n", probe.Session.DisplayName)
	case auth.ProbeUnauthenticated:
		r.writePlain("Session: ✗ Not signed in\n")
		r.writePlain("Sign in at %s\n", r.resolved.LoginPageURL())
	default:
		r.writePlain("Session: ⚠ Could not check (%v)\n", probe.Err)
	}

	if probe.Session.BearerToken != "" {
		r.writePlain("Broker: ✓ Token attached\n")
	}

	return nil
}
