package main

import (
	"context"

	"github.com/desertthunder/moodarc/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes a starter config.toml from the embedded template.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Edit it to point at your backend, then run: moodarc status\n")
	return nil
}

// ConfigShow prints the effective configuration after file, environment, and
// derived defaults resolve.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	dbPath := r.config.Database.Path
	if dbPath == "" {
		dbPath = "moodarc.db"
	}

	if cmd.Bool("json") {
		out := map[string]any{
			"api_base_url":      r.resolved.APIBaseURL,
			"login_page":        r.resolved.LoginPageURL(),
			"frontend_origin":   r.resolved.Origin,
			"base_path":         r.resolved.BasePath,
			"broker_configured": r.resolved.Broker.URL != "",
			"history_database":  dbPath,
		}
		return r.writeJSON(out, true)
	}

	r.writePlain("API base URL: %s\n", r.resolved.APIBaseURL)
	r.writePlain("Login page: %s\n", r.resolved.LoginPageURL())
	if r.resolved.Origin != "" {
		r.writePlain("Frontend origin: %s\n", r.resolved.Origin)
		r.writePlain("Base path: %s\n", r.resolved.BasePath)
	}
	if r.resolved.Broker.URL != "" {
		r.writePlain("Broker: %s (provider %s)\n", r.resolved.Broker.URL, r.resolved.Broker.Provider)
	} else {
		r.writePlain("Broker: not configured\n")
	}
	r.writePlain("History database: %s\n", dbPath)

	return nil
}
