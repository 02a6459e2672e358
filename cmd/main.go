package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/moodarc/internal/auth"
	"github.com/desertthunder/moodarc/internal/broker"
	"github.com/desertthunder/moodarc/internal/services"
	"github.com/desertthunder/moodarc/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			logger.Warnf("failed to load config, using defaults %v", err)
		}
	}

	overrides := shared.EnvOverrides()
	resolved := config.Resolve(overrides)

	clientOpts := services.ClientOpts{Origin: resolved.Origin, Logger: logger}
	if jar, err := services.NewPersistentJar(cookiePath(), resolved.APIBaseURL, logger); err == nil {
		clientOpts.Jar = jar
	} else {
		logger.Warnf("session cookies will not persist %v", err)
	}

	client, err := services.NewClient(resolved.APIBaseURL, clientOpts)
	if err != nil {
		logger.Fatalf("invalid API base URL: %v", err)
	}

	backend := services.NewBackend(client, logger)

	var tokens auth.TokenProvider
	var idBroker *broker.Broker
	redirectURL := fmt.Sprintf("http://%s:%d/callback", config.Server.Host, config.Server.Port)
	if b, err := broker.New(resolved.Broker, redirectURL, nil, logger); err == nil {
		idBroker = b
		tokens = b
	} else if !errors.Is(err, shared.ErrBrokerNotConfigured) {
		logger.Warnf("identity broker disabled %v", err)
	}

	authenticator := auth.NewAuthenticator(backend, tokens, logger)
	client.SetTokenSource(authenticator)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Overrides:  overrides,
		Client:     client,
		Backend:    backend,
		Auth:       authenticator,
		Broker:     idBroker,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "moodarc",
		Usage:    "Generate mood arc playlists from how you feel and how you want to feel",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrLoginRequired) {
			// the command already printed sign-in guidance
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// cookiePath returns the persistent cookie snapshot location, falling back
// to the working directory when no user config dir exists.
func cookiePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".moodarc_cookies.json"
	}
	return filepath.Join(dir, "moodarc", "cookies.json")
}
