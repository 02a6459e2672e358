package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/moodarc/internal/auth"
	"github.com/desertthunder/moodarc/internal/services"
	"github.com/desertthunder/moodarc/internal/shared"
	tu "github.com/desertthunder/moodarc/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			client, err := services.NewClient("http://127.0.0.1:9999", services.ClientOpts{Logger: logger})
			if err != nil {
				t.Fatalf("failed to build client: %v", err)
			}
			backend := services.NewBackend(client, logger)
			authenticator := auth.NewAuthenticator(backend, nil, logger)

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Client:  client,
				Backend: backend,
				Auth:    authenticator,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.client != client {
				t.Error("expected client to be set")
			}
			if runner.backend != backend {
				t.Error("expected backend to be set")
			}
			if runner.auth != authenticator {
				t.Error("expected authenticator to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("builds the request chain when none is provided", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.client == nil {
				t.Error("expected a request client to be built")
			}
			if runner.backend == nil {
				t.Error("expected a backend to be built")
			}
			if runner.auth == nil {
				t.Error("expected an authenticator to be built")
			}
		})

		t.Run("applies overrides during resolution", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Overrides: shared.Overrides{APIBaseURL: "http://api.example.test:8080"},
			})

			if runner.resolved.APIBaseURL != "http://api.example.test:8080" {
				t.Errorf("expected override to win, got %s", runner.resolved.APIBaseURL)
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with empty configPath", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "",
			})

			if runner.configPath != "" {
				t.Errorf("expected empty configPath, got %s", runner.configPath)
			}
		})
	})

	t.Run("SetLogger", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		replacement := shared.NewLogger(nil)

		runner.SetLogger(replacement)

		if runner.logger != replacement {
			t.Error("expected logger to be replaced")
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlainln", func(t *testing.T) {
		t.Run("wraps the text in newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlainln("line %d", 1)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "\nline 1\n" {
				t.Errorf("expected wrapped line, got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlainln("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("requireBackend", func(t *testing.T) {
		t.Run("passes when the request chain is wired", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if err := runner.requireBackend(); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})

		t.Run("fails when the backend is missing", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			runner.backend = nil

			err := runner.requireBackend()
			if err == nil {
				t.Fatal("expected error without a backend")
			}
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("historyRepo", func(t *testing.T) {
		t.Run("opens and migrates the database", func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "history.db")
			config := shared.DefaultConfig()
			config.Database.Path = dbPath

			runner := NewRunner(RunnerOpts{Config: config})

			repo, closeRepo, err := runner.historyRepo()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer closeRepo()

			if repo == nil {
				t.Fatal("expected a repository")
			}
			tu.AssertFileExists(t, dbPath)
		})

		t.Run("fails when the path cannot be created", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = filepath.Join(t.TempDir(), "missing", "history.db")

			runner := NewRunner(RunnerOpts{Config: config})

			_, _, err := runner.historyRepo()
			if err == nil {
				t.Fatal("expected error for an unreachable path")
			}
			if !strings.Contains(err.Error(), "failed to open history database") {
				t.Errorf("expected open error, got %v", err)
			}
		})
	})

	t.Run("openHistory", func(t *testing.T) {
		t.Run("returns a repository when the database opens", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = filepath.Join(t.TempDir(), "history.db")

			runner := NewRunner(RunnerOpts{Config: config})

			repo, closeRepo := runner.openHistory()
			defer closeRepo()

			if repo == nil {
				t.Error("expected a repository")
			}
		})

		t.Run("degrades to nil when the database will not open", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = filepath.Join(t.TempDir(), "missing", "history.db")

			runner := NewRunner(RunnerOpts{Config: config})

			repo, closeRepo := runner.openHistory()

			if repo != nil {
				t.Error("expected nil repository on failure")
			}
			closeRepo()
		})
	})

	t.Run("newController", func(t *testing.T) {
		t.Run("without a repository", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.newController(nil) == nil {
				t.Error("expected a controller")
			}
		})

		t.Run("with a repository", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = filepath.Join(t.TempDir(), "history.db")

			runner := NewRunner(RunnerOpts{Config: config})

			repo, closeRepo, err := runner.historyRepo()
			if err != nil {
				t.Fatalf("failed to open history database: %v", err)
			}
			defer closeRepo()

			if runner.newController(repo) == nil {
				t.Error("expected a controller")
			}
		})
	})
}
