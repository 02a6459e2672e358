package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodarc/internal/auth"
	"github.com/desertthunder/moodarc/internal/broker"
	"github.com/desertthunder/moodarc/internal/flow"
	"github.com/desertthunder/moodarc/internal/repositories"
	"github.com/desertthunder/moodarc/internal/services"
	"github.com/desertthunder/moodarc/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	resolved   shared.Resolved
	client     *services.Client
	backend    *services.Backend
	auth       *auth.Authenticator
	broker     *broker.Broker
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Overrides  shared.Overrides
	Client     *services.Client
	Backend    *services.Backend
	Auth       *auth.Authenticator
	Broker     *broker.Broker
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	resolved := opts.Config.Resolve(opts.Overrides)

	client := opts.Client
	if client == nil {
		built, err := services.NewClient(resolved.APIBaseURL, services.ClientOpts{Logger: opts.Logger})
		if err != nil {
			opts.Logger.Warn("request client unavailable", "error", err)
		} else {
			client = built
		}
	}

	backend := opts.Backend
	if backend == nil && client != nil {
		backend = services.NewBackend(client, opts.Logger)
	}

	authenticator := opts.Auth
	if authenticator == nil && backend != nil {
		var tokens auth.TokenProvider
		if opts.Broker != nil {
			tokens = opts.Broker
		}
		authenticator = auth.NewAuthenticator(backend, tokens, opts.Logger)
		client.SetTokenSource(authenticator)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		resolved:   resolved,
		client:     client,
		backend:    backend,
		auth:       authenticator,
		broker:     opts.Broker,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, used to move logs to a file while the
// TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		configCommand, statusCommand, authCommand, moodCommand, generateCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireBackend guards actions that talk to the backend.
func (r *Runner) requireBackend() error {
	if r.backend == nil || r.auth == nil {
		return fmt.Errorf("%w: request client not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// historyRepo opens the local history database. The caller owns the returned
// close function.
func (r *Runner) historyRepo() (*repositories.HistoryRepository, func(), error) {
	db, err := shared.OpenHistoryDB(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return repositories.NewHistoryRepository(db), func() { db.Close() }, nil
}

// openHistory is the degrading variant for commands where history is a side
// concern: a database that will not open disables recording instead of
// failing the run.
func (r *Runner) openHistory() (*repositories.HistoryRepository, func()) {
	repo, closeFn, err := r.historyRepo()
	if err != nil {
		r.logger.Warn("local history unavailable", "error", err)
		return nil, func() {}
	}
	return repo, closeFn
}

// newController wires a flow controller over the backend. The explicit nil
// branch matters: a typed nil recorder would slip past the controller's own
// guard.
func (r *Runner) newController(repo *repositories.HistoryRepository) *flow.Controller {
	if repo == nil {
		return flow.NewController(r.backend, r.auth, nil, r.logger)
	}
	return flow.NewController(r.backend, r.auth, repo, r.logger)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
