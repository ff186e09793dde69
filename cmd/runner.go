package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytclone/internal/repositories"
	"github.com/desertthunder/ytclone/internal/services"
	"github.com/desertthunder/ytclone/internal/shared"
	"github.com/desertthunder/ytclone/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer // summaries and listings
	progress   io.Writer // progress markers and warnings
	db         *sql.DB
	ownsDB     bool
	client     tasks.YouTubeClient
	transport  http.RoundTripper
	debug      bool
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Config, DB and Client are normally resolved from the --config flag; tests inject them directly.
type RunnerOpts struct {
	Config    *shared.Config
	Logger    *log.Logger
	Output    io.Writer
	Progress  io.Writer
	DB        *sql.DB
	Client    tasks.YouTubeClient
	Transport http.RoundTripper
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Progress == nil {
		opts.Progress = os.Stderr
	}

	return &Runner{
		config:    opts.Config,
		logger:    opts.Logger,
		output:    opts.Output,
		progress:  opts.Progress,
		db:        opts.DB,
		client:    opts.Client,
		transport: opts.Transport,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){authCommand, historyCommand, setupCommand} {
		commands = append(commands, fn(r))
	}
	return commands
}

// before loads the configuration named by --config and applies --debug.
//
// A missing config file falls back to the embedded defaults so setup can create it.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.debug = cmd.Bool("debug")
	shared.SetDebug(r.logger, r.debug)

	if r.config != nil {
		return ctx, nil
	}

	r.configPath = cmd.String("config")
	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		r.config = shared.DefaultConfig()
		return ctx, nil
	}

	config, err := shared.LoadConfig(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config
	return ctx, nil
}

// database opens the configured database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db, r.ownsDB = db, true
	return db, nil
}

// youtube returns the injected client or builds an authenticated one from the stored token.
func (r *Runner) youtube(ctx context.Context) (tasks.YouTubeClient, error) {
	if r.client != nil {
		return r.client, nil
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}

	oauthConfig, err := r.oauthConfig()
	if err != nil {
		return nil, err
	}

	opts := services.TransportOpts{Base: r.transport, RequestsPerSecond: r.config.YouTube.RequestsPerSecond}
	if r.debug {
		opts.Logger = r.logger
	}

	httpClient, err := services.NewAuthenticatedClient(ctx, oauthConfig, repositories.NewCredentialRepository(db),
		r.profile(), services.NewTransport(opts))
	if err != nil {
		return nil, err
	}

	r.client = services.NewYouTubeService(services.YouTubeOpts{
		APIURL:     r.config.YouTube.APIURL,
		BatchURL:   r.config.YouTube.BatchURL,
		HTTPClient: httpClient,
	})
	return r.client, nil
}

func (r *Runner) profile() string {
	if r.config.Credentials.Profile != "" {
		return r.config.Credentials.Profile
	}
	return "ytclone"
}

// Close releases the database if the runner opened it.
func (r *Runner) Close() {
	if r.db != nil && r.ownsDB {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
		r.db, r.ownsDB = nil, false
	}
}

func (r *Runner) writeJSON(data any) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
