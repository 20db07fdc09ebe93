package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nmdb/internal/services"
	"github.com/desertthunder/nmdb/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client // overrides the client built from fetch.timeout
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

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, exportCommand, updatesCommand, sectionsCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file named by --config, overlays the environment and sets the log level.
//
// A missing config file keeps the current configuration, which defaults to the embedded example.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	configPath := cmd.String("config")
	if configPath != "" {
		config, err := shared.LoadConfig(configPath)
		switch {
		case err == nil:
			r.config = config
		case errors.Is(err, fs.ErrNotExist):
			r.logger.Debug("config file not found, using defaults", "path", configPath)
		default:
			return ctx, err
		}
	}

	r.config.ApplyEnv()
	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

// client builds a catalog API client from the fetch settings.
func (r *Runner) client() *services.Client {
	httpClient := r.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: r.config.Fetch.Timeout}
	}
	return services.NewClient(services.ClientOpts{
		BaseURL:           r.config.API.BaseURL,
		HTTPClient:        httpClient,
		UserAgent:         r.config.API.UserAgent,
		MaxAttempts:       r.config.Fetch.MaxAttempts,
		RetryDelay:        r.config.Fetch.RetryDelay,
		MaxRetryDelay:     r.config.Fetch.MaxRetryDelay,
		RequestsPerSecond: r.config.Fetch.RequestsPerSecond,
		Logger:            shared.WithLogger(r.logger, "component", "client"),
	})
}

// service builds the catalog service with the configured selectors.
func (r *Runner) service() *services.CatalogService {
	return services.NewCatalogService(r.client(), services.Selectors{
		Country:     r.config.API.Country,
		Membership:  r.config.API.Membership,
		PackageType: r.config.API.PackageType,
		SDKVersion:  r.config.API.SDKVersion,
	})
}

// openLedger opens and migrates the run ledger. It returns a nil database when database.path is empty.
func (r *Runner) openLedger() (*sql.DB, error) {
	if r.config.Database.Path == "" {
		return nil, nil
	}
	db, err := shared.OpenLedger(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run ledger: %w", err)
	}
	return db, nil
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
