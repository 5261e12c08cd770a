package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/filmhub/internal/controllers"
	"github.com/desertthunder/filmhub/internal/repositories"
	"github.com/desertthunder/filmhub/internal/services"
	"github.com/desertthunder/filmhub/internal/session"
	"github.com/desertthunder/filmhub/internal/shared"
	"github.com/desertthunder/filmhub/internal/tasks"
)

// RawAPI performs undecoded requests for the api get/post/dump commands.
type RawAPI interface {
	Get(ctx context.Context, path string) (*services.RawResponse, error)
	Post(ctx context.Context, path string, data []byte) (*services.RawResponse, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage and the API client are opened on first use so that commands like `setup config` work without either.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	storage    session.Storage
	store      *session.Store
	guard      *session.Guard
	auth       *controllers.Auth
	api        services.Gateway
	raw        RawAPI
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	engine     *tasks.RatingsEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Storage    session.Storage
	API        services.Gateway
	Raw        RawAPI
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		storage:    opts.Storage,
		api:        opts.API,
		raw:        opts.Raw,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		engine:     tasks.NewRatingsEngine(opts.Logger),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, ratingsCommand, recommendationsCommand,
		watchListCommand, watchedCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.config == nil {
		config, err := shared.LoadConfigOrDefault(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	return ctx, nil
}

// After releases the storage database when one was opened.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// SetLogger swaps the logger, e.g. to keep log lines out of the TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = tasks.NewRatingsEngine(logger)
}

func (r *Runner) cfg() *shared.Config {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	return r.config
}

// connect opens local storage, restores the session and builds the API client, once.
func (r *Runner) connect(ctx context.Context) error {
	if r.store != nil {
		return nil
	}
	cfg := r.cfg()

	if r.storage == nil {
		db, err := shared.OpenStorageDatabase(cfg.Storage)
		if err != nil {
			return err
		}
		r.db = db
		r.storage = repositories.NewLocalStorage(db)
	}

	r.store = session.NewStore(r.storage, r.logger)
	r.guard = session.NewGuard(r.store)
	if err := r.store.Restore(ctx); err != nil {
		r.logger.Warn("session restore failed, continuing logged out", "error", err)
	}

	if r.api == nil {
		httpClient := r.httpClient
		if httpClient == nil {
			httpClient = services.NewHTTPClient(cfg.API, r.logger)
		}
		client := services.NewClient(cfg.API.BaseURL, httpClient, r.store.Token, r.logger)
		r.api = client
		if r.raw == nil {
			r.raw = client
		}
	}

	r.auth = controllers.NewAuth(r.api, r.store, r.logger)
	return nil
}

// requireAuth connects and fails unless a session is present.
func (r *Runner) requireAuth(ctx context.Context) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	return r.guard.Require(ctx)
}

func (r *Runner) controllerOpts() controllers.Options {
	return controllers.OptionsFromConfig(r.cfg().UI, r.logger)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

// writeRaw prints a raw response body, pretty-printing it when it is JSON.
func (r *Runner) writeRaw(resp *services.RawResponse, pretty bool) error {
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	if _, err := r.output.Write(append(resp.Body, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func validJSON(data string) error {
	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}
	return nil
}
