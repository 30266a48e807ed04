package main

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursemap/internal/catalog"
	"github.com/desertthunder/coursemap/internal/editor"
	"github.com/desertthunder/coursemap/internal/repositories"
	"github.com/desertthunder/coursemap/internal/services"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/desertthunder/coursemap/internal/store"
	"github.com/desertthunder/coursemap/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	courses    services.CourseAPI
	users      services.UserAPI
	files      services.FileAPI
	auth       *store.AuthStore
	regions    *catalog.Regions
	validator  *editor.Validator
	engine     *tasks.CourseEngine
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      *bufio.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without a database the session lives in memory for the duration of the command and drafts are unavailable.
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API.BaseURL, opts.HTTPClient)
	}

	var sessions store.SessionStore = &store.MemorySessions{}
	var runs tasks.RunRecorder
	if opts.DB != nil {
		sessions = repositories.NewSessionRepository(opts.DB)
		runs = repositories.NewExportRunRepository(opts.DB)
	}

	courses := services.NewCourseService(opts.API)
	users := services.NewUserService(opts.API)
	auth := store.NewAuthStore(services.NewAuthService(opts.API), users, sessions, shared.WithLogger(opts.Logger, "component", "auth"))
	if err := auth.Restore(); err != nil {
		opts.Logger.Warn("discarded saved session", "error", err)
	}

	regions := catalog.DefaultRegions()

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		courses:    courses,
		users:      users,
		files:      services.NewFileService(opts.API),
		auth:       auth,
		regions:    regions,
		validator:  editor.NewValidator(regions, opts.Config.Editor),
		engine:     tasks.NewCourseEngine(courses, runs, shared.WithLogger(opts.Logger, "component", "export")),
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      bufio.NewReader(opts.Input),
	}
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, courseCommand, draftCommand, catalogCommand, uploadCommand,
		apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// drafts returns the draft repository or an error telling the user how to create the database.
func (r *Runner) drafts() (*repositories.DraftRepository, error) {
	if r.db == nil {
		return nil, fmt.Errorf("%w: database not initialized, run 'cmap setup database'", shared.ErrServiceUnavailable)
	}
	return repositories.NewDraftRepository(r.db), nil
}

// requireToken returns the session token or [shared.ErrNotAuthenticated].
func (r *Runner) requireToken() (string, error) {
	token := r.auth.Token()
	if token == "" {
		return "", fmt.Errorf("%w: run 'cmap auth login' first", shared.ErrNotAuthenticated)
	}
	return token, nil
}

// prompt reads one line, trimming the newline. An empty default is returned for blank input.
func (r *Runner) prompt(label, fallback string) (string, error) {
	if fallback != "" {
		r.writePlain("%s [%s]: ", label, fallback)
	} else {
		r.writePlain("%s: ", label)
	}

	line, err := r.input.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback, nil
	}
	return line, nil
}

// valueOrPrompt returns the flag value, asking for it when the flag was not given.
func (r *Runner) valueOrPrompt(cmd *cli.Command, flag, label string) (string, error) {
	if v := cmd.String(flag); v != "" {
		return v, nil
	}
	v, err := r.prompt(label, "")
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, flag)
	}
	return v, nil
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
