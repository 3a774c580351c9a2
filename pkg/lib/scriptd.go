package lib

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/slok/scriptd/internal/app/check"
	"github.com/slok/scriptd/internal/app/content"
	"github.com/slok/scriptd/internal/app/run"
	"github.com/slok/scriptd/internal/conventions"
	"github.com/slok/scriptd/internal/environment"
	"github.com/slok/scriptd/internal/httpapi"
	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
	"github.com/slok/scriptd/internal/process"
	"github.com/slok/scriptd/internal/script"
	scriptfs "github.com/slok/scriptd/internal/script/fs"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. An empty Config{} runs
// scripts from /scripts with /bin/bash and a 60s deadline.
type Config struct {
	// ScriptDir is the trusted directory where scripts are looked up.
	// Default: /scripts.
	ScriptDir string

	// Interpreter is the absolute path of the program that runs the scripts.
	// Default: /bin/bash.
	Interpreter string

	// Timeout is the script execution deadline.
	// Default: 60s.
	Timeout time.Duration

	// DisableTimeout runs scripts without deadline, Timeout is ignored.
	DisableTimeout bool

	// ExecBits are the permission bits added to scripts before running them.
	// Default: 0o100 (owner execute).
	ExecBits fs.FileMode

	// EnvFile is an optional YAML file with the execution environment.
	// When empty only the defaults and Env are used.
	EnvFile string

	// Env are extra environment variables, they have precedence over EnvFile.
	Env map[string]string

	// ExposeExitCode adds the X-Exit-Code header on the HTTP handler responses.
	ExposeExitCode bool

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.ScriptDir == "" {
		c.ScriptDir = conventions.DefaultScriptDir
	}

	if c.Interpreter == "" {
		c.Interpreter = process.DefaultInterpreter
	}

	if c.Timeout == 0 {
		c.Timeout = process.DefaultTimeout
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point for running scripts programmatically.
//
// Create a Client with [New]. A Client is safe for concurrent use.
type Client struct {
	cfg     Config
	locator *scriptfs.Locator
	store   *environment.Store
	run     *run.Service
	content *content.Service
	logger  log.Logger
}

// New creates a new SDK client.
//
// The script directory must exist and, when set, the environment file must be
// valid.
func New(cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, mapError(fmt.Errorf("invalid config: %w", err))
	}

	locator, err := scriptfs.NewLocator(scriptfs.LocatorConfig{
		Root:   cfg.ScriptDir,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create script locator: %w", err))
	}

	preparer, err := scriptfs.NewPreparer(scriptfs.PreparerConfig{
		ExecBits: cfg.ExecBits,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create script preparer: %w", err))
	}

	store, err := environment.NewStore(environment.StoreConfig{
		FilePath:  cfg.EnvFile,
		Overrides: cfg.Env,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create environment: %w", err))
	}

	runner, err := process.NewRunner(process.RunnerConfig{
		Interpreter:    cfg.Interpreter,
		Timeout:        cfg.Timeout,
		DisableTimeout: cfg.DisableTimeout,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create process runner: %w", err))
	}

	runSvc, err := run.NewService(run.ServiceConfig{
		Locator:     locator,
		Preparer:    preparer,
		Environment: store,
		Runner:      runner,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create run service: %w", err)
	}

	contentSvc, err := content.NewService(content.ServiceConfig{
		Locator: locator,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create content service: %w", err)
	}

	return &Client{
		cfg:     cfg,
		locator: locator,
		store:   store,
		run:     runSvc,
		content: contentSvc,
		logger:  cfg.Logger,
	}, nil
}

// Run runs a script by its name relative to the script directory and waits
// for it to finish.
//
// Returns [ErrNotValid] if the name escapes the script directory, [ErrNotFound]
// if the script does not exist or [ErrTimeout] if it exceeded the deadline.
func (c *Client) Run(ctx context.Context, scriptName string) (*RunResult, error) {
	res, err := c.run.Run(ctx, run.Request{ScriptName: scriptName})
	if err != nil {
		return nil, mapError(err)
	}

	r := fromInternalProcessResult(*res)
	return &r, nil
}

// Content returns a script file without running it.
func (c *Client) Content(ctx context.Context, scriptName string) (*ScriptContent, error) {
	sc, err := c.content.Get(ctx, content.Request{ScriptName: scriptName})
	if err != nil {
		return nil, mapError(err)
	}

	r := fromInternalScriptContent(*sc)
	return &r, nil
}

// Environment returns the environment scripts are run with.
func (c *Client) Environment(ctx context.Context) (map[string]string, error) {
	env, err := c.store.Environment(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return env.Map(), nil
}

// Reload rebuilds the environment from the environment file. On error the
// previous environment is kept.
func (c *Client) Reload(ctx context.Context) error {
	return mapError(c.store.Reload(ctx))
}

// Handler returns the scriptd HTTP handler serving scripts in the given mode.
func (c *Client) Handler(mode ResponseMode) (http.Handler, error) {
	h, err := httpapi.NewHandler(httpapi.HandlerConfig{
		Mode:           model.ResponseMode(mode),
		RunService:     c.run,
		ContentService: c.content,
		ExposeExitCode: c.cfg.ExposeExitCode,
		Logger:         c.logger,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return h, nil
}

// Doctor runs preflight checks of the client setup.
//
// Returns a slice of [CheckResult] describing each check's outcome.
func (c *Client) Doctor(ctx context.Context) ([]CheckResult, error) {
	svc, err := check.NewService(check.ServiceConfig{
		ScriptDir:   c.locator.Root(),
		Interpreter: c.cfg.Interpreter,
		NewEnvironment: func() (script.EnvironmentProvider, error) {
			return c.store, nil
		},
		Logger: c.logger,
	})
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create check service: %w", err))
	}

	return fromInternalCheckResults(svc.Run(ctx)), nil
}
