package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
	"github.com/slok/scriptd/internal/script"
)

// ServiceConfig is the configuration for the run service.
type ServiceConfig struct {
	Locator     script.Locator
	Preparer    script.Preparer
	Environment script.EnvironmentProvider
	Runner      script.Runner
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Locator == nil {
		return fmt.Errorf("locator is required")
	}
	if c.Preparer == nil {
		return fmt.Errorf("preparer is required")
	}
	if c.Environment == nil {
		return fmt.Errorf("environment is required")
	}
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Run"})
	return nil
}

// Service runs scripts: locate, prepare, build the environment and execute.
type Service struct {
	locator  script.Locator
	preparer script.Preparer
	env      script.EnvironmentProvider
	runner   script.Runner
	logger   log.Logger
}

// NewService creates a new run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		locator:  cfg.Locator,
		preparer: cfg.Preparer,
		env:      cfg.Environment,
		runner:   cfg.Runner,
		logger:   cfg.Logger,
	}, nil
}

// Request contains the parameters for running a script.
type Request struct {
	ScriptName string
}

// Run runs a script. A script exiting with a non zero code is a valid result, not an error.
func (s *Service) Run(ctx context.Context, req Request) (*model.ProcessResult, error) {
	logger := s.logger.WithCtxValues(ctx)

	// 1. Locate.
	sc, err := s.locator.Locate(ctx, req.ScriptName)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Errorf("Script not found: %s", err)
		}
		return nil, fmt.Errorf("could not locate script: %w", err)
	}

	// 2. Prepare.
	if err := s.preparer.Prepare(ctx, *sc); err != nil {
		return nil, fmt.Errorf("could not prepare script: %w", err)
	}

	// 3. Environment.
	env, err := s.env.Environment(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get execution environment: %w", err)
	}

	// 4. Execute.
	result, err := s.runner.Run(ctx, *sc, env)
	if err != nil {
		return nil, fmt.Errorf("could not run script: %w", err)
	}

	if result.Stdout != "" {
		logger.Infof("Script %s stdout: %s", sc.Name, result.Stdout)
	}
	if result.Stderr != "" {
		logger.Errorf("Script %s stderr: %s", sc.Name, result.Stderr)
	}
	logger.Debugf("Script %s exited with code %d in %s", sc.Name, result.ExitCode, result.Duration)

	return result, nil
}
