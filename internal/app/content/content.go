package content

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
	"github.com/slok/scriptd/internal/script"
)

// ServiceConfig is the configuration for the content service.
type ServiceConfig struct {
	Locator script.Locator
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Locator == nil {
		return fmt.Errorf("locator is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Content"})
	return nil
}

// Service returns the raw content of scripts.
type Service struct {
	locator script.Locator
	logger  log.Logger
}

// NewService creates a new content service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		locator: cfg.Locator,
		logger:  cfg.Logger,
	}, nil
}

// Request contains the parameters for getting a script content.
type Request struct {
	ScriptName string
}

// Get returns the content of a script.
func (s *Service) Get(ctx context.Context, req Request) (*model.ScriptContent, error) {
	sc, err := s.locator.Locate(ctx, req.ScriptName)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.WithCtxValues(ctx).Errorf("Script not found: %s", err)
		}
		return nil, fmt.Errorf("could not locate script: %w", err)
	}

	data, err := os.ReadFile(sc.Path)
	if err != nil {
		return nil, fmt.Errorf("could not read script %s: %w", sc.Path, err)
	}

	return &model.ScriptContent{
		Name: sc.Name,
		Path: sc.Path,
		Data: data,
	}, nil
}
