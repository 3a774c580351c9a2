package check

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
	"github.com/slok/scriptd/internal/script"
)

// ServiceConfig is the configuration for the check service.
type ServiceConfig struct {
	ScriptDir   string
	Interpreter string
	// NewEnvironment builds the environment provider, errors are reported as a failed check.
	NewEnvironment func() (script.EnvironmentProvider, error)
	Logger         log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.ScriptDir == "" {
		return fmt.Errorf("script dir is required")
	}
	if c.Interpreter == "" {
		return fmt.Errorf("interpreter is required")
	}
	if c.NewEnvironment == nil {
		return fmt.Errorf("environment factory is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Check"})
	return nil
}

// Service runs preflight checks for the script runner setup.
type Service struct {
	scriptDir   string
	interpreter string
	newEnv      func() (script.EnvironmentProvider, error)
	logger      log.Logger
}

// NewService creates a new check service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		scriptDir:   cfg.ScriptDir,
		interpreter: cfg.Interpreter,
		newEnv:      cfg.NewEnvironment,
		logger:      cfg.Logger,
	}, nil
}

// Run runs all the checks and returns their results.
func (s *Service) Run(ctx context.Context) []model.CheckResult {
	return []model.CheckResult{
		s.checkScriptDir(),
		s.checkInterpreter(),
		s.checkEnvironment(ctx),
	}
}

func (s *Service) checkScriptDir() model.CheckResult {
	const id = "script_dir"

	info, err := os.Stat(s.scriptDir)
	if err != nil {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("script dir %s: %s", s.scriptDir, err)}
	}
	if !info.IsDir() {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("script dir %s is not a directory", s.scriptDir)}
	}

	entries, err := os.ReadDir(s.scriptDir)
	if err != nil {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("script dir %s is not readable: %s", s.scriptDir, err)}
	}
	if len(entries) == 0 {
		return model.CheckResult{ID: id, Status: model.CheckStatusWarning, Message: fmt.Sprintf("script dir %s is empty", s.scriptDir)}
	}

	return model.CheckResult{ID: id, Status: model.CheckStatusOK, Message: fmt.Sprintf("%s (%d entries)", s.scriptDir, len(entries))}
}

func (s *Service) checkInterpreter() model.CheckResult {
	const id = "interpreter"

	info, err := os.Stat(s.interpreter)
	if err != nil {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("interpreter %s: %s", s.interpreter, err)}
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("interpreter %s is not executable", s.interpreter)}
	}

	return model.CheckResult{ID: id, Status: model.CheckStatusOK, Message: s.interpreter}
}

func (s *Service) checkEnvironment(ctx context.Context) model.CheckResult {
	const id = "environment"

	provider, err := s.newEnv()
	if err != nil {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: err.Error()}
	}

	env, err := provider.Environment(ctx)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, fs.ErrPermission) {
			msg += " (the default home is /root, when not running as root set home or credentialsDir in the environment file)"
		}
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: msg}
	}

	return model.CheckResult{ID: id, Status: model.CheckStatusOK, Message: fmt.Sprintf("%d variables", env.Len())}
}
