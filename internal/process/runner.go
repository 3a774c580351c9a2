package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
)

const (
	// DefaultInterpreter is the shell used to run scripts.
	DefaultInterpreter = "/bin/bash"
	// DefaultTimeout is the default script execution deadline.
	DefaultTimeout = 60 * time.Second
	// DefaultWaitDelay is how long we wait for output pipes after the script has been killed.
	DefaultWaitDelay = 2 * time.Second
)

// RunnerConfig is the configuration for the process runner.
type RunnerConfig struct {
	// Interpreter is the program that receives the script path as its only argument.
	Interpreter string
	// Timeout is the execution deadline of a script, 0 disables it.
	Timeout time.Duration
	// DisableTimeout disables the deadline, used to distinguish 0 from unset.
	DisableTimeout bool
	WaitDelay      time.Duration
	Logger         log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.Interpreter == "" {
		c.Interpreter = DefaultInterpreter
	}
	if !filepath.IsAbs(c.Interpreter) {
		return fmt.Errorf("interpreter must be an absolute path: %q", c.Interpreter)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout can't be negative")
	}
	if c.Timeout == 0 && !c.DisableTimeout {
		c.Timeout = DefaultTimeout
	}
	if c.DisableTimeout {
		c.Timeout = 0
	}

	if c.WaitDelay <= 0 {
		c.WaitDelay = DefaultWaitDelay
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "process.Runner"})

	return nil
}

// Runner runs scripts as child processes of the interpreter.
type Runner struct {
	interpreter string
	timeout     time.Duration
	waitDelay   time.Duration
	logger      log.Logger
}

// NewRunner returns a new process runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Runner{
		interpreter: cfg.Interpreter,
		timeout:     cfg.Timeout,
		waitDelay:   cfg.WaitDelay,
		logger:      cfg.Logger,
	}, nil
}

// Run executes the script and blocks until it finishes, the deadline expires or ctx is cancelled.
// In the last two cases the whole process group of the script is killed.
func (r *Runner) Run(ctx context.Context, s model.ResolvedScript, env model.ExecutionEnvironment) (*model.ProcessResult, error) {
	logger := r.logger.WithCtxValues(ctx)

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, r.interpreter, s.Path)
	cmd.Env = env.Environ()
	cmd.Dir = filepath.Dir(s.Path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.waitDelay
	setProcessGroup(cmd)

	logger.Debugf("Running %s %s", r.interpreter, s.Path)
	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	exitCode, err := r.classify(ctx, runCtx, s, cmd.Process != nil, err)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Script %s exited with code %d in %s", s.Name, exitCode, duration)

	return &model.ProcessResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: duration,
	}, nil
}

// classify maps the result of running the script to its exit code or error. A script that
// finished on its own is a result even if the deadline expired right after.
func (r *Runner) classify(ctx, runCtx context.Context, s model.ResolvedScript, started bool, runErr error) (int, error) {
	if runErr == nil {
		return 0, nil
	}

	// Context errors have priority, the exit error is only the consequence of the kill.
	if ctxErr := runCtx.Err(); ctxErr != nil && started {
		if errors.Is(ctxErr, context.DeadlineExceeded) && ctx.Err() == nil {
			return 0, fmt.Errorf("script %s killed after %s: %w", s.Name, r.timeout, model.ErrTimeout)
		}
		return 0, fmt.Errorf("script %s cancelled: %w", s.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		return 0, fmt.Errorf("could not run script %s: %w", s.Name, runErr)
	}

	return exitErr.ExitCode(), nil
}
