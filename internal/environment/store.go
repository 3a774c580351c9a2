package environment

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"

	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
)

// StoreConfig is the configuration of the environment store.
type StoreConfig struct {
	// FilePath is an optional YAML environment file.
	FilePath string
	// FileOptional makes a missing FilePath load the defaults instead of failing.
	FileOptional bool
	// Overrides have precedence over the defaults and the file.
	Overrides map[string]string
	Logger    log.Logger
}

func (c *StoreConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "environment.Store"})

	return nil
}

// snapshot is a built environment plus the setup of its supporting directories.
// The setup is retried until it succeeds once.
type snapshot struct {
	env            model.ExecutionEnvironment
	credentialsDir string

	ensureMu sync.Mutex
	ready    atomic.Bool
}

func (s *snapshot) ensure() (created bool, err error) {
	if s.ready.Load() {
		return false, nil
	}

	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.ready.Load() {
		return false, nil
	}

	if err := ensurePrivateDir(s.credentialsDir); err != nil {
		return false, err
	}
	s.ready.Store(true)

	return true, nil
}

// Store holds the process wide execution environment.
// Every caller gets the same immutable snapshot until the store is reloaded.
type Store struct {
	cfg     StoreConfig
	logger  log.Logger
	current atomic.Pointer[snapshot]
}

// NewStore returns a new store with the environment already loaded.
func NewStore(cfg StoreConfig) (*Store, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Store{
		cfg:    cfg,
		logger: cfg.Logger,
	}

	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	s.current.Store(snap)

	return s, nil
}

// FilePath returns the environment file the store loads from.
func (s *Store) FilePath() string { return s.cfg.FilePath }

// Environment returns the current execution environment. The first time a snapshot is used
// its credentials directory is created with owner only permissions, a failed creation is
// retried on the next call.
func (s *Store) Environment(ctx context.Context) (model.ExecutionEnvironment, error) {
	snap := s.current.Load()

	created, err := snap.ensure()
	if err != nil {
		return model.ExecutionEnvironment{}, fmt.Errorf("could not prepare credentials directory %s: %w", snap.credentialsDir, err)
	}
	if created {
		s.logger.WithCtxValues(ctx).Debugf("Credentials directory %s ready", snap.credentialsDir)
	}

	return snap.env, nil
}

// Reload rebuilds the environment and swaps it. On error the current environment is kept.
func (s *Store) Reload(ctx context.Context) error {
	snap, err := s.load()
	if err != nil {
		return err
	}
	s.current.Store(snap)
	s.logger.WithCtxValues(ctx).Infof("Execution environment reloaded (%d variables)", snap.env.Len())

	return nil
}

func (s *Store) load() (*snapshot, error) {
	spec := DefaultSpec()

	if s.cfg.FilePath != "" {
		fileSpec, err := LoadSpecFile(s.cfg.FilePath)
		switch {
		case err == nil:
			spec = spec.Merge(fileSpec)
		case s.cfg.FileOptional && errors.Is(err, fs.ErrNotExist):
			s.logger.Debugf("Environment file %s missing, using defaults", s.cfg.FilePath)
		default:
			return nil, fmt.Errorf("could not load environment file: %w", err)
		}
	}

	spec = spec.Merge(Spec{Vars: s.cfg.Overrides})

	env, err := Build(spec)
	if err != nil {
		return nil, fmt.Errorf("could not build environment: %w", err)
	}

	credentialsDir, _ := env.Get(CredentialsDirVar)

	return &snapshot{
		env:            env,
		credentialsDir: credentialsDir,
	}, nil
}

func ensurePrivateDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	return os.Chmod(dir, 0o700)
}
