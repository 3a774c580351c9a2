package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
)

// LocatorConfig is the configuration for the filesystem script locator.
type LocatorConfig struct {
	// Root is the trusted directory where all the scripts live.
	Root   string
	Logger log.Logger
}

func (c *LocatorConfig) defaults() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "script.fs.Locator"})

	return nil
}

// Locator resolves script names against a trusted root directory on the filesystem.
type Locator struct {
	root   string
	logger log.Logger
}

// NewLocator returns a new filesystem script locator. The root must exist.
func NewLocator(cfg LocatorConfig) (*Locator, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path of %q: %w", cfg.Root, err)
	}

	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve script root %q: %w", cfg.Root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("could not stat script root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("script root %q is not a directory", root)
	}

	return &Locator{
		root:   root,
		logger: cfg.Logger,
	}, nil
}

// Root returns the canonical trusted root.
func (l *Locator) Root() string { return l.root }

func (l *Locator) Locate(ctx context.Context, name string) (*model.ResolvedScript, error) {
	logger := l.logger.WithCtxValues(ctx)

	if name == "" || strings.ContainsRune(name, 0) {
		return nil, fmt.Errorf("invalid script name %q: %w", name, model.ErrNotValid)
	}

	path := filepath.Join(l.root, name)
	if !l.contains(path) {
		logger.Warningf("Rejected script name %q, resolves outside %s", name, l.root)
		return nil, fmt.Errorf("script name %q resolves outside of the script root: %w", name, model.ErrNotValid)
	}
	logger.Infof("Resolved script %q to %s", name, path)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("script %s: %w", path, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not stat script %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("script %s is a directory: %w", path, model.ErrNotFound)
	}

	// Symlinks inside the root could point anywhere.
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve script %s: %w", path, err)
	}
	if !l.contains(realPath) {
		logger.Warningf("Rejected script %s, links outside %s", path, l.root)
		return nil, fmt.Errorf("script %q links outside of the script root: %w", name, model.ErrNotValid)
	}

	return &model.ResolvedScript{
		Name: name,
		Path: realPath,
	}, nil
}

// contains returns true if path is a file path strictly inside the root.
func (l *Locator) contains(path string) bool {
	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		return false
	}

	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return false
	}

	return true
}
