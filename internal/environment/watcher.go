package environment

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/slok/scriptd/internal/log"
)

// Reloader is something that can reload its state.
type Reloader interface {
	Reload(ctx context.Context) error
}

// WatcherConfig is the configuration of the environment file watcher.
type WatcherConfig struct {
	FilePath string
	Reloader Reloader
	// Debounce is the quiet time after the last change before reloading.
	Debounce time.Duration
	Logger   log.Logger
}

func (c *WatcherConfig) defaults() error {
	if c.FilePath == "" {
		return fmt.Errorf("file path is required")
	}
	if c.Reloader == nil {
		return fmt.Errorf("reloader is required")
	}
	if c.Debounce <= 0 {
		c.Debounce = 500 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "environment.Watcher"})

	return nil
}

// Watcher reloads the environment when its file changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	reloader Reloader
	debounce time.Duration
	logger   log.Logger
}

// NewWatcher returns a new environment file watcher. The parent directory is watched so
// files replaced by editors or config management (rename over) are also detected.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	path, err := filepath.Abs(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path of %q: %w", cfg.FilePath, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		watcher:  w,
		path:     path,
		reloader: cfg.Reloader,
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
	}, nil
}

// Run watches for file changes and reloads. Blocks until ctx is cancelled.
// Reloads run one at a time on the Run goroutine, none happens after Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.logger.Infof("Watching environment file %s", w.path)

	debounce := time.NewTimer(w.debounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			debounce.Reset(w.debounce)

		case <-debounce.C:
			if ctx.Err() != nil {
				return nil
			}
			if err := w.reloader.Reload(ctx); err != nil {
				w.logger.Errorf("Environment reload failed, keeping previous environment: %s", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warningf("File watcher error: %s", err)
		}
	}
}
