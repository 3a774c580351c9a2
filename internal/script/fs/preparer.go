package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
)

// DefaultExecBits are the execute bits set on scripts by default (owner execute).
const DefaultExecBits fs.FileMode = 0o100

// PreparerConfig is the configuration for the filesystem script preparer.
type PreparerConfig struct {
	// ExecBits are the bits ORed into the script mode, only permission bits are used.
	// Defaults to DefaultExecBits.
	ExecBits fs.FileMode
	Logger   log.Logger
}

func (c *PreparerConfig) defaults() error {
	c.ExecBits = c.ExecBits & fs.ModePerm
	if c.ExecBits == 0 {
		c.ExecBits = DefaultExecBits
	}

	if c.ExecBits&0o111 == 0 {
		return fmt.Errorf("exec bits %o don't contain any execute bit", c.ExecBits)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "script.fs.Preparer"})

	return nil
}

// Preparer makes scripts executable keeping the rest of their permission bits.
type Preparer struct {
	execBits fs.FileMode
	logger   log.Logger
}

// NewPreparer returns a new filesystem script preparer.
func NewPreparer(cfg PreparerConfig) (*Preparer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Preparer{
		execBits: cfg.ExecBits,
		logger:   cfg.Logger,
	}, nil
}

func (p *Preparer) Prepare(ctx context.Context, s model.ResolvedScript) error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return fmt.Errorf("could not stat script %s: %w", s.Path, err)
	}

	mode := info.Mode() & (fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)
	newMode := mode | p.execBits
	if newMode == mode {
		return nil
	}

	if err := os.Chmod(s.Path, newMode); err != nil {
		return fmt.Errorf("could not set permissions on script %s: %w", s.Path, err)
	}

	p.logger.WithCtxValues(ctx).Infof("Changed %s permissions from %s to %s", s.Path, mode, newMode)

	return nil
}
