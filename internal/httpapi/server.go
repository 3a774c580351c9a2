package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/slok/scriptd/internal/log"
)

// ServerConfig is the configuration for the HTTP server.
type ServerConfig struct {
	ListenAddr string
	Handler    http.Handler
	// ShutdownTimeout is the graceful shutdown budget.
	ShutdownTimeout time.Duration
	Logger          log.Logger
}

func (c *ServerConfig) defaults() error {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Handler == nil {
		return fmt.Errorf("handler is required")
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "httpapi.Server"})
	return nil
}

// Server is the HTTP server of the service.
type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          log.Logger
}

// NewServer creates a new HTTP server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	return &Server{
		server: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           cfg.Handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          cfg.Logger,
	}, nil
}

// Run starts the server and blocks until ctx is cancelled. It performs a
// graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", s.server.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve is like Run using an already created listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Requests inherit the server context so running scripts are killed on shutdown.
	baseCtx, cancelBase := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBase()
	s.server.BaseContext = func(net.Listener) context.Context { return baseCtx }

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("HTTP server listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		s.logger.Infof("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			// Scripts still running after the budget are killed.
			cancelBase()
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		return nil
	}
}
