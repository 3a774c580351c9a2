package httpapi

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
)

// HandlerConfig is the configuration of the HTTP handler.
type HandlerConfig struct {
	// Mode selects how scripts are served, defaults to model.ResponseModeExecute.
	Mode           model.ResponseMode
	RunService     RunService
	ContentService ContentService
	// ExposeExitCode adds the script exit code as a response header.
	ExposeExitCode bool
	Logger         log.Logger
}

func (c *HandlerConfig) defaults() error {
	if c.Mode == "" {
		c.Mode = model.ResponseModeExecute
	}
	if err := c.Mode.Validate(); err != nil {
		return err
	}

	if c.Mode == model.ResponseModeExecute && c.RunService == nil {
		return fmt.Errorf("run service is required on %s mode", c.Mode)
	}
	if c.Mode == model.ResponseModeContent && c.ContentService == nil {
		return fmt.Errorf("content service is required on %s mode", c.Mode)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "httpapi.Handler"})

	return nil
}

// NewHandler returns the HTTP handler of the service:
//
//	GET /run/{script_name}
//	GET /healthz
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var resp responder
	switch cfg.Mode {
	case model.ResponseModeContent:
		resp = contentResponder{svc: cfg.ContentService, logger: cfg.Logger}
	default:
		resp = executeResponder{svc: cfg.RunService, exposeExitCode: cfg.ExposeExitCode, logger: cfg.Logger}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /run/{script_name...}", func(w http.ResponseWriter, r *http.Request) {
		resp.respond(w, r, r.PathValue("script_name"))
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok\n")
	})

	return withRequestLog(cfg.Logger, mux), nil
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withRequestLog sets a run ID on every request (context and response) and logs the request.
func withRequestLog(logger log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runID := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
		w.Header().Set(headerRunID, runID)

		ctx := logger.SetValuesOnCtx(r.Context(), log.Kv{"run-id": runID})
		r = r.WithContext(ctx)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		logger.WithCtxValues(ctx).Infof("%s %s %d %s", r.Method, r.URL.EscapedPath(), rec.status, time.Since(start))
	})
}
