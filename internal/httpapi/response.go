package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/slok/scriptd/internal/app/content"
	"github.com/slok/scriptd/internal/app/run"
	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
)

const (
	headerRunID    = "X-Run-Id"
	headerExitCode = "X-Exit-Code"

	contentTypeText   = "text/plain; charset=utf-8"
	contentTypeBinary = "application/octet-stream"
)

// RunService runs scripts.
type RunService interface {
	Run(ctx context.Context, req run.Request) (*model.ProcessResult, error)
}

// ContentService returns script contents.
type ContentService interface {
	Get(ctx context.Context, req content.Request) (*model.ScriptContent, error)
}

// responder serves a script request using one of the response modes.
type responder interface {
	respond(w http.ResponseWriter, r *http.Request, scriptName string)
}

type executeResponder struct {
	svc            RunService
	exposeExitCode bool
	logger         log.Logger
}

func (e executeResponder) respond(w http.ResponseWriter, r *http.Request, scriptName string) {
	result, err := e.svc.Run(r.Context(), run.Request{ScriptName: scriptName})
	if err != nil {
		writeError(w, r, e.logger, err)
		return
	}

	if e.exposeExitCode {
		w.Header().Set(headerExitCode, strconv.Itoa(result.ExitCode))
	}
	writeText(w, http.StatusOK, result.Output())
}

type contentResponder struct {
	svc    ContentService
	logger log.Logger
}

func (c contentResponder) respond(w http.ResponseWriter, r *http.Request, scriptName string) {
	sc, err := c.svc.Get(r.Context(), content.Request{ScriptName: scriptName})
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeBinary)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(scriptName)))
	w.Header().Set("Content-Length", strconv.Itoa(len(sc.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(sc.Data)
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotValid):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger log.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError || status == http.StatusGatewayTimeout {
		logger.WithCtxValues(r.Context()).Errorf("Script request failed: %s", err)
	}

	writeText(w, status, fmt.Sprintf("%s\n", err))
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", contentTypeText)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
