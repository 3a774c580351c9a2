package lib

import (
	"errors"
	"time"

	"github.com/slok/scriptd/internal/model"
)

var (
	// ErrNotFound is returned when a script does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned when the input is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrTimeout is returned when a script exceeds its deadline.
	ErrTimeout = errors.New("timeout")
)

// ResponseMode selects how the HTTP handler serves scripts.
type ResponseMode string

const (
	// ResponseModeExecute runs the script and returns its output.
	ResponseModeExecute ResponseMode = "execute"
	// ResponseModeContent returns the script file itself.
	ResponseModeContent ResponseMode = "content"
)

// RunResult is the outcome of a script run.
type RunResult struct {
	// Stdout is the captured standard output.
	Stdout string
	// Stderr is the captured standard error.
	Stderr string
	// ExitCode is the exit code of the script.
	ExitCode int
	// Duration is the wall time the script took.
	Duration time.Duration
}

// Output returns stdout if the script wrote any, otherwise stderr.
func (r RunResult) Output() string {
	if r.Stdout != "" {
		return r.Stdout
	}
	return r.Stderr
}

// ScriptContent is a script file.
type ScriptContent struct {
	// Name is the requested script name.
	Name string
	// Path is the resolved absolute path of the script.
	Path string
	// Data is the script file content.
	Data []byte
}

// CheckStatus represents the status of a preflight check.
type CheckStatus string

const (
	// CheckStatusOK indicates the check passed.
	CheckStatusOK CheckStatus = "ok"
	// CheckStatusWarning indicates the check passed with a warning.
	CheckStatusWarning CheckStatus = "warning"
	// CheckStatusError indicates the check failed.
	CheckStatusError CheckStatus = "error"
)

// CheckResult represents the result of a single preflight check.
type CheckResult struct {
	// ID is a unique identifier for the check (e.g. "interpreter").
	ID string
	// Message is a human-readable description of the result.
	Message string
	// Status is the check status.
	Status CheckStatus
}

// --- Internal conversion helpers ---

func fromInternalProcessResult(r model.ProcessResult) RunResult {
	return RunResult{
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
		ExitCode: r.ExitCode,
		Duration: r.Duration,
	}
}

func fromInternalScriptContent(c model.ScriptContent) ScriptContent {
	return ScriptContent{
		Name: c.Name,
		Path: c.Path,
		Data: c.Data,
	}
}

func fromInternalCheckResults(results []model.CheckResult) []CheckResult {
	out := make([]CheckResult, len(results))
	for i, r := range results {
		out[i] = CheckResult{
			ID:      r.ID,
			Message: r.Message,
			Status:  CheckStatus(r.Status),
		}
	}
	return out
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	case errors.Is(err, model.ErrTimeout):
		return joinErrors(err, ErrTimeout)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
