package model

import (
	"fmt"
	"time"
)

// ScriptRequest is the caller supplied script reference.
// The name is untrusted.
type ScriptRequest struct {
	Name string
}

// ResolvedScript is a script that has been located under the trusted root.
// Path is absolute and canonical, and it existed at the moment of resolution.
type ResolvedScript struct {
	// Name is the name the caller requested.
	Name string
	// Path is the absolute path of the script on disk.
	Path string
}

// ProcessResult is the outcome of a script process that ran until termination.
type ProcessResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Output returns the body that represents the result: stdout if there is any, stderr otherwise.
func (p ProcessResult) Output() string {
	if p.Stdout != "" {
		return p.Stdout
	}

	return p.Stderr
}

// ScriptContent is the raw content of a located script.
type ScriptContent struct {
	Name string
	Path string
	Data []byte
}

// ResponseMode selects how a located script is served back to the caller.
type ResponseMode string

const (
	// ResponseModeExecute runs the script and returns its captured output.
	ResponseModeExecute ResponseMode = "execute"
	// ResponseModeContent returns the raw script file as an attachment.
	ResponseModeContent ResponseMode = "content"
)

// Validate validates the response mode.
func (r ResponseMode) Validate() error {
	switch r {
	case ResponseModeExecute, ResponseModeContent:
		return nil
	}

	return fmt.Errorf("unknown response mode %q: %w", r, ErrNotValid)
}

// Run is an identified script execution, used to report runs outside of HTTP.
type Run struct {
	ID        string
	Script    string
	StartedAt time.Time
	Result    ProcessResult
}
