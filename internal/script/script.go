package script

import (
	"context"

	"github.com/slok/scriptd/internal/model"
)

// Locator resolves untrusted script names into scripts under a trusted root.
type Locator interface {
	// Locate returns model.ErrNotValid when the name escapes the trusted root and
	// model.ErrNotFound when the script does not exist.
	Locate(ctx context.Context, name string) (*model.ResolvedScript, error)
}

// Preparer leaves a located script ready to be executed.
type Preparer interface {
	Prepare(ctx context.Context, s model.ResolvedScript) error
}

// EnvironmentProvider returns the closed environment used to run scripts.
type EnvironmentProvider interface {
	Environment(ctx context.Context) (model.ExecutionEnvironment, error)
}

// Runner runs a located script until it terminates, capturing its output.
type Runner interface {
	// Run returns model.ErrTimeout when the script exceeds the execution deadline.
	// A script exiting with a non zero code is not an error.
	Run(ctx context.Context, s model.ResolvedScript, env model.ExecutionEnvironment) (*model.ProcessResult, error)
}
