package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/scriptd/internal/model"
)

// JSONPrinter prints information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type envVarOutput struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type runOutput struct {
	ID         string    `json:"id"`
	Script     string    `json:"script"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	ExitCode   int       `json:"exit_code"`
	Stdout     string    `json:"stdout"`
	Stderr     string    `json:"stderr"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// PrintEnvironment prints the execution environment as a sorted JSON list.
func (j *JSONPrinter) PrintEnvironment(env model.ExecutionEnvironment) error {
	output := make([]envVarOutput, 0, env.Len())
	for _, k := range env.Keys() {
		v, _ := env.Get(k)
		output = append(output, envVarOutput{Name: k, Value: v})
	}

	return j.encode(output)
}

// PrintRun prints a run in JSON format.
func (j *JSONPrinter) PrintRun(run model.Run) error {
	return j.encode(runOutput{
		ID:         run.ID,
		Script:     run.Script,
		StartedAt:  run.StartedAt.UTC(),
		DurationMS: run.Result.Duration.Milliseconds(),
		ExitCode:   run.Result.ExitCode,
		Stdout:     run.Result.Stdout,
		Stderr:     run.Result.Stderr,
	})
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
