package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slok/scriptd/internal/model"
)

// TablePrinter prints information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintEnvironment prints the execution environment in a table format.
func (t *TablePrinter) PrintEnvironment(env model.ExecutionEnvironment) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tVALUE")
	for _, k := range env.Keys() {
		v, _ := env.Get(k)
		fmt.Fprintf(tw, "%s\t%s\n", k, v)
	}

	return nil
}

// PrintRun prints a run summary followed by its output.
func (t *TablePrinter) PrintRun(run model.Run) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", run.ID)
	fmt.Fprintf(t.writer, "Script:     %s\n", run.Script)
	fmt.Fprintf(t.writer, "Started:    %s\n", run.StartedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(t.writer, "Duration:   %s\n", run.Result.Duration)
	fmt.Fprintf(t.writer, "Exit code:  %d\n", run.Result.ExitCode)

	if run.Result.Stdout != "" {
		fmt.Fprintf(t.writer, "\nStdout:\n%s", run.Result.Stdout)
	}
	if run.Result.Stderr != "" {
		fmt.Fprintf(t.writer, "\nStderr:\n%s", run.Result.Stderr)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
