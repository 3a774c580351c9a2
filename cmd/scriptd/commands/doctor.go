package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scriptd/internal/app/check"
	"github.com/slok/scriptd/internal/model"
	"github.com/slok/scriptd/internal/script"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	scriptFlags
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks of the script runner setup.")
	registerScriptFlags(c.Cmd, &c.scriptFlags)

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout

	svc, err := check.NewService(check.ServiceConfig{
		ScriptDir:   c.scriptDir,
		Interpreter: c.interpreter,
		NewEnvironment: func() (script.EnvironmentProvider, error) {
			return c.newStore(logger)
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	results := svc.Run(ctx)

	fmt.Fprintln(out, "Checking scriptd setup...")
	for _, r := range results {
		fmt.Fprintf(out, "  %s %-20s %s\n", getStatusIcon(r.Status), r.ID, r.Message)
	}

	summary := model.SummarizeChecks(results)
	fmt.Fprintln(out)
	fmt.Fprintln(out, summary)

	if summary.Failed() {
		return fmt.Errorf("preflight checks failed with %d error(s)", summary.Errors)
	}

	return nil
}

func getStatusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}
