package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/ulid/v2"

	apprun "github.com/slok/scriptd/internal/app/run"
	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
)

const outputRaw = "raw"

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	scriptFlags
	scriptName string
	output     string
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run a script locally the same way the HTTP service does.")
	c.Cmd.Arg("script", "Script name, relative to the script directory.").Required().StringVar(&c.scriptName)
	c.Cmd.Flag("output", "Output format (raw, table, json).").Short('o').Default(outputRaw).EnumVar(&c.output, outputRaw, formatTable, formatJSON)
	registerScriptFlags(c.Cmd, &c.scriptFlags)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	runID := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	logger := c.rootCmd.Logger.WithValues(log.Kv{"run-id": runID})

	locator, err := c.newLocator(logger)
	if err != nil {
		return fmt.Errorf("could not create script locator: %w", err)
	}

	preparer, err := c.newPreparer(logger)
	if err != nil {
		return fmt.Errorf("could not create script preparer: %w", err)
	}

	store, err := c.newStore(logger)
	if err != nil {
		return fmt.Errorf("could not create environment: %w", err)
	}

	runner, err := c.newRunner(logger)
	if err != nil {
		return fmt.Errorf("could not create process runner: %w", err)
	}

	svc, err := apprun.NewService(apprun.ServiceConfig{
		Locator:     locator,
		Preparer:    preparer,
		Environment: store,
		Runner:      runner,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	startedAt := time.Now()
	result, err := svc.Run(ctx, apprun.Request{ScriptName: c.scriptName})
	if err != nil {
		return fmt.Errorf("could not run script: %w", err)
	}

	switch c.output {
	case outputRaw:
		if _, err := io.WriteString(c.rootCmd.Stdout, result.Stdout); err != nil {
			return fmt.Errorf("could not write stdout: %w", err)
		}
		if _, err := io.WriteString(c.rootCmd.Stderr, result.Stderr); err != nil {
			return fmt.Errorf("could not write stderr: %w", err)
		}
	default:
		err := newPrinter(c.output, c.rootCmd.Stdout).PrintRun(model.Run{
			ID:        runID,
			Script:    c.scriptName,
			StartedAt: startedAt,
			Result:    *result,
		})
		if err != nil {
			return fmt.Errorf("could not print run: %w", err)
		}
	}

	if result.ExitCode != 0 {
		return ExitCodeError{Code: result.ExitCode}
	}

	return nil
}
