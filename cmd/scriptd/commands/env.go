package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type EnvCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	envFlags
	format string
}

// NewEnvCommand returns the env command.
func NewEnvCommand(rootCmd *RootCommand, app *kingpin.Application) *EnvCommand {
	c := &EnvCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("env", "Print the environment scripts are executed with.")
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)
	registerEnvFlags(c.Cmd, &c.envFlags)

	return c
}

func (c EnvCommand) Name() string { return c.Cmd.FullCommand() }

func (c EnvCommand) Run(ctx context.Context) error {
	store, err := c.newStore(c.rootCmd.Logger)
	if err != nil {
		return fmt.Errorf("could not create environment: %w", err)
	}

	env, err := store.Environment(ctx)
	if err != nil {
		return fmt.Errorf("could not get environment: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintEnvironment(env); err != nil {
		return fmt.Errorf("could not print environment: %w", err)
	}

	return nil
}
