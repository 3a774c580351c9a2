package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/slok/scriptd/internal/app/content"
	apprun "github.com/slok/scriptd/internal/app/run"
	"github.com/slok/scriptd/internal/conventions"
	"github.com/slok/scriptd/internal/environment"
	"github.com/slok/scriptd/internal/httpapi"
	"github.com/slok/scriptd/internal/model"
)

type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	scriptFlags
	listenAddr     string
	mode           string
	watchEnvFile   bool
	exposeExitCode bool
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Serve scripts over HTTP.")
	c.Cmd.Flag("listen", "Address the HTTP server listens on.").Default(conventions.DefaultListenAddr).StringVar(&c.listenAddr)
	c.Cmd.Flag("mode", "How scripts are served (execute, content).").Default(string(model.ResponseModeExecute)).EnumVar(&c.mode, string(model.ResponseModeExecute), string(model.ResponseModeContent))
	c.Cmd.Flag("watch-env-file", "Reload the environment when the environment file changes.").BoolVar(&c.watchEnvFile)
	c.Cmd.Flag("expose-exit-code", "Add the script exit code as the X-Exit-Code response header.").BoolVar(&c.exposeExitCode)
	registerScriptFlags(c.Cmd, &c.scriptFlags)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	mode := model.ResponseMode(c.mode)

	locator, err := c.newLocator(logger)
	if err != nil {
		return fmt.Errorf("could not create script locator: %w", err)
	}

	handlerCfg := httpapi.HandlerConfig{
		Mode:           mode,
		ExposeExitCode: c.exposeExitCode,
		Logger:         logger,
	}

	var store *environment.Store
	switch mode {
	case model.ResponseModeContent:
		handlerCfg.ContentService, err = content.NewService(content.ServiceConfig{
			Locator: locator,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("could not create content service: %w", err)
		}

	default:
		preparer, err := c.newPreparer(logger)
		if err != nil {
			return fmt.Errorf("could not create script preparer: %w", err)
		}

		store, err = c.newStore(logger)
		if err != nil {
			return fmt.Errorf("could not create environment: %w", err)
		}

		runner, err := c.newRunner(logger)
		if err != nil {
			return fmt.Errorf("could not create process runner: %w", err)
		}

		handlerCfg.RunService, err = apprun.NewService(apprun.ServiceConfig{
			Locator:     locator,
			Preparer:    preparer,
			Environment: store,
			Runner:      runner,
			Logger:      logger,
		})
		if err != nil {
			return fmt.Errorf("could not create run service: %w", err)
		}
	}

	handler, err := httpapi.NewHandler(handlerCfg)
	if err != nil {
		return fmt.Errorf("could not create HTTP handler: %w", err)
	}

	server, err := httpapi.NewServer(httpapi.ServerConfig{
		ListenAddr: c.listenAddr,
		Handler:    handler,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create HTTP server: %w", err)
	}

	var g run.Group

	// HTTP server.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				return server.Run(ctx)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// Environment file watcher.
	if c.watchEnvFile && store != nil {
		switch {
		case !dirExists(filepath.Dir(c.envFile)):
			logger.Warningf("Environment file directory %s missing, environment file will not be watched", filepath.Dir(c.envFile))
		default:
			watcher, err := environment.NewWatcher(environment.WatcherConfig{
				FilePath: c.envFile,
				Reloader: store,
				Logger:   logger,
			})
			if err != nil {
				return fmt.Errorf("could not create environment file watcher: %w", err)
			}

			ctx, cancel := context.WithCancel(ctx)
			g.Add(
				func() error {
					return watcher.Run(ctx)
				},
				func(_ error) {
					cancel()
				},
			)
		}
	}

	// Command context.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	logger.Infof("Serving scripts from %s on %s (%s mode)", locator.Root(), c.listenAddr, mode)

	return g.Run()
}
