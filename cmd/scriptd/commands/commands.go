package commands

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/scriptd/internal/conventions"
	"github.com/slok/scriptd/internal/environment"
	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/printer"
	"github.com/slok/scriptd/internal/process"
	scriptfs "github.com/slok/scriptd/internal/script/fs"
	utilsenv "github.com/slok/scriptd/internal/utils/env"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// ExitCodeError is returned by commands that need to finish the program with a specific exit code.
type ExitCodeError struct {
	Code int
}

func (e ExitCodeError) Error() string { return fmt.Sprintf("exit code %d", e.Code) }

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	return c
}

// scriptFlags are the flags shared by all the commands that locate and run scripts.
type scriptFlags struct {
	scriptDir    string
	interpreter  string
	timeout      time.Duration
	execModeBits string
	envFlags
}

func registerScriptFlags(cmd *kingpin.CmdClause, f *scriptFlags) {
	cmd.Flag("script-dir", "Trusted root directory where scripts are looked up.").Envar(conventions.ScriptDirEnvVar).Default(conventions.DefaultScriptDir).StringVar(&f.scriptDir)
	cmd.Flag("interpreter", "Absolute path of the interpreter that runs the scripts.").Default(process.DefaultInterpreter).StringVar(&f.interpreter)
	cmd.Flag("timeout", "Script execution deadline, 0 disables it.").Default(process.DefaultTimeout.String()).DurationVar(&f.timeout)
	cmd.Flag("exec-mode-bits", "Octal execute bits set on scripts before running them.").Default("0100").StringVar(&f.execModeBits)
	registerEnvFlags(cmd, &f.envFlags)
}

func (f scriptFlags) newLocator(logger log.Logger) (*scriptfs.Locator, error) {
	return scriptfs.NewLocator(scriptfs.LocatorConfig{
		Root:   f.scriptDir,
		Logger: logger,
	})
}

func (f scriptFlags) newPreparer(logger log.Logger) (*scriptfs.Preparer, error) {
	bits, err := strconv.ParseUint(f.execModeBits, 8, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid exec mode bits %q: %w", f.execModeBits, err)
	}

	return scriptfs.NewPreparer(scriptfs.PreparerConfig{
		ExecBits: fs.FileMode(bits),
		Logger:   logger,
	})
}

func (f scriptFlags) newRunner(logger log.Logger) (*process.Runner, error) {
	return process.NewRunner(process.RunnerConfig{
		Interpreter:    f.interpreter,
		Timeout:        f.timeout,
		DisableTimeout: f.timeout == 0,
		Logger:         logger,
	})
}

// envFlags are the flags that configure the script execution environment.
type envFlags struct {
	envFile    string
	envFileSet bool
	envSpecs   []string
}

func registerEnvFlags(cmd *kingpin.CmdClause, f *envFlags) {
	cmd.Flag("env-file", "YAML file with the script execution environment. When not running as root set home or credentialsDir in it, the default home is /root.").Default(conventions.EnvFilePath(homedir.HomeDir())).IsSetByUser(&f.envFileSet).StringVar(&f.envFile)
	cmd.Flag("env", "Environment variables (KEY=VALUE or KEY from current environment). Can be repeated.").Short('e').StringsVar(&f.envSpecs)
}

func (f envFlags) newStore(logger log.Logger) (*environment.Store, error) {
	overrides, err := utilsenv.ParseOverrides(f.envSpecs, utilsenv.HostLookup)
	if err != nil {
		return nil, fmt.Errorf("invalid --env value: %w", err)
	}
	if len(overrides.FromHost) > 0 {
		logger.Infof("Copying host variables into the script environment: %s", strings.Join(overrides.FromHost, ", "))
	}

	return environment.NewStore(environment.StoreConfig{
		FilePath:     f.envFile,
		FileOptional: !f.envFileSet,
		Overrides:    overrides.Vars,
		Logger:       logger,
	})
}

func newPrinter(format string, w io.Writer) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(w)
	}
	return printer.NewTablePrinter(w)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
