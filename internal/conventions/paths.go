package conventions

import "path/filepath"

const (
	// DefaultScriptDir is the default trusted script root.
	DefaultScriptDir = "/scripts"
	// ScriptDirEnvVar is the environment variable that sets the trusted script root.
	ScriptDirEnvVar = "SCRIPT_DIR"

	// DefaultDataDir is the default scriptd data directory name (relative to home).
	DefaultDataDir = ".scriptd"
	// EnvFile is the execution environment filename inside the data directory.
	EnvFile = "env.yaml"

	// DefaultListenAddr is the default HTTP listen address.
	DefaultListenAddr = ":8080"
)

// DataDir returns the scriptd data directory for a home directory.
func DataDir(home string) string {
	return filepath.Join(home, DefaultDataDir)
}

// EnvFilePath returns the default execution environment file path for a home directory.
func EnvFilePath(home string) string {
	return filepath.Join(DataDir(home), EnvFile)
}
