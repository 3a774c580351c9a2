package scriptd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/slok/scriptd/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary      string
	Interpreter string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "scriptd"
	}

	// go test changes the CWD to the test package directory, relative paths would be wrong.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("SCRIPTD_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("scriptd binary not found at %q: %w", c.Binary, err)
	}

	if c.Interpreter == "" {
		c.Interpreter = "/bin/bash"
	}
	if _, err := os.Stat(c.Interpreter); err != nil {
		return fmt.Errorf("interpreter not found at %q: %w", c.Interpreter, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation  = "SCRIPTD_INTEGRATION"
		envBinary      = "SCRIPTD_INTEGRATION_BINARY"
		envInterpreter = "SCRIPTD_INTEGRATION_INTERPRETER"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary:      os.Getenv(envBinary),
		Interpreter: os.Getenv(envInterpreter),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// Workspace is an isolated script directory and environment file.
type Workspace struct {
	ScriptDir string
	EnvFile   string
	Home      string
}

// NewWorkspace creates a workspace with the given scripts and environment file content.
func NewWorkspace(t *testing.T, scripts map[string]string, envFile string) Workspace {
	t.Helper()

	dir := t.TempDir()
	ws := Workspace{
		ScriptDir: filepath.Join(dir, "scripts"),
		EnvFile:   filepath.Join(dir, "env", "env.yaml"),
		Home:      filepath.Join(dir, "home"),
	}

	for _, d := range []string{ws.ScriptDir, filepath.Dir(ws.EnvFile), ws.Home} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("could not create %s: %s", d, err)
		}
	}

	for name, data := range scripts {
		path := filepath.Join(ws.ScriptDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("could not create %s: %s", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("could not write %s: %s", path, err)
		}
	}

	ws.WriteEnvFile(t, envFile)

	return ws
}

// WriteEnvFile replaces the environment file, the home of the workspace is always set.
func (w Workspace) WriteEnvFile(t *testing.T, content string) {
	t.Helper()

	data := "home: " + w.Home + "\n" + content
	if err := os.WriteFile(w.EnvFile, []byte(data), 0o600); err != nil {
		t.Fatalf("could not write env file: %s", err)
	}
}

func (w Workspace) args(config Config) string {
	return fmt.Sprintf("--script-dir %s --env-file %s --interpreter %s", w.ScriptDir, w.EnvFile, config.Interpreter)
}

// RunScriptdCmd runs a scriptd command with the workspace flags.
// It suppresses logging output for cleaner test output.
func RunScriptdCmd(ctx context.Context, config Config, ws Workspace, cmdArgs string) (stdout, stderr []byte, err error) {
	return testutils.RunScriptd(ctx, nil, config.Binary, cmdArgs+" "+ws.args(config), true)
}

// StartServe starts the HTTP service in the background and waits until it's healthy.
// Returns the base URL of the service. The service is stopped when the test ends.
func StartServe(t *testing.T, config Config, ws Workspace, extraArgs string) string {
	t.Helper()

	addr := freeAddr(t)
	args := strings.Fields(fmt.Sprintf("serve --listen %s %s %s", addr, ws.args(config), extraArgs))

	ctx, cancel := context.WithCancel(context.Background())
	cmd := testutils.NewScriptdCmd(ctx, nil, config.Binary, args, true)
	if err := cmd.Start(); err != nil {
		cancel()
		t.Fatalf("could not start scriptd: %s", err)
	}
	t.Cleanup(func() {
		cancel()
		_ = cmd.Wait()
	})

	url := "http://" + addr
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return url
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("scriptd not healthy at %s", url)
	return ""
}

func freeAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("could not get free port: %s", err)
	}
	defer ln.Close()

	return ln.Addr().String()
}
