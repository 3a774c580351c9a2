package lib_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scriptd/pkg/lib"
)

// newTestClient creates a client with a temp script dir and environment for test isolation.
func newTestClient(t *testing.T, scripts map[string]string) *lib.Client {
	t.Helper()

	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh is required")
	}

	scriptDir := t.TempDir()
	for name, data := range scripts {
		path := filepath.Join(scriptDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	}

	client, err := lib.New(lib.Config{
		ScriptDir:   scriptDir,
		Interpreter: "/bin/sh",
		Timeout:     500 * time.Millisecond,
		Env: map[string]string{
			"CREDENTIALS_DIR": filepath.Join(t.TempDir(), "credentials"),
			"GREETING":        "hi",
		},
	})
	require.NoError(t, err)

	return client
}

func TestClientRun(t *testing.T) {
	scripts := map[string]string{
		"hello.sh":        "echo \"$GREETING\"\n",
		"fail.sh":         "echo oops >&2\nexit 2\n",
		"slow.sh":         "sleep 5\n",
		"nested/inner.sh": "echo inner\n",
	}

	tests := map[string]struct {
		script    string
		expResult *lib.RunResult
		expIs     error
	}{
		"Running a script should return its output.": {
			script:    "hello.sh",
			expResult: &lib.RunResult{Stdout: "hi\n"},
		},

		"Running a nested script should work.": {
			script:    "nested/inner.sh",
			expResult: &lib.RunResult{Stdout: "inner\n"},
		},

		"A failing script should not be an error.": {
			script:    "fail.sh",
			expResult: &lib.RunResult{Stderr: "oops\n", ExitCode: 2},
		},

		"A missing script should return not found.": {
			script: "missing.sh",
			expIs:  lib.ErrNotFound,
		},

		"A script outside the script dir should return not valid.": {
			script: "../escape.sh",
			expIs:  lib.ErrNotValid,
		},

		"A slow script should time out.": {
			script: "slow.sh",
			expIs:  lib.ErrTimeout,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			client := newTestClient(t, scripts)

			res, err := client.Run(context.Background(), test.script)
			if test.expIs != nil {
				assert.ErrorIs(err, test.expIs)
				return
			}
			require.NoError(err)

			res.Duration = 0
			assert.Equal(test.expResult, res)
		})
	}
}

func TestClientContent(t *testing.T) {
	client := newTestClient(t, map[string]string{"hello.sh": "echo hi\n"})

	c, err := client.Content(context.Background(), "hello.sh")
	require.NoError(t, err)
	assert.Equal(t, "hello.sh", c.Name)
	assert.Equal(t, []byte("echo hi\n"), c.Data)

	_, err = client.Content(context.Background(), "missing.sh")
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestClientEnvironment(t *testing.T) {
	client := newTestClient(t, nil)

	env, err := client.Environment(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "hi", env["GREETING"])
	assert.Equal(t, "/root", env["HOME"])
	assert.Equal(t, "C.UTF-8", env["LC_ALL"])
}

func TestClientHandler(t *testing.T) {
	client := newTestClient(t, map[string]string{"hello.sh": "echo \"$GREETING\"\n"})

	h, err := client.Handler(lib.ResponseModeExecute)
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/run/hello.sh")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hi\n", string(body))

	_, err = client.Handler(lib.ResponseMode("unknown"))
	assert.ErrorIs(t, err, lib.ErrNotValid)
}

func TestClientDoctor(t *testing.T) {
	client := newTestClient(t, map[string]string{"hello.sh": "echo hi\n"})

	results, err := client.Doctor(context.Background())
	require.NoError(t, err)

	got := map[string]lib.CheckStatus{}
	for _, r := range results {
		got[r.ID] = r.Status
	}
	assert.Equal(t, map[string]lib.CheckStatus{
		"script_dir":  lib.CheckStatusOK,
		"interpreter": lib.CheckStatusOK,
		"environment": lib.CheckStatusOK,
	}, got)
}
