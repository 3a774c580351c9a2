package printer_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scriptd/internal/model"
	"github.com/slok/scriptd/internal/printer"
)

func envFixture(t *testing.T) model.ExecutionEnvironment {
	env, err := model.NewExecutionEnvironment(map[string]string{
		"PATH": "/usr/bin:/bin",
		"HOME": "/root",
	})
	require.NoError(t, err)
	return env
}

func runFixture() model.Run {
	return model.Run{
		ID:        "01J0000000000000000000000",
		Script:    "hello.sh",
		StartedAt: time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC),
		Result: model.ProcessResult{
			Stdout:   "hi\n",
			Stderr:   "warn\n",
			ExitCode: 1,
			Duration: 1500 * time.Millisecond,
		},
	}
}

func TestTablePrinterPrintEnvironment(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	require.NoError(t, p.PrintEnvironment(envFixture(t)))

	assert.Equal(t, "NAME  VALUE\nHOME  /root\nPATH  /usr/bin:/bin\n", buf.String())
}

func TestJSONPrinterPrintEnvironment(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	require.NoError(t, p.PrintEnvironment(envFixture(t)))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []map[string]string{
		{"name": "HOME", "value": "/root"},
		{"name": "PATH", "value": "/usr/bin:/bin"},
	}, got)
}

func TestTablePrinterPrintRun(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	require.NoError(t, p.PrintRun(runFixture()))

	out := buf.String()
	assert.Contains(t, out, "Script:     hello.sh")
	assert.Contains(t, out, "Started:    2026-01-30 10:00:00 UTC")
	assert.Contains(t, out, "Duration:   1.5s")
	assert.Contains(t, out, "Exit code:  1")
	assert.Contains(t, out, "Stdout:\nhi\n")
	assert.Contains(t, out, "Stderr:\nwarn\n")
}

func TestJSONPrinterPrintRun(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	require.NoError(t, p.PrintRun(runFixture()))

	out := buf.String()
	assert.Contains(t, out, `"script": "hello.sh"`)
	assert.Contains(t, out, `"duration_ms": 1500`)
	assert.Contains(t, out, `"exit_code": 1`)
	assert.Contains(t, out, `"stdout": "hi\n"`)
}

func TestPrintMessage(t *testing.T) {
	var tableBuf, jsonBuf bytes.Buffer

	require.NoError(t, printer.NewTablePrinter(&tableBuf).PrintMessage("done"))
	require.NoError(t, printer.NewJSONPrinter(&jsonBuf).PrintMessage("done"))

	assert.Equal(t, "done\n", tableBuf.String())
	assert.Equal(t, "{\n  \"message\": \"done\"\n}\n", jsonBuf.String())
}
