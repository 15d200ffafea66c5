package command

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runApp runs the application with args and returns stdout and stderr.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"fastutil-bench"}, args...))
	return stdout.String(), stderr.String(), err
}

// runJSON runs the application with JSON output and decodes stdout into out.
func runJSON(t *testing.T, out any, args ...string) {
	t.Helper()
	stdout, stderr, err := runApp(t, append([]string{"--output", "json", "--log-level", "error"}, args...)...)
	require.NoError(t, err, "stderr: %s", stderr)
	require.NoError(t, json.Unmarshal([]byte(stdout), out), "stdout: %s", stdout)
}
