package execx

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunStreamsAndCaptures(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "emit", `#!/bin/sh
echo "to stdout"
echo "to stderr" >&2
exit 0
`)

	var stdout, stderr bytes.Buffer
	runner := &Runner{Stdout: &stdout, Stderr: &stderr}

	res, err := runner.Run(context.Background(), Command{Name: script})
	require.NoError(t, err)
	require.Equal(t, "to stdout", res.Stdout)
	require.Equal(t, "to stderr", res.Stderr)
	require.Contains(t, stdout.String(), "to stdout")
	require.Contains(t, stderr.String(), "to stderr")
}

func TestCaptureStaysQuiet(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "emit", `#!/bin/sh
echo "captured only"
`)

	var stdout, stderr bytes.Buffer
	runner := &Runner{Stdout: &stdout, Stderr: &stderr}

	res, err := runner.Capture(context.Background(), Command{Name: script})
	require.NoError(t, err)
	require.Equal(t, "captured only", res.Stdout)
	require.Empty(t, stdout.String())
	require.Empty(t, stderr.String())
}

func TestRunSurfacesExitError(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "fail", `#!/bin/sh
echo "something broke" >&2
exit 3
`)

	runner := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	res, err := runner.Run(context.Background(), Command{Name: script})
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 3, exitErr.ExitCode())
	require.Equal(t, "something broke", res.Primary())
}

func TestCommandUsesDirAndEnv(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "where", `#!/bin/sh
pwd
echo "$MARKER"
`)

	dir := t.TempDir()
	runner := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	res, err := runner.Capture(context.Background(), Command{
		Name: script,
		Dir:  dir,
		Env:  map[string]string{"MARKER": "present"},
	})
	require.NoError(t, err)
	require.Contains(t, res.Stdout, filepath.Base(dir))
	require.Contains(t, res.Stdout, "present")
}

func TestRunShellExecutesScript(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	runner := &Runner{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	res, err := runner.RunShell(context.Background(), "echo hello from shell", nil)
	require.NoError(t, err)
	require.Equal(t, "hello from shell", res.Stdout)
}

func TestLookPath(t *testing.T) {
	t.Parallel()

	require.True(t, LookPath("sh"))
	require.False(t, LookPath("definitely-not-a-real-binary-name"))
}

func TestResultPrimaryPrefersStderr(t *testing.T) {
	t.Parallel()

	require.Equal(t, "err", Result{Stdout: "out", Stderr: "err"}.Primary())
	require.Equal(t, "out", Result{Stdout: "out"}.Primary())
	require.Empty(t, Result{}.Primary())
}

func TestCommandString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "brew", Command{Name: "brew"}.String())
	require.Equal(t, "brew install git", Command{Name: "brew", Args: []string{"install", "git"}}.String())
}

func writeScript(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o755))
	return path
}
