// Package execx runs external commands on behalf of the setup stages. Every
// invocation is blocking, returns the captured output, and surfaces the
// command's own error untouched so callers can translate it.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Result captures stdout/stderr emitted by a command run.
type Result struct {
	Stdout string
	Stderr string
}

// Primary returns stderr if present, otherwise stdout. Failing commands
// usually put the interesting diagnostics on stderr.
func (r Result) Primary() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Command describes a single external invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return fmt.Sprintf("%s %s", c.Name, strings.Join(c.Args, " "))
}

// Runner executes commands for the pipeline. Stdout and Stderr receive the
// streamed output of Run and RunShell; they default to the process's own
// streams and tests redirect them.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Runner wired to the process's standard streams.
func New() *Runner {
	return &Runner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run wires the command's stdout/stderr through the runner's streams while
// collecting the output for later inspection.
func (r *Runner) Run(ctx context.Context, spec Command) (Result, error) {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	configure(cmd, spec)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = io.MultiWriter(r.stdout(), &stdoutBuf)
	cmd.Stderr = io.MultiWriter(r.stderr(), &stderrBuf)

	err := cmd.Run()

	return Result{
		Stdout: strings.TrimSpace(stdoutBuf.String()),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}, err
}

// Capture executes the command without echoing anything to the terminal.
func (r *Runner) Capture(ctx context.Context, spec Command) (Result, error) {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	configure(cmd, spec)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()

	return Result{
		Stdout: strings.TrimSpace(stdoutBuf.String()),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}, err
}

// RunShell executes a script through the system shell, streaming output like
// Run. Used for installers distributed as shell one-liners.
func (r *Runner) RunShell(ctx context.Context, script string, env map[string]string) (Result, error) {
	shell, shellArgs, err := resolveShell()
	if err != nil {
		return Result{}, err
	}

	args := append(shellArgs, script)
	return r.Run(ctx, Command{Name: shell, Args: args, Env: env})
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// LookPath reports whether name resolves to an executable on the current PATH.
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func resolveShell() (string, []string, error) {
	if path, err := exec.LookPath("bash"); err == nil {
		return path, []string{"-c"}, nil
	}

	if path, err := exec.LookPath("sh"); err == nil {
		return path, []string{"-c"}, nil
	}

	return "", nil, fmt.Errorf("no suitable shell found")
}

func configure(cmd *exec.Cmd, spec Command) {
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if len(spec.Env) > 0 {
		cmd.Env = mergedEnv(spec.Env)
	}
}

func mergedEnv(custom map[string]string) []string {
	env := os.Environ()
	for k, v := range custom {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
