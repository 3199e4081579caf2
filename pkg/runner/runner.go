// pkg/runner/runner.go - runs external commands and reports their exit codes.
//
// Tools such as winget and robocopy communicate through exit codes (robocopy
// uses 1-7 for different kinds of success), so a nonzero exit is returned as
// data, not as an error. Errors mean the command could not be run at all.

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Command is one invocation of an external program.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String renders the command for log messages.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result describes a finished command.
type Result struct {
	ExitCode int
	Duration time.Duration
	Output   string // captured stdout; empty for streamed commands
}

// Runner executes commands.
type Runner interface {
	// Run streams the command's output to the console.
	Run(ctx context.Context, cmd Command) (Result, error)
	// Output captures the command's standard output.
	Output(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner attached to the process's standard streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdin = r.Stdin
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	return run(cmd, c)
}

// Output implements Runner.
func (r *ExecRunner) Output(ctx context.Context, cmd Command) (Result, error) {
	var stdout bytes.Buffer
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = &stdout
	c.Stderr = r.Stderr
	res, err := run(cmd, c)
	res.Output = stdout.String()
	return res, err
}

func run(cmd Command, c *exec.Cmd) (Result, error) {
	start := time.Now()
	err := c.Run()
	res := Result{Duration: time.Since(start)}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	res.ExitCode = -1
	return res, fmt.Errorf("failed to run %s: %w", cmd, err)
}
