// Package launch hands control to the resolved build tool.
package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ErrInterrupted means the tool was terminated by a signal and has no exit code.
var ErrInterrupted = errors.New("tool was interrupted")

// Command describes one tool invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string
	// Nil streams are inherited from this process.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Runner runs a tool to completion and reports its exit code.
type Runner interface {
	Run(ctx context.Context, c Command) (int, error)
}

// ExecRunner runs tools as child processes.
type ExecRunner struct{}

// Run starts the tool and waits for it. The child is not tied to ctx: once
// started it runs until it exits on its own.
func (ExecRunner) Run(ctx context.Context, c Command) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if c.Stdin != nil {
		cmd.Stdin = c.Stdin
	}
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", c.Path, err)
	}
	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, fmt.Errorf("wait for %s: %w", c.Path, err)
	}
	code := exitErr.ExitCode()
	if code < 0 {
		return 0, fmt.Errorf("%s: %w (%s)", c.Path, ErrInterrupted, exitErr.ProcessState)
	}
	return code, nil
}

var _ Runner = ExecRunner{}
