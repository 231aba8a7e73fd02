// Package script executes rendered shortcut command lines through the shell.
package script

import (
	"context"
	goerrors "errors"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/ravel-run/ravel/pkg/errors"
)

// Runner executes shell command lines. The zero value is not usable, use
// NewRunner.
type Runner struct {
	// Dir is the working directory commands run in; empty means the
	// process working directory.
	Dir string

	// Env holds extra KEY=VALUE entries appended to the parent
	// environment.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a runner wired to the process's standard streams.
func NewRunner() *Runner {
	return &Runner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes one command line via `sh -c`. A non-zero exit status is
// returned as ErrScriptFailed; use ExitCode to recover the status.
func (r *Runner) Run(ctx context.Context, command string) error {
	if command == "" {
		return errors.Wrap(errors.ErrScriptFailed, "empty command")
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = r.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	// Own process group so cancellation kills the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(errors.ErrScriptFailed, "failed to start command: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return errors.Wrapf(errors.ErrScriptFailed, "cancelled: %v", ctx.Err())
	case err := <-done:
		if err == nil {
			return nil
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &exitError{code: exitErr.ExitCode()}
		}
		return errors.Wrap(errors.ErrScriptFailed, err.Error())
	}
}

// RunSequence executes commands one at a time, stopping at the first failure.
func (r *Runner) RunSequence(ctx context.Context, commands []string) error {
	for _, command := range commands {
		if err := r.Run(ctx, command); err != nil {
			return err
		}
	}
	return nil
}

// exitError carries a command's non-zero exit status.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return errors.Wrapf(errors.ErrScriptFailed, "exit status %d", e.code).Error()
}

func (e *exitError) Unwrap() error {
	return errors.ErrScriptFailed
}

// ExitCode extracts the exit status carried by an error from Run. It returns
// 0 for nil and 1 for errors without a recorded status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if goerrors.As(err, &exitErr) {
		return exitErr.code
	}
	return 1
}
