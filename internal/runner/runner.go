// Package runner executes the compiled simulator against a trace file.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Process runs an executable to completion. Implementations block until the
// child terminates; the context bounds the child's lifetime when a deadline
// is set.
type Process interface {
	Run(ctx context.Context, bin string, args ...string) error
}

// ExecutionError reports a simulator process that exited non-zero.
type ExecutionError struct {
	Bin      string
	ExitCode int
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Bin, e.ExitCode)
}

// Exec runs a child process with inherited standard streams, so the
// simulator's own output reaches the user unmodified. The exit status is the
// only machine-readable signal consumed.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run invokes bin with args and succeeds iff the child exits zero.
func (x *Exec) Run(ctx context.Context, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = x.stdout()
	cmd.Stderr = x.stderr()
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExecutionError{Bin: bin, ExitCode: exitErr.ExitCode()}
		}
		return fmt.Errorf("invoke %s: %w", bin, err)
	}
	return nil
}

func (x *Exec) stdout() io.Writer {
	if x.Stdout != nil {
		return x.Stdout
	}
	return os.Stdout
}

func (x *Exec) stderr() io.Writer {
	if x.Stderr != nil {
		return x.Stderr
	}
	return os.Stderr
}
