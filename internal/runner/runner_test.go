package runner

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestRunForwardsExitStatus(t *testing.T) {
	x := &Exec{}
	err := x.Run(context.Background(), "sh", "-c", "exit 2")

	var ee *ExecutionError
	if !errors.As(err, &ee) {
		t.Fatalf("Run error = %v, want ExecutionError", err)
	}
	if ee.ExitCode != 2 {
		t.Fatalf("ExitCode = %d, want 2", ee.ExitCode)
	}
}

func TestRunSuccess(t *testing.T) {
	var out bytes.Buffer
	x := &Exec{Stdout: &out}
	if err := x.Run(context.Background(), "sh", "-c", "echo ok"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := out.String(); got != "ok\n" {
		t.Fatalf("child stdout = %q, want %q", got, "ok\n")
	}
}

func TestRunMissingBinary(t *testing.T) {
	x := &Exec{}
	err := x.Run(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	var ee *ExecutionError
	if errors.As(err, &ee) {
		t.Fatalf("startup failure must not classify as ExecutionError: %v", err)
	}
}
