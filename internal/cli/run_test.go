package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/smmu-sim/tracerun/internal/resolve"
)

func executeRoot(t *testing.T, args ...string) (*cobra.Command, string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if args == nil {
		// A nil arg slice makes cobra consume the test binary's os.Args.
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return cmd, out.String(), errOut.String(), err
}

// stubCompiler writes an executable that fakes the toolchain: it scans its
// argv for "-o <path>" and installs a tiny shell program there which exits
// with the requested status.
func stubCompiler(t *testing.T, dir string, simulatorExit int) string {
	t.Helper()
	path := filepath.Join(dir, "fake-toolchain")
	script := fmt.Sprintf(`#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then
    out="$2"
    shift
  fi
  shift
done
[ -n "$out" ] || exit 1
printf '#!/bin/sh\nexit %d\n' > "$out"
chmod +x "$out"
`, simulatorExit)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeProject(t *testing.T, root, compiler string) {
	t.Helper()
	cfg := fmt.Sprintf(`[toolchain]
compiler = %q

[build]
sources = ["sim.cpp"]
output = "trace_runner"
`, compiler)
	if err := os.MkdirAll(filepath.Join(root, ".tracerun"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".tracerun", "config.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunTraceEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, stubCompiler(t, root, 0))
	if err := os.WriteFile(filepath.Join(root, "trace.csv"), []byte("# empty trace\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(root)

	_, out, _, err := executeRoot(t)
	if err != nil {
		t.Fatalf("root command failed: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("Done.")) {
		t.Fatalf("output missing success line:\n%s", out)
	}
	if got := strings.Count(out, strings.Repeat("-", 40)); got != 2 {
		t.Fatalf("child output bracketed by %d dividers, want 2:\n%s", got, out)
	}
	if _, err := os.Stat(filepath.Join(root, "trace_runner")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("artifact still present after cleanup (stat err=%v)", err)
	}
}

func TestRunTraceKeepFlag(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, stubCompiler(t, root, 0))
	if err := os.WriteFile(filepath.Join(root, "trace.csv"), []byte("# empty trace\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(root)

	_, _, _, err := executeRoot(t, "--keep")
	if err != nil {
		t.Fatalf("root command failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "trace_runner")); err != nil {
		t.Fatalf("--keep must leave the artifact in place: %v", err)
	}
}

func TestRunTraceSimulatorFailureStillCleansUp(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, stubCompiler(t, root, 2))
	if err := os.WriteFile(filepath.Join(root, "trace.csv"), []byte("# empty trace\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(root)

	_, _, _, err := executeRoot(t)
	if err == nil {
		t.Fatal("expected error when the simulator exits non-zero")
	}
	if _, statErr := os.Stat(filepath.Join(root, "trace_runner")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("artifact must be removed after a failed run (stat err=%v)", statErr)
	}
}

func TestRunTraceNotFound(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, stubCompiler(t, root, 0))
	t.Chdir(root)

	_, _, _, err := executeRoot(t)
	var nf *resolve.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	if nf.Arg != resolve.DefaultTraceFile {
		t.Fatalf("NotFoundError.Arg = %q, want %q", nf.Arg, resolve.DefaultTraceFile)
	}
}

func TestRootRejectsExtraArgs(t *testing.T) {
	_, _, _, err := executeRoot(t, "a.csv", "b.csv")
	if err == nil {
		t.Fatal("expected arg-count error")
	}
}
