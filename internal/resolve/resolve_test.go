package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("# trace\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTrace(t *testing.T) {
	cwd := t.TempDir()
	traceDir := t.TempDir()

	absTrace := touch(t, filepath.Join(t.TempDir(), "events.csv"))
	touch(t, filepath.Join(cwd, "local.csv"))
	touch(t, filepath.Join(traceDir, "suite.csv"))
	touch(t, filepath.Join(cwd, "both.csv"))
	touch(t, filepath.Join(traceDir, "both.csv"))
	touch(t, filepath.Join(traceDir, "ghost.csv"))

	cases := []struct {
		name     string
		arg      string
		want     string
		notFound bool
	}{
		{name: "absolute", arg: absTrace, want: absTrace},
		{name: "cwd relative", arg: "local.csv", want: filepath.Join(cwd, "local.csv")},
		{name: "trace dir fallback", arg: "suite.csv", want: filepath.Join(traceDir, "suite.csv")},
		{name: "cwd wins over trace dir", arg: "both.csv", want: filepath.Join(cwd, "both.csv")},
		{name: "missing everywhere", arg: "nothing.csv", notFound: true},
		{
			// A dead absolute path must not fall back to the trace dir,
			// even when a same-named file exists there.
			name:     "absolute bypasses fallback",
			arg:      filepath.Join(cwd, "sub", "ghost.csv"),
			notFound: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Trace(tc.arg, cwd, traceDir)
			if tc.notFound {
				var nf *NotFoundError
				if !errors.As(err, &nf) {
					t.Fatalf("Trace(%q) error = %v, want NotFoundError", tc.arg, err)
				}
				if nf.Arg != tc.arg {
					t.Fatalf("NotFoundError.Arg = %q, want the original argument %q", nf.Arg, tc.arg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Trace(%q) returned error: %v", tc.arg, err)
			}
			if got != tc.want {
				t.Fatalf("Trace(%q) = %q, want %q", tc.arg, got, tc.want)
			}
		})
	}
}

func TestTraceDefaultsToTraceCSV(t *testing.T) {
	cwd := t.TempDir()
	traceDir := t.TempDir()

	if _, err := Trace("", cwd, traceDir); err == nil {
		t.Fatal("expected not-found error when trace.csv is absent everywhere")
	}

	want := touch(t, filepath.Join(traceDir, DefaultTraceFile))
	got, err := Trace("", cwd, traceDir)
	if err != nil {
		t.Fatalf("Trace(\"\") returned error: %v", err)
	}
	if got != want {
		t.Fatalf("Trace(\"\") = %q, want %q", got, want)
	}
}

func TestTraceIgnoresDirectories(t *testing.T) {
	cwd := t.TempDir()
	if err := os.Mkdir(filepath.Join(cwd, "trace.csv"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Trace("trace.csv", cwd, ""); err == nil {
		t.Fatal("a directory must not satisfy trace resolution")
	}
}
