// Package resolve locates trace files among their candidate directories.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultTraceFile is used when the caller supplies no trace argument.
const DefaultTraceFile = "trace.csv"

// NotFoundError reports a trace argument that no resolution rule matched.
// It carries the argument as given, not any candidate expansion of it.
type NotFoundError struct {
	Arg string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("trace file %q not found", e.Arg)
}

// Trace resolves a trace argument to an existing file, first match wins:
//
//  1. an absolute path is used as-is (existence still checked, never assumed);
//  2. a path that exists relative to cwd;
//  3. a path that exists under traceDir.
//
// Absolute paths never fall back to the trace directory. An empty arg means
// DefaultTraceFile. The returned path is absolute.
func Trace(arg, cwd, traceDir string) (string, error) {
	if arg == "" {
		arg = DefaultTraceFile
	}

	if filepath.IsAbs(arg) {
		if fileExists(arg) {
			return arg, nil
		}
		return "", &NotFoundError{Arg: arg}
	}

	if p := filepath.Join(cwd, arg); fileExists(p) {
		return p, nil
	}
	if traceDir != "" {
		if p := filepath.Join(traceDir, arg); fileExists(p) {
			return p, nil
		}
	}
	return "", &NotFoundError{Arg: arg}
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !fi.IsDir()
}
