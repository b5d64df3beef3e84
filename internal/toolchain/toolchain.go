// Package toolchain invokes the external compiler that produces the
// simulator binary.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/smmu-sim/tracerun/internal/config"
)

// Manifest is the fixed, ordered build input: source files first to last,
// plus include directories.
type Manifest struct {
	Sources     []string
	IncludeDirs []string
}

// Compiler produces an executable at out from the manifest.
type Compiler interface {
	Compile(ctx context.Context, m Manifest, out string) error
}

// CompileError reports a toolchain process that exited non-zero. Diagnostics
// are not captured here; they already reached the user on the inherited
// standard streams.
type CompileError struct {
	Compiler string
	ExitCode int
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Compiler, e.ExitCode)
}

// Driver shells out to a C++ compiler with a deterministic command line.
type Driver struct {
	Path         string
	Standard     string
	Warnings     string
	Optimization string

	// Stdout and Stderr default to the process streams so compiler
	// diagnostics reach the user directly.
	Stdout io.Writer
	Stderr io.Writer
}

// New builds a Driver from the toolchain configuration block.
func New(tc config.ToolchainBlock) *Driver {
	return &Driver{
		Path:         tc.Compiler,
		Standard:     tc.Standard,
		Warnings:     tc.Warnings,
		Optimization: tc.Optimization,
	}
}

// Args renders the fixed command line: standard, warnings, optimization,
// include flags in manifest order, output path, then sources in manifest
// order. The same manifest always yields the same argv.
func (d *Driver) Args(m Manifest, out string) []string {
	args := []string{
		"-std=" + d.Standard,
		"-W" + d.Warnings,
		"-O" + d.Optimization,
	}
	for _, dir := range m.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, "-o", out)
	args = append(args, m.Sources...)
	return args
}

// Compile runs the toolchain and succeeds iff it exits zero. No retries, no
// diagnostic parsing.
func (d *Driver) Compile(ctx context.Context, m Manifest, out string) error {
	cmd := exec.CommandContext(ctx, d.Path, d.Args(m, out)...)
	cmd.Stdout = d.stdout()
	cmd.Stderr = d.stderr()
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &CompileError{Compiler: d.Path, ExitCode: exitErr.ExitCode()}
		}
		return fmt.Errorf("invoke %s: %w", d.Path, err)
	}
	return nil
}

func (d *Driver) stdout() io.Writer {
	if d.Stdout != nil {
		return d.Stdout
	}
	return os.Stdout
}

func (d *Driver) stderr() io.Writer {
	if d.Stderr != nil {
		return d.Stderr
	}
	return os.Stderr
}
