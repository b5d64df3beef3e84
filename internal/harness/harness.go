// Package harness sequences one trace run: resolve, build, run, cleanup.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/smmu-sim/tracerun/internal/resolve"
	"github.com/smmu-sim/tracerun/internal/runner"
	"github.com/smmu-sim/tracerun/internal/toolchain"
)

// Stage names one step of the harness lifecycle.
type Stage string

const (
	StageInit      Stage = "init"
	StageResolving Stage = "resolving"
	StageBuilding  Stage = "building"
	StageRunning   Stage = "running"
	StageCleanup   Stage = "cleanup"
	StageDone      Stage = "done"
	StageError     Stage = "error"
)

// Options fixes everything a single invocation needs up front. There are no
// ambient lookups: working directory, trace directory, manifest, and artifact
// path all arrive explicitly so tests can isolate runs in temp directories.
type Options struct {
	// TraceArg is the user-supplied trace argument; empty selects the
	// default trace file name.
	TraceArg string
	// WorkDir anchors relative trace arguments.
	WorkDir string
	// TraceDir is the fallback directory searched after WorkDir.
	TraceDir string
	// Manifest is the fixed, ordered build input.
	Manifest toolchain.Manifest
	// Artifact is where the compiled binary lands. Builder, Runner, and
	// cleanup all use this one path for the whole invocation.
	Artifact string
	// Cleanup removes the artifact after the run, success or failure.
	Cleanup bool
	// Timeout bounds each child process. Zero means unbounded.
	Timeout time.Duration
}

// divider separates the harness's own lines from the child's output.
const divider = "----------------------------------------"

// StageTiming records how long one stage took.
type StageTiming struct {
	Stage   Stage
	Elapsed time.Duration
}

// Result describes a completed invocation.
type Result struct {
	Trace    string
	Artifact string
	Timings  []StageTiming
}

// Harness drives one invocation through its stages. Each stage runs at most
// once; any failure is terminal.
type Harness struct {
	opts     Options
	compiler toolchain.Compiler
	process  runner.Process

	out   io.Writer
	errw  io.Writer
	stage Stage
}

// New wires a harness from explicit collaborators. Compiler and Process are
// capability interfaces so tests can substitute fakes for the real toolchain.
func New(opts Options, compiler toolchain.Compiler, process runner.Process) *Harness {
	return &Harness{
		opts:     opts,
		compiler: compiler,
		process:  process,
		out:      os.Stdout,
		errw:     os.Stderr,
		stage:    StageInit,
	}
}

// SetOutput redirects the harness's progress and warning lines.
func (h *Harness) SetOutput(out, errw io.Writer) {
	h.out = out
	h.errw = errw
}

// Stage reports the harness's current lifecycle stage.
func (h *Harness) Stage() Stage {
	return h.stage
}

// Run executes resolve → build → run → cleanup. Cleanup happens whenever an
// artifact exists, even when the run failed; a build failure leaves nothing
// to clean, so cleanup is skipped on that path.
func (h *Harness) Run(ctx context.Context) (*Result, error) {
	res := &Result{Artifact: h.opts.Artifact}

	h.stage = StageResolving
	start := time.Now()
	trace, err := resolve.Trace(h.opts.TraceArg, h.opts.WorkDir, h.opts.TraceDir)
	if err != nil {
		h.stage = StageError
		return nil, err
	}
	res.Trace = trace
	res.Timings = append(res.Timings, StageTiming{StageResolving, time.Since(start)})

	h.stage = StageBuilding
	fmt.Fprintln(h.out, "Compiling trace runner...")
	start = time.Now()
	if err := h.compile(ctx); err != nil {
		h.stage = StageError
		return nil, fmt.Errorf("compilation failed: %w", err)
	}
	res.Timings = append(res.Timings, StageTiming{StageBuilding, time.Since(start)})
	fmt.Fprintln(h.out, "Compilation successful.")

	h.stage = StageRunning
	fmt.Fprintf(h.out, "\nRunning trace: %s\n", trace)
	fmt.Fprintln(h.out, divider)
	start = time.Now()
	runErr := h.run(ctx, trace)
	res.Timings = append(res.Timings, StageTiming{StageRunning, time.Since(start)})

	// The artifact exists from here on; remove it regardless of how the
	// run went.
	h.stage = StageCleanup
	start = time.Now()
	h.removeArtifact()
	res.Timings = append(res.Timings, StageTiming{StageCleanup, time.Since(start)})

	if runErr != nil {
		h.stage = StageError
		return nil, fmt.Errorf("execution failed: %w", runErr)
	}
	h.stage = StageDone
	return res, nil
}

func (h *Harness) compile(ctx context.Context) error {
	ctx, cancel := h.bound(ctx)
	defer cancel()
	return h.compiler.Compile(ctx, h.opts.Manifest, h.opts.Artifact)
}

func (h *Harness) run(ctx context.Context, trace string) error {
	ctx, cancel := h.bound(ctx)
	defer cancel()
	return h.process.Run(ctx, h.opts.Artifact, trace)
}

func (h *Harness) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.opts.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.opts.Timeout)
}

// removeArtifact is best-effort: a missing file is fine and a failed delete
// is a warning, never a process failure.
func (h *Harness) removeArtifact() {
	if !h.opts.Cleanup {
		return
	}
	if err := os.Remove(h.opts.Artifact); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(h.errw, "warning: remove %s: %v\n", h.opts.Artifact, err)
	}
}
