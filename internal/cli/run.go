package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/smmu-sim/tracerun/internal/harness"
	"github.com/smmu-sim/tracerun/internal/project"
	"github.com/smmu-sim/tracerun/internal/runner"
	"github.com/smmu-sim/tracerun/internal/toolchain"
)

type runOptions struct {
	keep    bool
	timeout time.Duration
}

func runTrace(cmd *cobra.Command, opts *runOptions, args []string) error {
	proj, err := loadProjectFromWD()
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	traceArg := ""
	if len(args) == 1 {
		traceArg = args[0]
	}

	timeout, err := proj.Config.Run.TimeoutDuration()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		timeout = opts.timeout
	}

	h := buildHarness(cmd, proj, harness.Options{
		TraceArg: traceArg,
		WorkDir:  wd,
		TraceDir: proj.TraceDir(),
		Manifest: toolchain.Manifest{
			Sources:     proj.Sources(),
			IncludeDirs: proj.IncludeDirs(),
		},
		Artifact: proj.ArtifactPath(),
		Cleanup:  proj.Config.Run.CleanupEnabled() && !opts.keep,
		Timeout:  timeout,
	})

	out := cmd.OutOrStdout()
	useColor := writerIsTerminal(out)
	fmt.Fprintln(out, heading("=== SMMU Trace Runner Tool ===", useColor))

	res, err := h.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, divider())
	printStageSummary(out, res)
	fmt.Fprintln(out, good("Done.", useColor))
	return nil
}

func buildHarness(cmd *cobra.Command, proj *project.Project, opts harness.Options) *harness.Harness {
	out := cmd.OutOrStdout()
	errw := cmd.ErrOrStderr()

	compiler := toolchain.New(proj.Config.Toolchain)
	compiler.Stdout = out
	compiler.Stderr = errw

	process := &runner.Exec{Stdout: out, Stderr: errw}

	h := harness.New(opts, compiler, process)
	h.SetOutput(out, errw)
	return h
}

func printStageSummary(out io.Writer, res *harness.Result) {
	width := 0
	for _, tm := range res.Timings {
		if w := runewidth.StringWidth(string(tm.Stage)); w > width {
			width = w
		}
	}
	for _, tm := range res.Timings {
		fmt.Fprintf(out, "  %s  %s\n",
			runewidth.FillRight(string(tm.Stage), width),
			tm.Elapsed.Round(time.Millisecond),
		)
	}
}
