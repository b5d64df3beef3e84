package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/smmu-sim/tracerun/internal/project"
)

func newDoctorCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose harness prerequisites and project layout issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show passing checks too")
	return cmd
}

type doctorContext struct {
	Project *project.Project
}

type doctorCheck struct {
	Name string
	Fn   func(*doctorContext) error
}

func runDoctor(cmd *cobra.Command, verbose bool) error {
	ctx := &doctorContext{}
	wd, _ := os.Getwd()
	checks := []doctorCheck{
		{Name: "project layout", Fn: func(c *doctorContext) error {
			proj, err := project.Discover(wd)
			if err != nil {
				return err
			}
			c.Project = proj
			return nil
		}},
		{Name: "compiler installed", Fn: checkCompilerOnPath},
		{Name: "manifest sources present", Fn: checkSources},
		{Name: "include directories present", Fn: checkIncludeDirs},
		{Name: "trace directory present", Fn: checkTraceDir},
	}

	errColor := writerIsTerminal(cmd.ErrOrStderr())
	outColor := writerIsTerminal(cmd.OutOrStdout())
	var failures []string
	for _, check := range checks {
		err := check.Fn(ctx)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s %s: %v", bad("✗", errColor), check.Name, err))
			continue
		}
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", good("✓", outColor), check.Name)
		}
	}

	if len(failures) > 0 {
		for _, failure := range failures {
			fmt.Fprintln(cmd.ErrOrStderr(), failure)
		}
		return fmt.Errorf("%d doctor checks failed", len(failures))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "healthy!")
	return nil
}

func checkCompilerOnPath(ctx *doctorContext) error {
	if ctx.Project == nil {
		return errProjectMissing
	}
	compiler := ctx.Project.Config.Toolchain.Compiler
	if _, err := exec.LookPath(compiler); err != nil {
		return fmt.Errorf("%s not found on PATH", compiler)
	}
	return nil
}

func checkSources(ctx *doctorContext) error {
	if ctx.Project == nil {
		return errProjectMissing
	}
	var missing []string
	for _, src := range ctx.Project.Sources() {
		if _, err := os.Stat(src); err != nil {
			missing = append(missing, src)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d of %d sources missing, first: %s",
			len(missing), len(ctx.Project.Sources()), missing[0])
	}
	return nil
}

func checkIncludeDirs(ctx *doctorContext) error {
	if ctx.Project == nil {
		return errProjectMissing
	}
	for _, dir := range ctx.Project.IncludeDirs() {
		fi, err := os.Stat(dir)
		if err != nil || !fi.IsDir() {
			return fmt.Errorf("include dir %s missing", dir)
		}
	}
	return nil
}

func checkTraceDir(ctx *doctorContext) error {
	if ctx.Project == nil {
		return errProjectMissing
	}
	fi, err := os.Stat(ctx.Project.TraceDir())
	if err != nil || !fi.IsDir() {
		return fmt.Errorf("trace dir %s missing", ctx.Project.TraceDir())
	}
	return nil
}

var errProjectMissing = errors.New("project not discovered")
