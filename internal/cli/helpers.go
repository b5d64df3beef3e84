package cli

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/smmu-sim/tracerun/internal/project"
)

func loadProjectFromWD() (*project.Project, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return project.Discover(wd)
}

var (
	colorHeading = color.New(color.FgBlue, color.Bold).SprintFunc()
	colorGood    = color.New(color.FgGreen, color.Bold).SprintFunc()
	colorBad     = color.New(color.FgHiRed, color.Bold).SprintFunc()
)

func heading(s string, useColor bool) string {
	if useColor {
		return colorHeading(s)
	}
	return s
}

func good(s string, useColor bool) string {
	if useColor {
		return colorGood(s)
	}
	return s
}

func bad(s string, useColor bool) string {
	if useColor {
		return colorBad(s)
	}
	return s
}

func divider() string {
	return strings.Repeat("-", 40)
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
