package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vine/internal/driver"
	"vine/internal/observ"
	"vine/internal/trace"
)

const noInputMessage = "no program given and no [emit].program in vine.toml\nplease specify the bundle explicitly, e.g.:\n  vine emit path/to/program.vb"

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	noteColor = color.New(color.FgCyan)
)

// resolveInput picks the program bundle from the arguments, falling back to
// the nearest vine.toml.
func resolveInput(args []string) (string, *projectManifest, error) {
	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return "", nil, err
	}
	if len(args) == 1 {
		return args[0], manifest, nil
	}
	if manifest != nil && manifest.Config.Emit.Program != "" {
		return manifest.resolve(manifest.Config.Emit.Program), manifest, nil
	}
	return "", manifest, errors.New(noInputMessage)
}

type globalFlags struct {
	quiet   bool
	timings bool
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	var g globalFlags
	var err error
	if g.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return g, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return g, nil
}

// loadProgram reads the bundle at path, timing the read when timer is set.
func loadProgram(ctx context.Context, path string, timer *observ.Timer) (*driver.Program, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "load", trace.CurrentSpan(ctx).SpanID)
	idx := timer.Begin("load")
	prog, err := driver.LoadProgramFile(path)
	timer.End(idx, path)
	span.End(path)
	return prog, err
}

// dumpRing writes the most recent trace events after an internal failure.
func dumpRing(cmd *cobra.Command, w io.Writer) {
	ring := trace.Ring(trace.FromContext(cmd.Context()))
	if ring == nil {
		return
	}
	fmt.Fprintln(w, noteColor.Sprint("recent trace events:"))
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}
