package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vine/internal/driver"
	"vine/internal/emit"
	"vine/internal/observ"
	"vine/internal/trace"
)

type emitOptions struct {
	output     string
	format     string
	jobs       int
	startLabel uint64
}

func newEmitCmd() *cobra.Command {
	opts := &emitOptions{}
	cmd := &cobra.Command{
		Use:   "emit [program]",
		Short: "Emit the interaction networks of a program bundle",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write networks to file (default stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format (text|msgpack)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "specs emitted concurrently (0 = GOMAXPROCS)")
	cmd.Flags().Uint64Var(&opts.startLabel, "start-label", 0, "first duplication label")
	return cmd
}

func runEmit(cmd *cobra.Command, args []string, opts *emitOptions) error {
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	path, manifest, err := resolveInput(args)
	if err != nil {
		return err
	}

	var cfg emitConfig
	if manifest != nil {
		cfg = manifest.Config.Emit
		cfg.Output = manifest.resolve(cfg.Output)
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs = opts.jobs
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = opts.format
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = opts.output
	}
	format, err := driver.ParseOutputFormat(cfg.Format)
	if err != nil {
		return err
	}
	toStdout := cfg.Output == "" || cfg.Output == "-"
	if toStdout && format == driver.OutputMsgpack && cmd.OutOrStdout() == os.Stdout && isTerminal(os.Stdout) {
		return errors.New("refusing to write msgpack to a terminal; use --output")
	}

	var timer *observ.Timer
	if g.timings {
		timer = observ.NewTimer()
	}

	span := trace.Begin(trace.FromContext(cmd.Context()), trace.ScopeDriver, "emit", 0)
	defer span.End(path)
	ctx := trace.WithSpan(cmd.Context(), span)

	prog, err := loadProgram(ctx, path, timer)
	if err != nil {
		return err
	}

	res, err := driver.Compile(ctx, prog, driver.Options{
		Jobs:   cfg.Jobs,
		Labels: emit.DupLabelsFrom(opts.startLabel),
		Timer:  timer,
	})
	if err != nil {
		if errors.Is(err, emit.ErrInvariant) {
			dumpRing(cmd, cmd.ErrOrStderr())
		}
		return err
	}

	idx := timer.Begin("write")
	if toStdout {
		err = driver.WriteNets(cmd.OutOrStdout(), res.Nets, format)
	} else {
		err = driver.WriteNetsFile(cfg.Output, res.Nets, format)
	}
	timer.End(idx, format.String())
	if err != nil {
		return err
	}

	if !g.quiet {
		dest := cfg.Output
		if toStdout {
			dest = "stdout"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %d networks from %d specs to %s (next label %s)\n",
			okColor.Sprint("emitted"), res.Nets.Len(), res.Specs, dest, emit.DupLabel(res.Labels.Next()))
	}
	if g.timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}
