package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [program]",
		Short: "Validate a program bundle without emitting it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	path, _, err := resolveInput(args)
	if err != nil {
		return err
	}
	prog, err := loadProgram(cmd.Context(), path, nil)
	if err != nil {
		return err
	}
	if err := prog.Validate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", failColor.Sprint("invalid"), path)
		return err
	}
	if !g.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d fragments, %d specs\n",
			okColor.Sprint("ok"), path, len(prog.Fragments), len(prog.Specs.IDs()))
	}
	return nil
}
