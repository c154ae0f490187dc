package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vine/internal/vir"
)

func newDumpCmd() *cobra.Command {
	var fragment string
	cmd := &cobra.Command{
		Use:   "dump [program]",
		Short: "Print the units of a program bundle",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _, err := resolveInput(args)
			if err != nil {
				return err
			}
			prog, err := loadProgram(cmd.Context(), path, nil)
			if err != nil {
				return err
			}
			found := fragment == ""
			for i, frag := range prog.Fragments {
				if fragment != "" && frag.Path != fragment {
					continue
				}
				found = true
				if i >= len(prog.Units) || prog.Units[i] == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "unit %s: missing\n", frag.Path)
					continue
				}
				if err := vir.Dump(cmd.OutOrStdout(), frag.Path, prog.Units[i]); err != nil {
					return err
				}
			}
			if !found {
				return fmt.Errorf("no fragment %q in %s", fragment, path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fragment, "fragment", "", "only dump the fragment with this path")
	return cmd
}
