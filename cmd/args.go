package cmd

import (
	"fmt"

	"github.com/grovetools/pybuild/launcher"
	"github.com/spf13/cobra"
)

func newArgsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "args",
		Short: "Print the freezer's argument vector, one token per line",
		Long: `Prints the arguments pybuild passes to the freezer for the working
directory, one token per line, without running anything.

With --legacy the vector is produced by splitting the flat argument
template on single spaces. That form breaks any path containing a space
into several tokens; compare the two to see the difference.

Examples:
  pybuild args
  pybuild args --legacy -C "/tmp/my project"
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFrom(cmd)
			legacy, _ := cmd.Flags().GetBool("legacy")

			p, err := launcher.ResolvePaths(rt.Dir)
			if err != nil {
				return err
			}

			vector := launcher.BuildArgs(p)
			if legacy {
				vector = launcher.BuildArgumentVector(p)
			}
			out := cmd.OutOrStdout()
			for _, tok := range vector {
				fmt.Fprintln(out, tok)
			}
			return nil
		},
	}

	cmd.Flags().Bool("legacy", false, "Split the flat template on spaces instead")
	return cmd
}
