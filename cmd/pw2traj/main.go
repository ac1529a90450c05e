//pw2traj converts the text output of pw.x calculations into compressed
//trajectory files, one frame per extracted structure.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

//newRootCommand builds the root command. The root itself does the
//conversion, the subcommands cover batch runs and log inspection.
func newRootCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "pw2traj <pwscf.log>",
		Short: "Convert pw.x output to a trajectory file",
		Long: `pw2traj reads the log printed by pw.x (Quantum ESPRESSO) and writes
the structures found in it to a compressed trajectory file.

The log may hold several calculations appended to the same file; each
contributes its structures in order. By default the last geometry of
each calculation is written, which for a relaxation is the relaxed one.
Use --index to pick another geometry, counting from 0, or negative to
count from the end. Use --all to keep every step of every calculation.

Without -o, the output goes next to the input, with the extension
replaced by .traj. The output is opened in append mode, so converting
several logs into the same file accumulates their frames.

Only fixed, free-form (ibrav=0) cells are supported. Variable-cell
logs are rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output trajectory file (.traj appended if missing)")
	cmd.Flags().IntVarP(&opts.Index, "index", "i", -1, "which structure of each calculation to write, negative counts from the end")
	cmd.Flags().BoolVar(&opts.All, "all", false, "write every structure of every calculation")
	cmd.Flags().StringVar(&opts.Plot, "plot", "", "also write an energy convergence plot (.png appended)")
	cmd.Flags().StringVar(&opts.Compress, "compress", "zstd", "trajectory compression, zstd or gzip")
	cmd.Flags().IntVar(&opts.Prec, "prec", 3, "decimal places kept in the trajectory coordinates")

	cmd.AddCommand(newBatchCommand())
	cmd.AddCommand(newInfoCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}
