package main

import (
	"fmt"

	pw "github.com/rmera/gopw"
	"github.com/spf13/cobra"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <pwscf.log>",
		Short: "Summarize the structures in a log without converting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runInfo(logpath string) error {
	segments, err := pw.FileRead(logpath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", logpath, err)
	}
	if len(segments) == 0 {
		return fmt.Errorf("no pw.x calculations found in %s", logpath)
	}
	fmt.Printf("%s: %d calculation(s)\n", logpath, len(segments))
	for k, snaps := range segments {
		fmt.Printf("calculation %d: %d structure(s)\n", k+1, len(snaps))
		if len(snaps) == 0 {
			continue
		}
		last := snaps[len(snaps)-1]
		fmt.Printf("  %s, %d atoms, cell volume %.3f A^3\n", composition(last), last.Len(), last.Volume())
		for i, s := range snaps {
			if s.HasEnergy() {
				fmt.Printf("  step %d: E = %.6f eV\n", i, s.Energy)
			} else {
				fmt.Printf("  step %d: E = n/a\n", i)
			}
		}
	}
	return nil
}

//composition gives the usual formula-style summary, elements in order
//of first appearance: Si2O4.
func composition(s *pw.Snapshot) string {
	var order []string
	counts := make(map[string]int)
	for _, sym := range s.Symbols() {
		if counts[sym] == 0 {
			order = append(order, sym)
		}
		counts[sym]++
	}
	ret := ""
	for _, sym := range order {
		if counts[sym] == 1 {
			ret += sym
		} else {
			ret += fmt.Sprintf("%s%d", sym, counts[sym])
		}
	}
	return ret
}
