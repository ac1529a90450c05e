package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

//Version is set via ldflags at build time.
var Version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pw2traj %s\n", Version)
		},
	}
}
