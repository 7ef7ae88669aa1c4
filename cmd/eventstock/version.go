package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/eventstock/internal/common"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			common.LoadVersionFromFile()
			fmt.Fprintf(cmd.OutOrStdout(), "EventStock version %s\n", common.GetFullVersion())
		},
	}
}
