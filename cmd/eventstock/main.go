// Command eventstock generates event statistics and PDF reports from the
// command line using the same services as eventstock-server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/eventstock/internal/app"
)

// appFactory builds the application for a command run
type appFactory func(configPath string) (*app.App, error)

func newRootCmd(newApp appFactory) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "eventstock",
		Short:         "Event statistics and report generation",
		Long:          `Aggregates company profiles, stock prices and news for an event and produces statistics or a paginated PDF report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path (defaults to EVENTSTOCK_CONFIG or eventstock.toml)")

	open := func() (*app.App, error) {
		return newApp(configPath)
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newStatsCmd(open),
		newReportCmd(open),
		newInspectCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd(app.NewApp).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
