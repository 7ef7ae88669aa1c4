package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/eventstock/internal/app"
	"github.com/bobmcallan/eventstock/internal/models"
)

func newStatsCmd(open func() (*app.App, error)) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [event-file]",
		Short: "Print per-company statistics for an event",
		Long:  `Loads every source for the event in the given YAML or JSON file and prints per-company mention, price and social statistics.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := models.LoadEventFile(args[0])
			if err != nil {
				return err
			}

			a, err := open()
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer a.Close()

			window, stats, err := a.EventStats(cmd.Context(), event)
			if err != nil {
				return fmt.Errorf("event sources did not finish loading: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"event":  event.Name,
					"window": window,
					"days":   window.Days(),
					"stats":  stats,
				})
			}
			_, err = fmt.Fprint(out, app.FormatEventStats(event, window, stats))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print statistics as JSON")
	return cmd
}
