package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/eventstock/internal/app"
	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/models"
	"github.com/bobmcallan/eventstock/internal/services/report"
)

func newReportCmd(open func() (*app.App, error)) *cobra.Command {
	var (
		heatMapPath string
		outPath     string
	)

	cmd := &cobra.Command{
		Use:   "report [event-file]",
		Short: "Generate the PDF report for an event",
		Long: `Loads every source for the event in the given YAML or JSON file and writes
the paginated PDF report. The heat map image must be supplied with --heat-map.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := models.LoadEventFile(args[0])
			if err != nil {
				return err
			}

			var heatMap *models.Image
			if heatMapPath != "" {
				data, err := os.ReadFile(heatMapPath)
				if err != nil {
					return fmt.Errorf("failed to read heat map: %w", err)
				}
				if heatMap, err = models.NewImage(data); err != nil {
					return fmt.Errorf("invalid heat map %s: %w", heatMapPath, err)
				}
			}

			a, err := open()
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer a.Close()

			doc, err := a.GenerateReport(cmd.Context(), event, heatMap)
			if errors.Is(err, common.ErrPreconditionNotMet) {
				return errors.New(common.PreconditionMessage)
			}
			if err != nil {
				return err
			}

			data, err := a.ReportService.RenderPDF(doc)
			if err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}

			if outPath == "" {
				outPath = defaultOutputPath(doc.Properties.Title)
			}
			if dir := filepath.Dir(outPath); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			summary, err := report.Inspect(data)
			if err != nil {
				return fmt.Errorf("failed to read back report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d pages, report %s)\n", outPath, summary.Pages, doc.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&heatMapPath, "heat-map", "", "PNG or JPEG heat map of the event")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output PDF path (defaults to \"<event> report.pdf\")")
	return cmd
}

// defaultOutputPath turns a report title into a file name in the working
// directory. Path separators and control characters become underscores.
func defaultOutputPath(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r < 0x20:
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" || strings.Trim(name, ".") == "" {
		name = "report"
	}
	return name + ".pdf"
}

func newInspectCmd() *cobra.Command {
	var showText bool

	cmd := &cobra.Command{
		Use:   "inspect [pdf-file]",
		Short: "Print the page count and text of a generated report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			summary, err := report.Inspect(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d pages\n", args[0], summary.Pages)
			if showText {
				for i, text := range summary.PageTexts {
					fmt.Fprintf(out, "\n--- page %d ---\n%s\n", i+1, text)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showText, "text", false, "Print the extracted text of every page")
	return cmd
}
