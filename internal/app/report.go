package app

import (
	"context"
	"time"

	"github.com/bobmcallan/eventstock/internal/models"
	"github.com/bobmcallan/eventstock/internal/services/aggregate"
)

// GenerateReport loads every source for event, renders the stock chart and
// plans the report. heatMap is drawn by the caller; without it the report
// service rejects the request with common.ErrPreconditionNotMet.
func (a *App) GenerateReport(ctx context.Context, event *models.EventRecord, heatMap *models.Image) (*models.ReportDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Config.Report.GetLoadTimeout())
	defer cancel()

	start := time.Now()
	agg, err := aggregate.LoadComplete(ctx, a.AggregateService, event)
	if err != nil && agg == nil {
		return nil, err
	}
	if err != nil {
		// A partial aggregate still reaches the report service, which
		// reports which category is missing.
		a.Logger.Warn().Err(err).Str("event", event.Name).Msg("Event sources did not finish loading")
	}

	images := models.ReportImages{HeatMap: heatMap}
	chart, err := a.ChartRenderer.RenderStockChart(agg.Series, event.Window(time.Now()))
	if err != nil {
		a.Logger.Warn().Err(err).Str("event", event.Name).Msg("Stock chart not rendered")
	} else {
		images.StockChart = chart
	}

	doc, err := a.ReportService.BuildReport(event, agg, images)
	if err != nil {
		return nil, err
	}
	a.Logger.Info().
		Str("event", event.Name).
		Str("report_id", doc.ID).
		Dur("elapsed", time.Since(start)).
		Msg("Report generated")
	return doc, nil
}
