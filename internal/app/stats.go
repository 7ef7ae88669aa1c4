package app

import (
	"context"
	"time"

	"github.com/bobmcallan/eventstock/internal/models"
	"github.com/bobmcallan/eventstock/internal/services/aggregate"
)

// EventStats waits for every source of event to load and computes the
// per-company statistics over the event window.
func (a *App) EventStats(ctx context.Context, event *models.EventRecord) (models.Window, []models.DerivedStats, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Config.Report.GetLoadTimeout())
	defer cancel()

	agg, err := aggregate.LoadComplete(ctx, a.AggregateService, event)
	if err != nil {
		return models.Window{}, nil, err
	}

	window := event.Window(time.Now())
	return window, a.StatsService.ComputeAll(event, window, agg), nil
}

// FormatEventStats renders statistics as the markdown table used by the
// event_stats tool and the CLI.
func FormatEventStats(event *models.EventRecord, window models.Window, stats []models.DerivedStats) string {
	return formatEventStats(event, window, stats)
}
