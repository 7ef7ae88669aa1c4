package interfaces

import (
	"context"

	"github.com/bobmcallan/eventstock/internal/models"
)

// AggregateService builds the consolidated source view of an event
type AggregateService interface {
	// LoadAggregate starts every source fetch and returns a channel that
	// receives one snapshot per category as it becomes ready. The channel
	// closes after the third snapshot or when ctx is done.
	LoadAggregate(ctx context.Context, event *models.EventRecord) (<-chan models.Snapshot, error)
}

// StatsService derives per-company statistics from an aggregate
type StatsService interface {
	ComputeStats(company string, window models.Window, agg *models.Aggregate) models.DerivedStats
	ComputeAll(event *models.EventRecord, window models.Window, agg *models.Aggregate) []models.DerivedStats
}

// ReportService produces paginated report documents
type ReportService interface {
	BuildReport(event *models.EventRecord, agg *models.Aggregate, images models.ReportImages) (*models.ReportDocument, error)
	RenderPDF(doc *models.ReportDocument) ([]byte, error)
}
