// Package report lays out and encodes event reports
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/models"
)

// Service implements ReportService
type Service struct {
	stats    interfaces.StatsService
	measurer TextMeasurer
	config   common.ReportConfig
	logger   *common.Logger
	now      func() time.Time
}

var _ interfaces.ReportService = (*Service)(nil)

// NewService creates a new report service
func NewService(stats interfaces.StatsService, config common.ReportConfig, logger *common.Logger) *Service {
	return &Service{
		stats:    stats,
		measurer: NewPDFMeasurer(),
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// SetMeasurer replaces the text measurer used for line breaking
func (s *Service) SetMeasurer(m TextMeasurer) {
	s.measurer = m
}

// SetClock replaces the time source used for the page header date
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// BuildReport plans the report document for an event. It fails with
// common.ErrPreconditionNotMet, producing nothing, until every source
// category has loaded and both images are present.
func (s *Service) BuildReport(event *models.EventRecord, agg *models.Aggregate, images models.ReportImages) (*models.ReportDocument, error) {
	if reason := precondition(event, agg, images); reason != "" {
		s.logger.Warn().Str("reason", reason).Msg("Report requested before inputs were ready")
		return nil, fmt.Errorf("%w: %s", common.ErrPreconditionNotMet, reason)
	}

	now := s.now()
	window := event.Window(now)
	stats := s.stats.ComputeAll(event, window, agg)
	content := buildContent(event, agg, images, stats, now)
	content.Header = s.config.Title
	pages := Plan(content, s.measurer)

	keywords := append([]string{event.Name}, event.Keywords...)
	doc := &models.ReportDocument{
		ID: uuid.NewString(),
		Properties: models.DocumentProperties{
			Title:     event.Name + " report",
			Subject:   event.Name,
			Author:    s.config.Author,
			Keywords:  strings.Join(keywords, ", "),
			Creator:   s.config.Creator,
			CreatedAt: now,
		},
		Pages:  pages,
		Images: images,
	}

	s.logger.Info().
		Str("report_id", doc.ID).
		Str("event", event.Name).
		Int("pages", len(pages)).
		Int("companies", len(content.Companies)).
		Int("headlines", len(content.Headlines)).
		Msg("Report planned")
	return doc, nil
}

// RenderPDF encodes a planned document as PDF
func (s *Service) RenderPDF(doc *models.ReportDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is required")
	}
	data, err := renderPDF(doc)
	if err != nil {
		s.logger.Error().Str("report_id", doc.ID).Err(err).Msg("Failed to render report")
		return nil, err
	}
	s.logger.Debug().Str("report_id", doc.ID).Int("pdf_size", len(data)).Msg("Report rendered")
	return data, nil
}

func precondition(event *models.EventRecord, agg *models.Aggregate, images models.ReportImages) string {
	switch {
	case event == nil:
		return "event missing"
	case agg == nil:
		return "aggregate missing"
	case !agg.Ready.Profiles:
		return "company profiles still loading"
	case !agg.Ready.Series:
		return "stock prices still loading"
	case !agg.Ready.News:
		return "news still loading"
	case images.HeatMap == nil:
		return "heat map not rendered"
	case images.StockChart == nil:
		return "stock chart not rendered"
	}
	return ""
}
