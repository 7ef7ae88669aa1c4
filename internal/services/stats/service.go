package stats

import (
	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/models"
)

// Service implements StatsService
type Service struct {
	logger *common.Logger
}

var _ interfaces.StatsService = (*Service)(nil)

// NewService creates a new stats service
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// ComputeStats derives the statistics of one company from the aggregate
func (s *Service) ComputeStats(company string, window models.Window, agg *models.Aggregate) models.DerivedStats {
	if agg == nil {
		return Compute(company, window, nil, nil, models.NewsCorpus{})
	}
	out := Compute(company, window, agg.Profiles[company], agg.Series[company], agg.News)
	if !out.HasPriceData {
		s.logger.Debug().Str("company", company).Str("window", window.String()).Msg("No price data inside window")
	}
	return out
}

// ComputeAll returns statistics for every profiled company, in event order
func (s *Service) ComputeAll(event *models.EventRecord, window models.Window, agg *models.Aggregate) []models.DerivedStats {
	var out []models.DerivedStats
	if agg == nil {
		return out
	}
	for _, c := range event.RelatedCompanies {
		if _, ok := agg.Profiles[c.Name]; !ok {
			continue
		}
		out = append(out, s.ComputeStats(c.Name, window, agg))
	}
	return out
}
