// Package aggregate builds the consolidated source view of an event
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/models"
)

const (
	// ProfilePadding widens the profile fetch window on both sides
	ProfilePadding = 7 * 24 * time.Hour
	// MinSeriesPadding is the smallest margin kept around the event when
	// trimming a stock series
	MinSeriesPadding = 7 * 24 * time.Hour
)

// Service implements AggregateService
type Service struct {
	profiles interfaces.ProfileClient
	stocks   interfaces.StockClient
	news     interfaces.NewsClient
	enricher *Enricher
	cache    interfaces.CacheStore
	logger   *common.Logger
	now      func() time.Time
}

var _ interfaces.AggregateService = (*Service)(nil)

// NewService creates a new aggregation service. cache may be nil.
func NewService(
	profiles interfaces.ProfileClient,
	encyclopedia interfaces.EncyclopediaClient,
	stocks interfaces.StockClient,
	news interfaces.NewsClient,
	cache interfaces.CacheStore,
	logger *common.Logger,
) *Service {
	return &Service{
		profiles: profiles,
		stocks:   stocks,
		news:     news,
		enricher: NewEnricher(encyclopedia, logger),
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for open-ended windows
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// fetchResult carries one completed fetch to the aggregator goroutine
type fetchResult struct {
	category models.Category
	company  string
	profile  *models.CompanyProfile
	series   models.StockSeries
	news     *models.NewsCorpus
	err      error
}

// LoadAggregate starts every source fetch for event and returns a channel
// receiving one snapshot per category as it becomes ready. Failed fetches
// still count toward completion. The channel closes after the third
// snapshot, or early when ctx is done; results arriving after that are
// discarded.
func (s *Service) LoadAggregate(ctx context.Context, event *models.EventRecord) (<-chan models.Snapshot, error) {
	if event == nil {
		return nil, errors.New("event is required")
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	now := s.now()
	coded := event.CompaniesWithCode()
	results := make(chan fetchResult, 2*len(coded)+1)
	out := make(chan models.Snapshot, 3)

	s.logger.Info().
		Str("event", event.Name).
		Int("companies", len(event.RelatedCompanies)).
		Int("with_code", len(coded)).
		Msg("Loading event aggregate")

	go s.aggregate(ctx, event, results, out)

	send := func(r fetchResult) {
		select {
		case results <- r:
		case <-ctx.Done():
		}
	}

	for _, c := range coded {
		go func(c models.RelatedCompany) {
			profile, err := s.loadProfile(ctx, event, c, now)
			send(fetchResult{category: models.CategoryProfiles, company: c.Name, profile: profile, err: err})
		}(c)
		go func(c models.RelatedCompany) {
			series, err := s.loadSeries(ctx, event, c, now)
			send(fetchResult{category: models.CategorySeries, company: c.Name, series: series, err: err})
		}(c)
	}
	go func() {
		corpus, err := SearchNews(ctx, s.news, models.NewsQuery{
			Keywords: event.Keywords,
			From:     event.StartDate,
			To:       event.EffectiveEnd(now),
		}, s.logger)
		send(fetchResult{category: models.CategoryNews, news: corpus, err: err})
	}()

	return out, nil
}

// aggregate is the single owner of the counters and the Aggregate map
func (s *Service) aggregate(ctx context.Context, event *models.EventRecord, results <-chan fetchResult, out chan<- models.Snapshot) {
	defer close(out)

	agg := models.NewAggregate(event.Name)
	total := len(event.RelatedCompanies)
	resolved := map[models.Category]int{}

	// Companies without a code resolve immediately for both categories
	for _, c := range event.RelatedCompanies {
		if !c.HasCode() {
			resolved[models.CategoryProfiles]++
			resolved[models.CategorySeries]++
		}
	}

	emit := func(c models.Category) bool {
		if ctx.Err() != nil {
			return false
		}
		agg.Ready.Set(c)
		s.logger.Debug().Str("event", event.Name).Str("category", string(c)).Msg("Category ready")
		select {
		case out <- models.Snapshot{Category: c, Aggregate: agg.Clone()}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, c := range []models.Category{models.CategoryProfiles, models.CategorySeries} {
		if resolved[c] == total {
			if !emit(c) {
				return
			}
		}
	}

	for !agg.Complete() {
		select {
		case <-ctx.Done():
			s.logger.Debug().Str("event", event.Name).Err(ctx.Err()).Msg("Aggregate cancelled, discarding late results")
			return
		case r := <-results:
			if ctx.Err() != nil {
				return
			}
			if r.err != nil {
				s.logger.Warn().
					Str("event", event.Name).
					Str("category", string(r.category)).
					Str("company", r.company).
					Err(r.err).
					Msg("Source fetch failed")
			}

			switch r.category {
			case models.CategoryProfiles:
				if r.profile != nil {
					agg.Profiles[r.company] = r.profile
				}
			case models.CategorySeries:
				if r.err == nil {
					agg.Series[r.company] = r.series
				}
			case models.CategoryNews:
				if r.news != nil {
					agg.News = *r.news
				}
				if !emit(models.CategoryNews) {
					return
				}
				continue
			}

			resolved[r.category]++
			if resolved[r.category] == total {
				if !emit(r.category) {
					return
				}
			}
		}
	}

	s.logger.Info().
		Str("event", event.Name).
		Int("profiles", len(agg.Profiles)).
		Int("series", len(agg.Series)).
		Int("articles", len(agg.News.Results)).
		Msg("Event aggregate complete")
}

// ProfileWindow returns the profile fetch window: seven days either side of
// the event, never past now. The end is zero for an ongoing event.
func ProfileWindow(event *models.EventRecord, now time.Time) (time.Time, time.Time) {
	from := event.StartDate.Add(-ProfilePadding)
	if event.Ongoing() {
		return from, time.Time{}
	}
	to := event.EndDate.Add(ProfilePadding)
	if to.After(now) {
		to = now
	}
	return from, to
}

// SeriesWindow returns the range kept from a full stock history: the event
// padded by half its span on each side, and by at least MinSeriesPadding.
func SeriesWindow(event *models.EventRecord, now time.Time) (time.Time, time.Time) {
	end := event.EffectiveEnd(now)
	pad := end.Sub(event.StartDate) / 2
	if pad < MinSeriesPadding {
		pad = MinSeriesPadding
	}
	return event.StartDate.Add(-pad), end.Add(pad)
}

func (s *Service) loadProfile(ctx context.Context, event *models.EventRecord, c models.RelatedCompany, now time.Time) (*models.CompanyProfile, error) {
	from, to := ProfileWindow(event, now)
	key := profileCacheKey(c, from, to)

	if s.cache != nil {
		cached, err := s.cache.GetProfile(ctx, key)
		if err != nil {
			s.logger.Warn().Str("key", key).Err(err).Msg("Profile cache read failed")
		} else if cached != nil && cached.Profile != nil && common.IsFresh(cached.FetchedAt, common.FreshnessProfile) {
			s.logger.Debug().Str("company", c.Name).Msg("Profile served from cache")
			return cached.Profile, nil
		}
	}

	profile, err := s.profiles.GetProfile(ctx, c.Code, from, to)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", c.Code, err)
	}
	enriched := s.enricher.Enrich(ctx, c.Name, profile)

	if s.cache != nil {
		entry := &models.CachedProfile{Key: key, Profile: enriched, FetchedAt: s.now()}
		if err := s.cache.SaveProfile(ctx, entry); err != nil {
			s.logger.Warn().Str("key", key).Err(err).Msg("Profile cache write failed")
		}
	}
	return enriched, nil
}

func (s *Service) loadSeries(ctx context.Context, event *models.EventRecord, c models.RelatedCompany, now time.Time) (models.StockSeries, error) {
	from, to := SeriesWindow(event, now)

	if s.cache != nil {
		cached, err := s.cache.GetSeries(ctx, c.Code)
		if err != nil {
			s.logger.Warn().Str("code", c.Code).Err(err).Msg("Series cache read failed")
		} else if cached != nil && common.IsFresh(cached.FetchedAt, common.FreshnessStockSeries) {
			s.logger.Debug().Str("company", c.Name).Msg("Series served from cache")
			return cached.Series.Between(from, to), nil
		}
	}

	series, err := s.stocks.GetDailySeries(ctx, c.Code)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", c.Code, err)
	}

	if s.cache != nil {
		entry := &models.CachedSeries{Code: c.Code, Series: series, FetchedAt: s.now()}
		if err := s.cache.SaveSeries(ctx, entry); err != nil {
			s.logger.Warn().Str("code", c.Code).Err(err).Msg("Series cache write failed")
		}
	}
	return series.Between(from, to), nil
}

func profileCacheKey(c models.RelatedCompany, from, to time.Time) string {
	end := models.OngoingEndDate
	if !to.IsZero() {
		end = to.Format(models.DateLayout)
	}
	return c.Code + "|" + from.Format(models.DateLayout) + "|" + end
}
