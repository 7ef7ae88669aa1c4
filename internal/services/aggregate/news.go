package aggregate

import (
	"context"
	"slices"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/models"
)

// MaxNewsAttempts bounds the narrowing chain
const MaxNewsAttempts = 3

// NarrowingQueries returns the keyword sets tried in order: every keyword,
// the first two, then the first one. Each set is a prefix of the one before
// it and repeated sets are dropped. Without keywords the single attempt is
// an empty query over the date window.
func NarrowingQueries(keywords []string) [][]string {
	if len(keywords) == 0 {
		return [][]string{{}}
	}
	var out [][]string
	for _, n := range []int{len(keywords), 2, 1} {
		if n > len(keywords) {
			n = len(keywords)
		}
		set := slices.Clone(keywords[:n])
		if len(out) > 0 && slices.Equal(out[len(out)-1], set) {
			continue
		}
		out = append(out, set)
	}
	return out
}

// SearchNews runs the narrowing chain and stops at the first non-empty
// result. A failed attempt counts as empty. The error is non-nil only when
// every attempt failed; the returned corpus is never nil.
func SearchNews(ctx context.Context, client interfaces.NewsClient, query models.NewsQuery, logger *common.Logger) (*models.NewsCorpus, error) {
	var (
		last    *models.NewsCorpus
		lastErr error
	)
	for i, keywords := range NarrowingQueries(query.Keywords) {
		if i >= MaxNewsAttempts {
			break
		}
		if err := ctx.Err(); err != nil {
			return &models.NewsCorpus{}, err
		}

		attempt := query
		attempt.Keywords = keywords
		result, err := client.Search(ctx, attempt)
		if err != nil {
			lastErr = err
			logger.Warn().Err(err).Int("attempt", i+1).Strs("keywords", keywords).Msg("News search failed")
			continue
		}
		if result == nil {
			result = &models.NewsCorpus{}
		}
		last = result
		if !result.Empty() {
			logger.Debug().Int("attempt", i+1).Int("articles", len(result.Results)).Msg("News search succeeded")
			return result, nil
		}
		logger.Debug().Int("attempt", i+1).Strs("keywords", keywords).Msg("News search empty, narrowing")
	}

	if last == nil {
		return &models.NewsCorpus{}, lastErr
	}
	return last, nil
}
