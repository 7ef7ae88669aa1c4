// Package stats derives per-company statistics from an aggregate
package stats

import (
	"math"
	"strings"

	"github.com/bobmcallan/eventstock/internal/models"
)

// Compute derives the statistics of one company over window. It has no side
// effects; identical inputs always give identical output.
func Compute(company string, window models.Window, profile *models.CompanyProfile, series models.StockSeries, news models.NewsCorpus) models.DerivedStats {
	out := models.DerivedStats{
		Company:      company,
		MentionCount: MentionCount(company, news),
	}
	applyPrices(&out, window, series)
	if profile != nil {
		applySocial(&out, window, profile.Posts)
	}
	return out
}

// MentionCount counts the articles whose body contains the first word of
// the company name. Matching is case-sensitive.
func MentionCount(company string, news models.NewsCorpus) int {
	token := firstToken(company)
	if token == "" {
		return 0
	}
	n := 0
	for _, a := range news.Results {
		if strings.Contains(a.BodyText, token) {
			n++
		}
	}
	return n
}

func firstToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func applyPrices(out *models.DerivedStats, window models.Window, series models.StockSeries) {
	var (
		min, max   float64
		havePrice  bool
		start, end float64
		haveStart  bool
		haveEnd    bool
	)
	for _, bar := range series {
		if !window.Contains(bar.Date) {
			continue
		}
		if !havePrice {
			min, max, havePrice = bar.Low, bar.High, true
		}
		min = math.Min(min, bar.Low)
		max = math.Max(max, bar.High)

		day := models.DateOf(bar.Date)
		if day.Equal(window.Start) {
			start, haveStart = bar.Value, true
		}
		if day.Equal(window.End) {
			end, haveEnd = bar.Value, true
		}
	}

	// Degenerate window: the minimum takes the maximum's zero default
	if !havePrice {
		min, max = 0, 0
	}

	if !haveStart {
		start = max
	}
	if !haveEnd {
		end = min
	}

	out.MinPrice = min
	out.MaxPrice = max
	out.StartPrice = start
	out.EndPrice = end
	out.HasPriceData = havePrice
}

func applySocial(out *models.DerivedStats, window models.Window, posts []models.Post) {
	var likes, comments int64
	count := 0
	for _, p := range posts {
		if !window.Contains(p.CreatedTime) {
			continue
		}
		count++
		likes += p.Likes
		comments += p.Comments
	}

	out.PostCount = count
	out.AvgPostsPerDay = ceilDiv(int64(count), int64(window.Days()))
	if count == 0 {
		return
	}
	out.AvgLikesPerPost = ceilDiv(likes, int64(count))
	out.AvgCommentsPerPost = ceilDiv(comments, int64(count))
}

// ceilDiv divides rounding up; d must be positive
func ceilDiv(n, d int64) int {
	if n <= 0 {
		return 0
	}
	return int((n + d - 1) / d)
}
