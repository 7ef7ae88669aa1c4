// Package interfaces defines service contracts for EventStock
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/eventstock/internal/models"
)

// ProfileClient provides company social profiles
type ProfileClient interface {
	// GetProfile retrieves the profile for a stock code with posts created
	// inside [from, to]. A zero to leaves the window open-ended.
	GetProfile(ctx context.Context, code string, from, to time.Time) (*models.CompanyProfile, error)
}

// EncyclopediaClient provides encyclopedic summaries by page title
type EncyclopediaClient interface {
	// GetSummary returns the plain-text introduction of a page
	GetSummary(ctx context.Context, title string) (string, error)
}

// StockClient provides daily stock price history
type StockClient interface {
	// GetDailySeries returns the full daily history for a symbol
	GetDailySeries(ctx context.Context, symbol string) (models.StockSeries, error)
}

// NewsClient provides keyword news search
type NewsClient interface {
	// Search returns articles matching every keyword of the query
	Search(ctx context.Context, query models.NewsQuery) (*models.NewsCorpus, error)
}

// ChartRenderer renders stock series into an image
type ChartRenderer interface {
	// RenderStockChart draws every series across the window as a PNG
	RenderStockChart(series map[string]models.StockSeries, window models.Window) (*models.Image, error)
}
