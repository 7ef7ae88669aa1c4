package interfaces

import (
	"context"

	"github.com/bobmcallan/eventstock/internal/models"
)

// CacheStore holds fetched source data for reuse across requests.
// Get methods return (nil, nil) when nothing is cached.
type CacheStore interface {
	GetSeries(ctx context.Context, code string) (*models.CachedSeries, error)
	SaveSeries(ctx context.Context, entry *models.CachedSeries) error

	GetProfile(ctx context.Context, key string) (*models.CachedProfile, error)
	SaveProfile(ctx context.Context, entry *models.CachedProfile) error

	// Purge removes every cached entry and returns the number removed
	Purge(ctx context.Context) (int, error)

	Close() error
}
