package app

import (
	"context"
	"time"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
)

// startCachePurge empties the source cache on a fixed interval until ctx is done.
func startCachePurge(ctx context.Context, cache interfaces.CacheStore, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Cache purge: stopped")
			return
		case <-ticker.C:
			purgeCache(ctx, cache, logger)
		}
	}
}

func purgeCache(ctx context.Context, cache interfaces.CacheStore, logger *common.Logger) {
	start := time.Now()
	n, err := cache.Purge(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Cache purge: failed")
		return
	}
	logger.Info().
		Int("entries", n).
		Dur("elapsed", time.Since(start)).
		Msg("Cache purge: complete")
}
