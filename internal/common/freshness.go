// Package common provides shared utilities for EventStock
package common

import "time"

// Freshness TTLs for cached source data
const (
	FreshnessStockSeries = 12 * time.Hour
	FreshnessProfile     = 24 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
