// Package storage opens the source cache used by the aggregation service.
package storage

import (
	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/storage/badger"
)

// NewCacheStore opens the configured source cache. An empty path keeps the
// cache in memory.
func NewCacheStore(logger *common.Logger, config common.StorageConfig) (interfaces.CacheStore, error) {
	store, err := badger.NewStore(logger, config.Path)
	if err != nil {
		return nil, err
	}
	return badger.NewCacheStorage(store, logger), nil
}
