package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/models"
)

type cacheStorage struct {
	store  *Store
	logger *common.Logger
}

var _ interfaces.CacheStore = (*cacheStorage)(nil)

// NewCacheStorage creates a CacheStore backed by BadgerHold.
func NewCacheStorage(store *Store, logger *common.Logger) *cacheStorage {
	return &cacheStorage{store: store, logger: logger}
}

func (s *cacheStorage) GetSeries(_ context.Context, code string) (*models.CachedSeries, error) {
	var entry models.CachedSeries
	if err := s.store.db.Get(code, &entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get series '%s': %w", code, err)
	}
	return &entry, nil
}

func (s *cacheStorage) SaveSeries(_ context.Context, entry *models.CachedSeries) error {
	if err := s.store.db.Upsert(entry.Code, entry); err != nil {
		return fmt.Errorf("failed to save series '%s': %w", entry.Code, err)
	}
	return nil
}

func (s *cacheStorage) GetProfile(_ context.Context, key string) (*models.CachedProfile, error) {
	var entry models.CachedProfile
	if err := s.store.db.Get(key, &entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile '%s': %w", key, err)
	}
	return &entry, nil
}

func (s *cacheStorage) SaveProfile(_ context.Context, entry *models.CachedProfile) error {
	if err := s.store.db.Upsert(entry.Key, entry); err != nil {
		return fmt.Errorf("failed to save profile '%s': %w", entry.Key, err)
	}
	return nil
}

func (s *cacheStorage) Purge(_ context.Context) (int, error) {
	total := 0
	for _, dataType := range []interface{}{&models.CachedSeries{}, &models.CachedProfile{}} {
		n, err := s.store.db.Count(dataType, nil)
		if err != nil {
			return total, fmt.Errorf("failed to count cache entries: %w", err)
		}
		if err := s.store.db.DeleteMatching(dataType, nil); err != nil {
			return total, fmt.Errorf("failed to purge cache entries: %w", err)
		}
		total += int(n)
	}
	s.logger.Info().Int("entries", total).Msg("Source cache purged")
	return total, nil
}

func (s *cacheStorage) Close() error {
	return s.store.Close()
}
