package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"property_search/internal/domain"
	"property_search/internal/lib/logger/sl"
)

const keyPrefix = "property_search:property:"

// Fetcher загрузка полной записи по ID.
type Fetcher interface {
	FetchPropertyByID(ctx context.Context, id int64) (domain.Property, error)
}

// CachedFetcher кеширует записи, догружаемые для AI-выдачи.
// Сбой кеша не ломает загрузку, запрос идёт в источник.
type CachedFetcher struct {
	log   *slog.Logger
	next  Fetcher
	store Store
	ttl   time.Duration
}

func NewCachedFetcher(log *slog.Logger, next Fetcher, store Store, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{log: log, next: next, store: store, ttl: ttl}
}

func (f *CachedFetcher) FetchPropertyByID(ctx context.Context, id int64) (domain.Property, error) {
	const op = "cache.CachedFetcher.FetchPropertyByID"
	log := f.log.With(slog.String("op", op), slog.Int64("property_id", id))

	key := keyPrefix + strconv.FormatInt(id, 10)

	data, err := f.store.Get(ctx, key)
	switch {
	case err == nil:
		var p domain.Property
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
		log.Warn("corrupted cache entry, refetching")
	case !errors.Is(err, domain.ErrCacheMiss):
		log.Warn("cache read failed", sl.Err(err))
	}

	p, err := f.next.FetchPropertyByID(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := f.store.Set(ctx, key, data, f.ttl); err != nil {
			log.Warn("cache write failed", sl.Err(err))
		}
	}

	return p, nil
}
