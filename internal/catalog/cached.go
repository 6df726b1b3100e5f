package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jcmexdev/pizzaflow/internal/pkg/cache"
)

// CachedProvider is a read-through cache in front of another Provider.
// Cache failures are logged and degrade to the inner provider; singleflight
// collapses concurrent misses for the same key.
type CachedProvider struct {
	inner Provider
	cache cache.Cache
	ttl   time.Duration
	sfg   singleflight.Group
}

func NewCachedProvider(inner Provider, c cache.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c, ttl: ttl}
}

func (p *CachedProvider) ListStores(ctx context.Context) ([]Store, error) {
	key := p.cache.GenerateKey("stores", "all")
	var stores []Store
	err := p.through(ctx, key, &stores, func() (any, error) {
		return p.inner.ListStores(ctx)
	})
	return stores, err
}

func (p *CachedProvider) ListMenuItems(ctx context.Context, storeID string) ([]MenuItem, error) {
	key := p.cache.GenerateKey("menu", storeID)
	var items []MenuItem
	err := p.through(ctx, key, &items, func() (any, error) {
		return p.inner.ListMenuItems(ctx, storeID)
	})
	return items, err
}

// through fills dst from the cache when possible, otherwise loads from the
// inner provider and backfills the cache.
func (p *CachedProvider) through(ctx context.Context, key string, dst any, load func() (any, error)) error {
	v, err, _ := p.sfg.Do(key, func() (any, error) {
		raw, err := p.cache.Get(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, "catalog cache get failed", "key", key, "error", err)
		}
		if raw != "" {
			return raw, nil
		}

		val, err := load()
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		if err := p.cache.Set(ctx, key, string(b), p.ttl); err != nil {
			slog.WarnContext(ctx, "catalog cache set failed", "key", key, "error", err)
		}
		return string(b), nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(v.(string)), dst)
}
