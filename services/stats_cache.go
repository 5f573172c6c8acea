package services

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	statsCacheKey   = "stats"
	DefaultStatsTTL = 30 * time.Second
)

// StatsCache 短时缓存统计结果，任何写操作后失效
type StatsCache struct {
	store *ArtworkStore
	cache *cache.Cache
}

func NewStatsCache(store *ArtworkStore, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{store: store, cache: cache.New(ttl, 2*ttl)}
}

func (c *StatsCache) Get(ctx context.Context) (Stats, error) {
	if v, ok := c.cache.Get(statsCacheKey); ok {
		return v.(Stats), nil
	}
	stats, err := c.store.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	c.cache.Set(statsCacheKey, stats, cache.DefaultExpiration)
	return stats, nil
}

func (c *StatsCache) Invalidate() {
	c.cache.Delete(statsCacheKey)
}
