package cache

import (
	"context"
	"time"
)

// CappedCache wraps a cache and shortens every entry's TTL to at most Max.
// A zero TTL passed to Set (no expiry) is capped as well.
type CappedCache struct {
	Cache
	Max time.Duration
}

// WithMaxTTL caps the TTL of entries written to c. A non-positive max
// returns c unchanged.
func WithMaxTTL(c Cache, max time.Duration) Cache {
	if max <= 0 {
		return c
	}
	return &CappedCache{Cache: c, Max: max}
}

// Set writes data with min(ttl, Max).
func (c *CappedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > c.Max {
		ttl = c.Max
	}
	return c.Cache.Set(ctx, key, data, ttl)
}

var _ Cache = (*CappedCache)(nil)
