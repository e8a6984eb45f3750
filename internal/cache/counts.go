// Package cache provides the redis-backed read-side cache for owner
// dashboard counters. The authoritative numbers always come from a scan
// of reservation rows; this cache only short-circuits repeated reads and
// is invalidated by the lifecycle manager on every successful transition.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ventech/venue-locator/internal/model"
)

// CountsCache stores per-owner aggregate counters under a namespaced
// key. A nil redis client disables the cache entirely: Get always
// misses and Set/Invalidate are no-ops, so the service degrades to
// recomputing on every read.
type CountsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCountsCache builds a CountsCache. ttl bounds staleness if an
// invalidation is ever lost; zero defaults to one minute.
func NewCountsCache(rdb *redis.Client, ttl time.Duration) *CountsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CountsCache{rdb: rdb, ttl: ttl}
}

func key(ownerID uint64) string {
	return fmt.Sprintf("counts:owner:%d", ownerID)
}

// Get returns the cached counters for an owner and whether they were
// present. Redis errors are treated as misses.
func (c *CountsCache) Get(ctx context.Context, ownerID uint64) (model.OwnerCounts, bool) {
	if c == nil || c.rdb == nil {
		return model.OwnerCounts{}, false
	}
	raw, err := c.rdb.Get(ctx, key(ownerID)).Bytes()
	if err != nil {
		return model.OwnerCounts{}, false
	}
	var counts model.OwnerCounts
	if err := json.Unmarshal(raw, &counts); err != nil {
		return model.OwnerCounts{}, false
	}
	return counts, true
}

// Set stores the counters for an owner. Failures are ignored; the next
// read recomputes.
func (c *CountsCache) Set(ctx context.Context, ownerID uint64, counts model.OwnerCounts) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return
	}
	_ = c.rdb.SetEx(ctx, key(ownerID), raw, c.ttl).Err()
}

// Invalidate drops the cached counters for an owner so the next
// dashboard read recomputes from reservation rows.
func (c *CountsCache) Invalidate(ctx context.Context, ownerID uint64) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, key(ownerID)).Err()
}
