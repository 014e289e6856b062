package allocations

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AvailabilityCache keeps derived availability around for display queries
// only; the reserve decision always recomputes under the equipment lock.
// Invalidation bumps a per-equipment version so stale entries simply stop
// being addressable and expire with their TTL.
type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func versionKey(equipmentID string) string {
	return "availability:ver:" + equipmentID
}

func (c *AvailabilityCache) entryKey(ctx context.Context, equipmentID string, w Window) (string, error) {
	version, err := c.rdb.Get(ctx, versionKey(equipmentID)).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}

	return fmt.Sprintf(
		"availability:%s:v%d:%s:%s",
		equipmentID,
		version,
		w.Start.Format("2006-01-02"),
		w.End.Format("2006-01-02"),
	), nil
}

func (c *AvailabilityCache) Get(ctx context.Context, equipmentID string, w Window) (int, bool) {
	key, err := c.entryKey(ctx, equipmentID, w)
	if err != nil {
		return 0, false
	}

	value, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}

	available, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}

	return available, true
}

func (c *AvailabilityCache) Set(ctx context.Context, equipmentID string, w Window, available int) {
	key, err := c.entryKey(ctx, equipmentID, w)
	if err != nil {
		return
	}

	c.rdb.Set(ctx, key, strconv.Itoa(available), c.ttl)
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, equipmentID string) {
	c.rdb.Incr(ctx, versionKey(equipmentID))
}
