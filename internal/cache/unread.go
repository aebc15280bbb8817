package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"topup-orders-service/internal/model"
)

// UnreadCache keeps the unread badge count warm between polls. Entries expire
// quickly so the badge is never stale beyond the TTL even if an invalidation
// is lost.
type UnreadCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUnreadCache(rdb *redis.Client, ttl time.Duration) *UnreadCache {
	return &UnreadCache{rdb: rdb, ttl: ttl}
}

func key(aud model.Audience) string {
	if aud.Type == model.RecipientAdmin {
		return "unread:admin"
	}
	return "unread:user:" + aud.UserID
}

// Get returns the cached count; ok is false on a miss.
func (c *UnreadCache) Get(ctx context.Context, aud model.Audience) (int64, bool) {
	val, err := c.rdb.Get(ctx, key(aud)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *UnreadCache) Set(ctx context.Context, aud model.Audience, count int64) {
	c.rdb.Set(ctx, key(aud), strconv.FormatInt(count, 10), c.ttl)
}

func (c *UnreadCache) Invalidate(ctx context.Context, aud model.Audience) {
	c.rdb.Del(ctx, key(aud))
}
