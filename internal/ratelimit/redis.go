package ratelimit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisQuota counts creations per user and clock hour in Redis, so the
// window holds across server instances.
type RedisQuota struct {
	rdb *redis.Client
}

func NewRedisQuota(rdb *redis.Client) *RedisQuota {
	return &RedisQuota{rdb: rdb}
}

func (q *RedisQuota) Allow(ctx context.Context, userID uuid.UUID, limit int) (bool, error) {
	if limit <= 0 {
		return true, nil
	}

	key := "quota:reports:" + userID.String() + ":" + hourBucket(time.Now())
	n, err := q.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		// Buckets are keyed by hour; the expiry only keeps Redis tidy.
		q.rdb.Expire(ctx, key, 2*time.Hour)
	}
	return n <= int64(limit), nil
}
