// Package ratelimit throttles repeated auth attempts per identity using a
// Redis counter with a sliding expiry window.
package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Limiter counts attempts per key. A nil Redis client disables limiting.
type Limiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

// New creates a Limiter allowing limit attempts per window.
func New(rdb *redis.Client, limit int64, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

// Allow reports whether another attempt under key is permitted. Redis
// errors fail open.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}

	n, err := l.rdb.Incr(ctx, "attempts:"+key).Result()
	if err != nil {
		return true, err
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, "attempts:"+key, l.window).Err(); err != nil {
			return true, err
		}
	}
	return n <= l.limit, nil
}
