package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a fixed-window request counter backed by Redis.
// Key format: ratelimit:<client_ip>. The first hit in a window creates the
// key with the window TTL; subsequent hits increment it until the ceiling.
type RateLimiter struct {
	client *redis.Client
	window time.Duration
	max    int64
}

// NewRateLimiter creates a RateLimiter allowing max requests per window.
func NewRateLimiter(client *redis.Client, window time.Duration, max int64) *RateLimiter {
	if window <= 0 {
		window = 15 * time.Minute
	}
	if max <= 0 {
		max = 100
	}
	return &RateLimiter{client: client, window: window, max: max}
}

// Allow records one hit for the identity and reports whether it is still
// within the ceiling for the current window.
func (l *RateLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	key := l.key(identity)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	return count <= l.max, nil
}

func (l *RateLimiter) key(identity string) string {
	return fmt.Sprintf("ratelimit:%s", identity)
}
