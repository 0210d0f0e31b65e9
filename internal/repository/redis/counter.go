// Package redis keeps request counters in redis.
package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Counter is a fixed window counter. The window starts with the first
// increment of a key and ends when the key expires.
type Counter struct {
	client *redis.Client
	prefix string
}

func NewCounter(client *redis.Client, prefix string) *Counter {
	return &Counter{client: client, prefix: prefix}
}

// Incr bumps key and returns the new count with the time left in its window.
func (c *Counter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := c.prefix + key

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, errors.Wrap(err, "incrementing counter")
	}

	left := ttl.Val()
	if left < 0 {
		// First hit, or a key that lost its expiry.
		if err := c.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, 0, errors.Wrap(err, "setting counter window")
		}
		left = window
	}

	return incr.Val(), left, nil
}
