package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"attendance/tracker/foundation/web"

	"github.com/pkg/errors"
)

// Counter counts hits on key inside a window that starts at the first hit.
// It returns the count so far and the time left in the window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimit allows limit requests per client IP and window. When the counter
// itself fails the request is let through.
func RateLimit(counter Counter, limit int, window time.Duration, log *slog.Logger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		if counter == nil || limit <= 0 {
			return handler
		}

		h := func(c *web.Context) error {
			key := c.FullPath() + ":" + c.ClientIP()

			count, ttl, err := counter.Incr(c.Ctx, key, window)
			if err != nil {
				log.Warn("rate limit counter failed", "key", key, "error", err)
				return handler(c)
			}

			if count > int64(limit) {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
				return c.RespondError(web.NewRequestError(errors.New("too many requests"), http.StatusTooManyRequests))
			}

			return handler(c)
		}

		return h
	}

	return m
}
