package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/logging"
)

type Config struct {
	Prefix string
	Max    int
	Window time.Duration
}

// FixedWindow counts requests per client ip and route in redis. A nil client
// or a redis failure lets the request through.
func FixedWindow(rdb *redis.Client, cfg Config) echo.MiddlewareFunc {
	if rdb == nil || cfg.Max <= 0 || cfg.Window <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "ratelimit")

			key := Key(cfg.Prefix, c.RealIP(), c.Request().Method+" "+c.Path(), cfg.Window, time.Now())

			var incr *redis.IntCmd
			_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
				incr = p.Incr(ctx, key)
				p.ExpireNX(ctx, key, cfg.Window)
				return nil
			})
			if err != nil {
				l.Warn("ratelimit_unavailable", "error", err)
				return next(c)
			}

			count := incr.Val()
			remaining := int64(cfg.Max) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Max) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				l.Warn("ratelimit_exceeded", "status", 429, "key", key)
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

// Key buckets requests into fixed windows aligned to the unix epoch.
func Key(prefix, ip, route string, window time.Duration, now time.Time) string {
	if ip == "" {
		ip = "unknown"
	}
	secs := int64(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	bucket := now.Unix() / secs
	return fmt.Sprintf("%s:%s:%s:%d", prefix, ip, route, bucket)
}
