package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy controls behavior when the rate limit backend is unreachable.
type FailPolicy int

const (
	// FailOpen allows the request through when Redis is down.
	FailOpen FailPolicy = iota
	// FailClosed rejects the request when Redis is down.
	FailClosed
)

// RateLimitConfig describes one rate limit bucket.
type RateLimitConfig struct {
	KeyPrefix string
	Max       int
	Window    time.Duration
	Policy    FailPolicy
}

// RateLimit returns a fiber middleware enforcing a fixed-window limit per
// client IP using Redis INCR/EXPIRE. Disabled outside production-like envs
// so tests and local development are not throttled.
func RateLimit(client *redis.Client, cfg RateLimitConfig) fiber.Handler {
	env := os.Getenv("APP_ENV")
	disabled := env == "test" || env == "development"

	return func(c *fiber.Ctx) error {
		if disabled {
			return c.Next()
		}

		allowed, err := CheckRateLimit(c.UserContext(), client, fmt.Sprintf("%s:%s", cfg.KeyPrefix, c.IP()), cfg.Max, cfg.Window)
		if err != nil {
			RedisErrors.WithLabelValues("ratelimit").Inc()
			if cfg.Policy == FailClosed {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limiter unavailable",
				})
			}
			slog.WarnContext(c.UserContext(), "rate limiter unavailable, failing open", "error", err)
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests",
			})
		}
		return c.Next()
	}
}

// CheckRateLimit increments the counter for key and reports whether the
// caller is within the allowed count for the window.
func CheckRateLimit(ctx context.Context, client *redis.Client, key string, max int, window time.Duration) (bool, error) {
	if client == nil {
		return false, redis.ErrClosed
	}

	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(max), nil
}
