// Package cache provides Redis connection management and cache-aside helpers.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"funprofile/internal/middleware"
)

var redisClient *redis.Client

// InitRedis initializes the global Redis client and verifies connectivity.
// A nil return with no panic means callers must treat the cache as optional.
func InitRedis(redisURL string) error {
	redisClient = redis.NewClient(&redis.Options{
		Addr:         redisURL,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
		return err
	}

	slog.Info("redis connected", "addr", redisURL)
	return nil
}

// SetClient replaces the global client. Used by tests with miniredis.
func SetClient(c *redis.Client) {
	redisClient = c
}

// GetClient returns the global Redis client, or nil when the cache is down.
func GetClient() *redis.Client {
	return redisClient
}

// Get fetches a raw cached value. Returns redis.Nil on miss.
func Get(ctx context.Context, key string) (string, error) {
	if redisClient == nil {
		return "", redis.Nil
	}
	val, err := redisClient.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		middleware.RedisErrors.WithLabelValues("get").Inc()
	}
	return val, err
}

// Set stores a value with a TTL. Errors are counted and logged, not returned;
// a cache write failure must never fail the request.
func Set(ctx context.Context, key, value string, ttl time.Duration) {
	if redisClient == nil {
		return
	}
	if err := redisClient.Set(ctx, key, value, ttl).Err(); err != nil {
		middleware.RedisErrors.WithLabelValues("set").Inc()
		slog.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// Delete removes keys from the cache.
func Delete(ctx context.Context, keys ...string) {
	if redisClient == nil || len(keys) == 0 {
		return
	}
	if err := redisClient.Del(ctx, keys...).Err(); err != nil {
		middleware.RedisErrors.WithLabelValues("del").Inc()
		slog.WarnContext(ctx, "cache delete failed", "keys", keys, "error", err)
	}
}
