package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern: return the cached value when
// present, otherwise call fetch, store the result, and return it. Cache
// failures degrade to a plain fetch.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var zero T

	cached, err := Get(ctx, key)
	if err == nil {
		var out T
		if uerr := json.Unmarshal([]byte(cached), &out); uerr == nil {
			return out, nil
		}
		// Corrupt entry; drop it and fall through to the source.
		Delete(ctx, key)
	} else if err != redis.Nil {
		slog.WarnContext(ctx, "cache read failed, falling back to source", "key", key, "error", err)
	}

	out, err := fetch()
	if err != nil {
		return zero, err
	}

	if data, merr := json.Marshal(out); merr == nil {
		Set(ctx, key, string(data), ttl)
	}

	return out, nil
}
