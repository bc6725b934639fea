package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"boardapi/internal/middleware"
	"boardapi/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(s, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside reads key into dest, calling fetch to fill dest on a miss and storing
// the result for ttl. Cache errors never fail the read; they fall through to
// fetch. A zero ttl disables caching for the call.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if ttl <= 0 {
		return fetch()
	}

	readCtx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "get")
	found, err := GetJSON(readCtx, key, dest)
	span.End()
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues(key, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case found:
		observability.CacheLookups.WithLabelValues(key, "hit").Inc()
		return nil
	default:
		observability.CacheLookups.WithLabelValues(key, "miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	writeCtx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "set")
	defer span.End()
	if err := SetJSON(writeCtx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}
