package cache

import (
	"context"
	"log/slog"
	"time"

	"boardapi/internal/middleware"
)

const (
	// BoardSummariesKey holds the raw listing of every active board.
	BoardSummariesKey = "boards:summaries"
	// BoardEventsChannel is the pub/sub channel for board change events.
	BoardEventsChannel = "boards:events"
)

// DefaultBoardSummariesTTL applies when no TTL is configured.
const DefaultBoardSummariesTTL = 30 * time.Second

// RevokedTokenKey marks a signed-out JWT by its jti.
func RevokedTokenKey(jti string) string {
	return "blacklist:" + jti
}

// Invalidate deletes keys, logging rather than returning failures.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// InvalidateBoardListings drops the cached board listing.
func InvalidateBoardListings(ctx context.Context) {
	Invalidate(ctx, BoardSummariesKey)
}
