package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by command name.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardapi_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key family and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardapi_cache_lookups_total",
		Help: "Cache-aside lookups by key and result",
	}, []string{"key", "result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boardapi_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// BoardEventsPublished counts board events pushed to the realtime channel.
	BoardEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardapi_board_events_published_total",
		Help: "Board events published to Redis by type",
	}, []string{"event_type"})

	// WebSocketConnectionsTotal is the gauge of open board feed connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "boardapi_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardapi_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// ImageUploadBytes observes the stored size of processed board images.
	ImageUploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "boardapi_image_upload_bytes",
		Help:    "Size of stored board images after re-encoding",
		Buckets: prometheus.ExponentialBuckets(16*1024, 4, 7),
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
