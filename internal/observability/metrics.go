package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidtube_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ReactionToggles counts completed toggles by target kind and resulting state.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_reaction_toggles_total",
		Help: "Total reaction toggles by target kind and resulting state",
	}, []string{"kind", "state"})

	// ReactionToggleRetries counts toggle attempts that lost a race and were retried.
	ReactionToggleRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_reaction_toggle_retries_total",
		Help: "Total reaction toggle retries caused by concurrent writers",
	}, []string{"kind"})

	// FeedQueries counts feed queries by content kind.
	FeedQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_feed_queries_total",
		Help: "Total feed queries by content kind",
	}, []string{"kind"})

	// FeedPageItems records how many items a feed page returned.
	FeedPageItems = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidtube_feed_page_items",
		Help:    "Number of items returned per feed page",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	}, []string{"kind"})

	// OwnershipDenials counts mutations rejected because the caller is not the owner.
	OwnershipDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_ownership_denials_total",
		Help: "Total mutations rejected by the ownership gate",
	}, []string{"kind", "action"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
