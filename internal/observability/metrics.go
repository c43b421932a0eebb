package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instogram_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FeedCacheHits counts feed reads served from Redis.
	FeedCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "instogram_feed_cache_hits_total",
		Help: "Feed reads served from the cache",
	})

	// FeedCacheMisses counts feed reads that fell through to storage.
	FeedCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "instogram_feed_cache_misses_total",
		Help: "Feed reads rebuilt from storage",
	})

	// FeedCacheInvalidations counts feed cache deletions after mutations.
	FeedCacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "instogram_feed_cache_invalidations_total",
		Help: "Feed cache invalidations triggered by post mutations",
	})

	// ToggleOutcomes counts follow and like toggles by resulting state.
	ToggleOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instogram_toggle_outcomes_total",
		Help: "Follow and like toggles by kind and resulting state",
	}, []string{"kind", "state"})
)

// RecordToggle counts a toggle of kind that left the edge present or absent.
func RecordToggle(kind string, present bool) {
	state := "removed"
	if present {
		state = "added"
	}
	ToggleOutcomes.WithLabelValues(kind, state).Inc()
}
