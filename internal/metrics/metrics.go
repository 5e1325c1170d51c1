package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sourceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealview_source_fetch_total",
			Help: "Per-source fetch attempts by outcome",
		},
		[]string{"source", "outcome"},
	)

	plannerDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dealview_planner_duration_seconds",
			Help:    "Federated query latency, fetch through paginate",
			Buckets: prometheus.DefBuckets,
		},
	)

	cacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealview_cache_events_total",
			Help: "Result cache hits, misses, and expiries by key",
		},
		[]string{"key", "event"},
	)

	sourceRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dealview_source_rows",
			Help: "Row count per source from the last monitor probe",
		},
		[]string{"source"},
	)

	sourceUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dealview_source_up",
			Help: "1 when the last monitor probe of the source succeeded",
		},
		[]string{"source"},
	)
)

var registerOnce sync.Once

// Init registers all collectors. Must be called once at startup.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(sourceFetches, plannerDuration, cacheEvents, sourceRows, sourceUp)
	})
}

// RecordSourceFetch counts one per-source fetch attempt ("ok" or "error").
func RecordSourceFetch(source, outcome string) {
	sourceFetches.WithLabelValues(source, outcome).Inc()
}

// ObservePlannerDuration records one federated query's wall time.
func ObservePlannerDuration(d time.Duration) {
	plannerDuration.Observe(d.Seconds())
}

// RecordCacheEvent counts a cache hit, miss, or expiry for a logical key.
func RecordCacheEvent(key, event string) {
	cacheEvents.WithLabelValues(key, event).Inc()
}

// SetSourceRows updates the monitored row count for a source.
func SetSourceRows(source string, rows int64) {
	sourceRows.WithLabelValues(source).Set(float64(rows))
}

// SetSourceUp flags whether the last probe of a source succeeded.
func SetSourceUp(source string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	sourceUp.WithLabelValues(source).Set(v)
}
