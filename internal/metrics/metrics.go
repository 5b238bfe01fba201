// Package metrics holds the Prometheus collectors shared across confstack.
// Generalized from the teacher's internal/metrics/metrics.go (tenant-load
// gauges/counters) into composer/cache/source/validation instruments;
// importing this package and exposing /metrics (cmd/confstackd does both)
// is enough to publish them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confstack_cache_hits_total",
			Help: "Cumulative number of cache hits, by backend.",
		}, []string{"backend"})

	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confstack_cache_misses_total",
			Help: "Cumulative number of cache misses, by backend.",
		}, []string{"backend"})

	CacheEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confstack_cache_evictions_total",
			Help: "Cumulative number of cache evictions, by backend.",
		}, []string{"backend"})

	SourceLoadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confstack_source_load_total",
			Help: "Cumulative number of source load attempts, by kind.",
		}, []string{"kind"})

	SourceLoadErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confstack_source_load_errors_total",
			Help: "Cumulative number of source load failures, by kind.",
		}, []string{"kind"})

	ReloadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "confstack_reload_total",
			Help: "Cumulative number of composer reloads that produced a new tree.",
		})

	ReloadNoopTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "confstack_reload_noop_total",
			Help: "Cumulative number of composer reloads that produced an unchanged tree.",
		})

	ValidationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "confstack_validation_duration_seconds",
			Help:    "Time spent running a schema validation pass.",
			Buckets: prometheus.DefBuckets,
		})
)

func init() {
	prometheus.MustRegister(
		CacheHitsTotal,
		CacheMissesTotal,
		CacheEvictionsTotal,
		SourceLoadTotal,
		SourceLoadErrorsTotal,
		ReloadTotal,
		ReloadNoopTotal,
		ValidationDuration,
	)
}
