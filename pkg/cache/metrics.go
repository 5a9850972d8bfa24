package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_cache_hits_total",
		Help: "Total number of report cache hits",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_cache_misses_total",
		Help: "Total number of report cache misses",
	})

	CacheSetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_cache_sets_total",
		Help: "Total number of report cache sets admitted",
	})

	CacheDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_cache_deletes_total",
		Help: "Total number of report cache deletes",
	})

	CacheHitRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cycle_arb_cache_hit_rate",
		Help: "Ristretto hit ratio since the cache was created",
	})

	CacheOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cycle_arb_cache_operation_duration_seconds",
		Help:    "Duration of cache operations",
		Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005},
	}, []string{"operation"})
)
