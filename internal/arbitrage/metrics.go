package arbitrage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// OpportunitiesDetectedTotal tracks opportunities emitted per algorithm, before dedup.
	OpportunitiesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cycle_arb_opportunities_detected_total",
			Help: "Total number of arbitrage opportunities emitted by each algorithm",
		},
		[]string{"algorithm"},
	)

	// OpportunitiesReturnedTotal tracks opportunities in final detector output.
	OpportunitiesReturnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_opportunities_returned_total",
		Help: "Total number of opportunities returned after dedup and risk filtering",
	})

	// OpportunitiesRejectedTotal tracks rejected candidates by reason.
	OpportunitiesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cycle_arb_opportunities_rejected_total",
			Help: "Total number of candidate cycles rejected",
		},
		[]string{"reason"},
	)

	// RiskFilteredTotal tracks opportunities dropped by risk evaluation.
	RiskFilteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_risk_filtered_total",
		Help: "Total number of opportunities dropped with an AVOID recommendation",
	})

	// OpportunityProfitBPS tracks net profit of returned opportunities in basis points.
	OpportunityProfitBPS = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cycle_arb_opportunity_profit_bps",
		Help:    "Net profit of returned opportunities in basis points",
		Buckets: []float64{10, 25, 50, 100, 200, 500, 1000, 2000, 5000},
	})

	// AlgorithmDurationSeconds tracks per-algorithm latency.
	AlgorithmDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cycle_arb_algorithm_duration_seconds",
			Help:    "Duration of a single search algorithm run",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"algorithm"},
	)

	// AlgorithmFailuresTotal tracks recovered algorithm failures.
	AlgorithmFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cycle_arb_algorithm_failures_total",
			Help: "Total number of search algorithm failures recovered by the detector",
		},
		[]string{"algorithm"},
	)

	// DetectionDurationSeconds tracks end-to-end detection latency.
	DetectionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cycle_arb_detection_duration_seconds",
		Help:    "Duration of a full detection pass",
		Buckets: prometheus.DefBuckets,
	})

	// CyclesAbandonedTotal tracks Bellman-Ford cycles longer than max hops.
	CyclesAbandonedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_bellman_ford_cycles_abandoned_total",
		Help: "Total number of reconstructed negative cycles abandoned for exceeding max hops",
	})

	// DFSPathsExploredTotal tracks exhaustive search paths explored.
	DFSPathsExploredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_dfs_paths_explored_total",
		Help: "Total number of paths explored by the exhaustive search",
	})

	// DFSPathsPrunedTotal tracks exhaustive search paths pruned.
	DFSPathsPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_dfs_paths_pruned_total",
		Help: "Total number of paths pruned by the exhaustive search",
	})
)
