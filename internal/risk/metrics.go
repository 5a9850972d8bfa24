package risk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// EvaluationsTotal tracks risk evaluations by recommendation.
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cycle_arb_risk_evaluations_total",
			Help: "Total number of risk evaluations by recommendation",
		},
		[]string{"recommendation"},
	)

	// RiskScore tracks the distribution of overall risk scores.
	RiskScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cycle_arb_risk_score",
		Help:    "Overall risk score of evaluated opportunities",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
	})
)
