package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RunsTotal tracks pipeline runs by result (detected, cached, invalid, cancelled).
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cycle_arb_pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"result"},
	)

	// StoreFailuresTotal tracks failed run recordings.
	StoreFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_pipeline_store_failures_total",
		Help: "Total number of detection runs that could not be recorded",
	})

	// PublishFailuresTotal tracks failed report broadcasts.
	PublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_pipeline_publish_failures_total",
		Help: "Total number of detection reports that could not be published",
	})

	// EdgesDroppedTotal tracks edges removed by the optional sanitation step.
	EdgesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_pipeline_edges_dropped_total",
		Help: "Total number of invalid edges dropped before graph construction",
	})
)
