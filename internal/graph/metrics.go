package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// GraphBuildsTotal tracks graph build attempts by result (ok, rejected).
	GraphBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cycle_arb_graph_builds_total",
			Help: "Total number of graph build attempts",
		},
		[]string{"result"},
	)

	// EdgesRejectedTotal tracks edge validation failures by field.
	EdgesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cycle_arb_graph_edges_rejected_total",
			Help: "Total number of edge records rejected by validation",
		},
		[]string{"field"},
	)

	// DuplicateEdgesTotal tracks edges that replaced an earlier edge for the same pair.
	DuplicateEdgesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycle_arb_graph_duplicate_edges_total",
		Help: "Total number of duplicate ordered-pair edges overwritten during builds",
	})

	// GraphNodes is the node count of the most recent graph.
	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cycle_arb_graph_nodes",
		Help: "Number of token nodes in the most recently built graph",
	})

	// GraphEdges is the edge count of the most recent graph.
	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cycle_arb_graph_edges",
		Help: "Number of directed edges in the most recently built graph",
	})
)
