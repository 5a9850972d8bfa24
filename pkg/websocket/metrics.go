package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ActiveConnections tracks connected report subscribers.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cycle_arb_ws_active_connections",
		Help: "Number of connected WebSocket report subscribers",
	})

	// MessagesBroadcastTotal tracks published messages by type.
	MessagesBroadcastTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cycle_arb_ws_messages_broadcast_total",
			Help: "Total number of messages published to WebSocket subscribers",
		},
		[]string{"type"},
	)

	// MessagesDroppedTotal tracks messages dropped for slow clients.
	MessagesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cycle_arb_ws_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped due to a full send buffer",
		},
		[]string{"reason"},
	)

	// ConnectionDuration tracks WebSocket connection lifetime.
	ConnectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cycle_arb_ws_connection_duration_seconds",
		Help:    "Duration of WebSocket connections before disconnect",
		Buckets: []float64{1, 10, 60, 300, 600, 1800, 3600, 14400, 86400},
	})
)
