package arbitrage

import (
	"testing"
)

// TestMetrics_Registration tests all metrics are initialized
func TestMetrics_Registration(t *testing.T) {
	if OpportunitiesDetectedTotal == nil {
		t.Error("OpportunitiesDetectedTotal not registered")
	}

	if OpportunitiesReturnedTotal == nil {
		t.Error("OpportunitiesReturnedTotal not registered")
	}

	if OpportunitiesRejectedTotal == nil {
		t.Error("OpportunitiesRejectedTotal not registered")
	}

	if RiskFilteredTotal == nil {
		t.Error("RiskFilteredTotal not registered")
	}

	if OpportunityProfitBPS == nil {
		t.Error("OpportunityProfitBPS not registered")
	}

	if AlgorithmDurationSeconds == nil {
		t.Error("AlgorithmDurationSeconds not registered")
	}

	if AlgorithmFailuresTotal == nil {
		t.Error("AlgorithmFailuresTotal not registered")
	}

	if DetectionDurationSeconds == nil {
		t.Error("DetectionDurationSeconds not registered")
	}

	if CyclesAbandonedTotal == nil {
		t.Error("CyclesAbandonedTotal not registered")
	}

	if DFSPathsExploredTotal == nil || DFSPathsPrunedTotal == nil {
		t.Error("DFS path counters not registered")
	}
}

// TestMetrics_CounterIncrement tests counter can be incremented
func TestMetrics_CounterIncrement(t *testing.T) {
	OpportunitiesReturnedTotal.Inc()
	RiskFilteredTotal.Inc()
	CyclesAbandonedTotal.Inc()

	// Test labeled counters
	OpportunitiesDetectedTotal.WithLabelValues(AlgorithmTriangle).Inc()
	AlgorithmFailuresTotal.WithLabelValues(AlgorithmTwoHop).Inc()
}

// TestMetrics_HistogramObserve tests histogram can observe values
func TestMetrics_HistogramObserve(t *testing.T) {
	OpportunityProfitBPS.Observe(150.0)
	DetectionDurationSeconds.Observe(0.001)
	AlgorithmDurationSeconds.WithLabelValues(AlgorithmBellmanFord).Observe(0.0005)
}

// TestMetrics_Labels tests label values are accepted
func TestMetrics_Labels(t *testing.T) {
	reasons := []RejectReason{
		RejectPathTooShort,
		RejectPathNotClosed,
		RejectExceedsMaxHops,
		RejectMissingEdge,
		RejectNonNegativeWeight,
		RejectBelowMinProfit,
	}

	for _, reason := range reasons {
		OpportunitiesRejectedTotal.WithLabelValues(string(reason)).Inc()
	}
}
