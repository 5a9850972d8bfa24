package arbitrage

import (
	"time"

	"github.com/mselser95/solana-cycle-arb/pkg/types"
)

// CreateTestEdge creates a quoted edge with a 1.0 input amount and typical fees.
// This is a test helper exported for other packages' tests.
func CreateTestEdge(from, to string, ratio float64) types.Edge {
	e := types.NewEdge(types.TokenID(from), types.TokenID(to), from, to, 1.0, ratio)
	e.SlippageBps = 10
	e.TotalFee = 0.0001
	e.GasFee = 5000
	return e
}

// CreateTestTriangle returns the edges of a profitable A→B→C→A cycle whose
// ratio product is 1.03, with the reverse direction unprofitable.
func CreateTestTriangle() []types.Edge {
	return []types.Edge{
		CreateTestEdge("A", "B", 1.01),
		CreateTestEdge("B", "C", 1.01),
		CreateTestEdge("C", "A", 1.03/(1.01*1.01)),
		CreateTestEdge("A", "C", 0.95),
		CreateTestEdge("C", "B", 0.95),
		CreateTestEdge("B", "A", 0.95),
	}
}

// CreateTestOpportunity creates a test opportunity over a 3-hop cycle.
func CreateTestOpportunity(start string, profitRatio float64) *types.Opportunity {
	path := []types.TokenID{types.TokenID(start), "B", "C", types.TokenID(start)}
	return &types.Opportunity{
		Path:               path,
		PathSymbols:        []string{start, "B", "C", start},
		ProfitRatio:        profitRatio,
		TotalWeight:        -profitRatio,
		TotalFee:           0.0003,
		HopCount:           3,
		ConfidenceScore:    0.5,
		EstimatedProfitSOL: profitRatio,
	}
}

// CreateTestReport creates a detection report holding opps.
func CreateTestReport(opps ...*types.Opportunity) *Report {
	return &Report{
		ID:            "test-run",
		StartedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:      15 * time.Millisecond,
		Candidates:    len(opps),
		Unique:        len(opps),
		Opportunities: opps,
		Algorithms: []AlgorithmResult{
			{Name: AlgorithmBellmanFord, Found: len(opps), Duration: 5 * time.Millisecond},
		},
	}
}
