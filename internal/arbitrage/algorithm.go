package arbitrage

import (
	"sort"

	"github.com/mselser95/solana-cycle-arb/internal/graph"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
)

// Algorithm names, used as metric labels and in reports.
const (
	AlgorithmBellmanFord   = "bellman_ford"
	AlgorithmTriangle      = "triangle"
	AlgorithmTwoHop        = "two_hop"
	AlgorithmExhaustiveDFS = "exhaustive_dfs"
)

// Algorithm is an independent cycle search over an immutable graph.
// Implementations must not mutate g.
type Algorithm interface {
	Name() string
	Detect(g *graph.Graph) ([]*types.Opportunity, error)
}

// statsSearcher is an Algorithm that reports per-run search counters.
type statsSearcher interface {
	Search(g *graph.Graph) ([]*types.Opportunity, SearchStats, error)
}

// filterAndSort drops opportunities below minProfit and orders the rest by
// descending profit ratio, breaking ties by path.
func filterAndSort(opps []*types.Opportunity, minProfit float64) []*types.Opportunity {
	out := make([]*types.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if opp.ProfitRatio >= minProfit {
			out = append(out, opp)
			continue
		}
		OpportunitiesRejectedTotal.WithLabelValues(string(RejectBelowMinProfit)).Inc()
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProfitRatio != out[j].ProfitRatio {
			return out[i].ProfitRatio > out[j].ProfitRatio
		}
		return comparePaths(out[i].Path, out[j].Path) < 0
	})

	return out
}
