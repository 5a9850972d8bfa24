package arbitrage

import (
	"github.com/mselser95/solana-cycle-arb/internal/graph"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
)

// Triangle enumerates every node triple in both orientations. O(n³); intended
// for small curated token sets.
type Triangle struct {
	factory   *Factory
	minProfit float64
}

// NewTriangle creates the 3-cycle enumerator.
func NewTriangle(cfg Config, factory *Factory) *Triangle {
	return &Triangle{
		factory:   factory,
		minProfit: cfg.MinProfitThreshold,
	}
}

// Name returns the algorithm name.
func (t *Triangle) Name() string {
	return AlgorithmTriangle
}

// Detect returns profitable 3-cycles above the profit threshold.
func (t *Triangle) Detect(g *graph.Graph) ([]*types.Opportunity, error) {
	nodes := g.Nodes()
	n := len(nodes)

	var opps []*types.Opportunity
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				a, b, c := nodes[i], nodes[j], nodes[k]
				for _, path := range [][]types.TokenID{{a, b, c, a}, {a, c, b, a}} {
					if !g.HasEdge(path[0], path[1]) || !g.HasEdge(path[1], path[2]) || !g.HasEdge(path[2], path[3]) {
						continue
					}
					opp, _ := t.factory.Create(g, path)
					if opp != nil {
						opps = append(opps, opp)
					}
				}
			}
		}
	}

	return filterAndSort(opps, t.minProfit), nil
}
