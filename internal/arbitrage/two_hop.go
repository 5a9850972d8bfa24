package arbitrage

import (
	"github.com/mselser95/solana-cycle-arb/internal/graph"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
)

// TwoHop checks every ordered pair for a profitable round trip a→b→a.
type TwoHop struct {
	factory   *Factory
	minProfit float64
}

// NewTwoHop creates the reciprocal-pair enumerator.
func NewTwoHop(cfg Config, factory *Factory) *TwoHop {
	return &TwoHop{
		factory:   factory,
		minProfit: cfg.MinProfitThreshold,
	}
}

// Name returns the algorithm name.
func (t *TwoHop) Name() string {
	return AlgorithmTwoHop
}

// Detect returns profitable round trips above the profit threshold.
func (t *TwoHop) Detect(g *graph.Graph) ([]*types.Opportunity, error) {
	nodes := g.Nodes()

	var opps []*types.Opportunity
	for _, a := range nodes {
		for _, b := range nodes {
			if a == b || !g.HasEdge(a, b) || !g.HasEdge(b, a) {
				continue
			}
			opp, _ := t.factory.Create(g, []types.TokenID{a, b, a})
			if opp != nil {
				opps = append(opps, opp)
			}
		}
	}

	// (a,b) and (b,a) describe the same round trip.
	return filterAndSort(dedupe(opps, rotationKey), t.minProfit), nil
}
