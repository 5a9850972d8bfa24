package arbitrage

import (
	"math"

	"github.com/mselser95/solana-cycle-arb/internal/graph"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"go.uber.org/zap"
)

// BellmanFord finds negative cycles by running single-source Bellman-Ford
// from every node and walking the predecessor chain of each still-relaxable node.
type BellmanFord struct {
	factory   *Factory
	minProfit float64
	maxHops   int
	logger    *zap.Logger
}

// NewBellmanFord creates the negative-cycle detector.
func NewBellmanFord(cfg Config, factory *Factory) *BellmanFord {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BellmanFord{
		factory:   factory,
		minProfit: cfg.MinProfitThreshold,
		maxHops:   cfg.MaxHops,
		logger:    logger,
	}
}

// Name returns the algorithm name.
func (b *BellmanFord) Name() string {
	return AlgorithmBellmanFord
}

// SourceResult is the outcome of one single-source run.
type SourceResult struct {
	Source       types.TokenID
	Distances    map[types.TokenID]float64
	Predecessors map[types.TokenID]types.TokenID // Absent for the source and unreached nodes
	Flagged      []types.TokenID                 // Still relaxable after |V|-1 passes, in edge order
	Cycles       [][]types.TokenID               // Closed cycles in forward trade order
}

// Detect runs from every node and merges the cycles found, treating rotations
// and reflections of a cycle as the same cycle.
func (b *BellmanFord) Detect(g *graph.Graph) ([]*types.Opportunity, error) {
	var all []*types.Opportunity
	for _, source := range g.Nodes() {
		res := b.FromSource(g, source)
		for _, cycle := range res.Cycles {
			opp, _ := b.factory.Create(g, cycle)
			if opp != nil {
				all = append(all, opp)
			}
		}
	}

	unique := dedupe(all, equivalenceKey)
	b.logger.Debug("bellman-ford-complete",
		zap.Int("candidates", len(all)),
		zap.Int("unique", len(unique)))

	return filterAndSort(unique, b.minProfit), nil
}

// FromSource runs Bellman-Ford from source and reconstructs the negative
// cycles reachable from it. Edges are relaxed in graph insertion order, so
// repeated runs on the same graph give identical results.
func (b *BellmanFord) FromSource(g *graph.Graph, source types.TokenID) SourceResult {
	nodes := g.Nodes()
	edges := g.Edges()
	n := len(nodes)

	res := SourceResult{
		Source:       source,
		Distances:    make(map[types.TokenID]float64, n),
		Predecessors: make(map[types.TokenID]types.TokenID, n),
	}

	src := g.NodeIndex(source)
	if src < 0 {
		return res
	}

	type arc struct {
		u, v int
		w    float64
	}
	arcs := make([]arc, len(edges))
	for i, e := range edges {
		arcs[i] = arc{u: g.NodeIndex(e.From), v: g.NodeIndex(e.To), w: e.Weight}
	}

	dist := make([]float64, n)
	pred := make([]int, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		pred[i] = -1
	}
	dist[src] = 0

	for pass := 0; pass < n-1; pass++ {
		changed := false
		for _, a := range arcs {
			if !math.IsInf(dist[a.u], 1) && dist[a.u]+a.w < dist[a.v] {
				dist[a.v] = dist[a.u] + a.w
				pred[a.v] = a.u
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	flagged := make([]bool, n)
	for _, a := range arcs {
		if !math.IsInf(dist[a.u], 1) && dist[a.u]+a.w < dist[a.v] && !flagged[a.v] {
			flagged[a.v] = true
			res.Flagged = append(res.Flagged, nodes[a.v])
		}
	}

	seen := make(map[string]bool)
	for _, id := range res.Flagged {
		cycle := b.walkCycle(pred, g.NodeIndex(id))
		if cycle == nil {
			continue
		}

		path := make([]types.TokenID, len(cycle))
		for i, idx := range cycle {
			path[i] = nodes[idx]
		}
		key := rotationKey(path)
		if seen[key] {
			continue
		}
		seen[key] = true
		res.Cycles = append(res.Cycles, path)
	}

	for i, id := range nodes {
		res.Distances[id] = dist[i]
		if pred[i] >= 0 {
			res.Predecessors[id] = nodes[pred[i]]
		}
	}

	return res
}

// walkCycle follows predecessors from start until a node repeats, which is
// then guaranteed to lie on a cycle, and collects that cycle. Returns the
// closed cycle in forward order, or nil if there is none or it exceeds maxHops.
func (b *BellmanFord) walkCycle(pred []int, start int) []int {
	visited := make([]bool, len(pred))
	cur := start
	for cur >= 0 && !visited[cur] {
		visited[cur] = true
		cur = pred[cur]
	}
	if cur < 0 {
		return nil
	}

	member := cur
	back := []int{member}
	for next := pred[member]; next != member; next = pred[next] {
		if next < 0 {
			return nil
		}
		back = append(back, next)
		if len(back) > b.maxHops {
			CyclesAbandonedTotal.Inc()
			return nil
		}
	}

	// back lists the cycle against the trade direction; reverse it.
	out := make([]int, 0, len(back)+1)
	out = append(out, member)
	for i := len(back) - 1; i >= 1; i-- {
		out = append(out, back[i])
	}
	return append(out, member)
}
