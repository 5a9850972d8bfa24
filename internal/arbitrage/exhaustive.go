package arbitrage

import (
	"sync"

	"github.com/mselser95/solana-cycle-arb/internal/graph"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"go.uber.org/zap"
)

// SearchStats are the counters of the last exhaustive search.
type SearchStats struct {
	PathsExplored     int     `json:"paths_explored"`
	PathsPruned       int     `json:"paths_pruned"`
	CyclesFound       int     `json:"cycles_found"`
	PruningEfficiency float64 `json:"pruning_efficiency"` // Percentage of explored paths that were pruned
}

// ExhaustiveSearch is a depth-limited DFS from every node with weight-based pruning.
//
// Pruning abandons a branch as soon as its running weight exceeds the
// threshold. This is a heuristic: a costly prefix that a later, strongly
// negative edge would have redeemed is lost. Use +Inf to search exhaustively.
type ExhaustiveSearch struct {
	factory   *Factory
	minProfit float64
	maxHops   int
	threshold float64
	logger    *zap.Logger

	mu    sync.Mutex
	stats SearchStats
}

// NewExhaustiveSearch creates the bounded DFS searcher.
func NewExhaustiveSearch(cfg Config, factory *Factory) *ExhaustiveSearch {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExhaustiveSearch{
		factory:   factory,
		minProfit: cfg.MinProfitThreshold,
		maxHops:   cfg.MaxHops,
		threshold: cfg.ProfitPruningThreshold,
		logger:    logger,
	}
}

// Name returns the algorithm name.
func (s *ExhaustiveSearch) Name() string {
	return AlgorithmExhaustiveDFS
}

// Stats returns the counters of the most recently completed search.
// Concurrent callers should use Search, which returns the counters of its own run.
func (s *ExhaustiveSearch) Stats() SearchStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

type dfsState struct {
	g         *graph.Graph
	nodes     []types.TokenID
	start     int
	path      []int
	onPath    []bool
	maxHops   int
	threshold float64
	stats     *SearchStats
	cycles    [][]types.TokenID
}

// Detect searches every node for negative cycles of at most maxHops hops.
func (s *ExhaustiveSearch) Detect(g *graph.Graph) ([]*types.Opportunity, error) {
	opps, _, err := s.Search(g)
	return opps, err
}

// Search is Detect that also returns the counters of this run.
func (s *ExhaustiveSearch) Search(g *graph.Graph) ([]*types.Opportunity, SearchStats, error) {
	nodes := g.Nodes()
	stats := SearchStats{}

	var cycles [][]types.TokenID
	for start := range nodes {
		st := &dfsState{
			g:         g,
			nodes:     nodes,
			start:     start,
			path:      []int{start},
			onPath:    make([]bool, len(nodes)),
			maxHops:   s.maxHops,
			threshold: s.threshold,
			stats:     &stats,
		}
		st.onPath[start] = true
		st.visit(start, 0)
		cycles = append(cycles, st.cycles...)
	}

	// Each cycle is found once per rotation; keep the min-node rotation.
	seen := make(map[string]bool, len(cycles))
	var opps []*types.Opportunity
	for _, cycle := range cycles {
		key := rotationKey(cycle)
		if seen[key] {
			continue
		}
		seen[key] = true

		opp, _ := s.factory.Create(g, CanonicalRotation(cycle))
		if opp != nil {
			opps = append(opps, opp)
		}
	}

	if stats.PathsExplored > 0 {
		stats.PruningEfficiency = float64(stats.PathsPruned) / float64(stats.PathsExplored) * 100
	}
	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()

	DFSPathsExploredTotal.Add(float64(stats.PathsExplored))
	DFSPathsPrunedTotal.Add(float64(stats.PathsPruned))
	s.logger.Debug("exhaustive-search-complete",
		zap.Int("paths-explored", stats.PathsExplored),
		zap.Int("paths-pruned", stats.PathsPruned),
		zap.Int("cycles-found", stats.CyclesFound),
		zap.Int("unique-opportunities", len(opps)))

	return filterAndSort(opps, s.minProfit), stats, nil
}

// visit extends the current path from node cur, whose running weight is weight.
func (st *dfsState) visit(cur int, weight float64) {
	st.stats.PathsExplored++

	if weight > st.threshold {
		st.stats.PathsPruned++
		return
	}

	depth := len(st.path) - 1
	if depth >= st.maxHops {
		return
	}

	from := st.nodes[cur]
	for _, next := range st.g.Successors(from) {
		e, _ := st.g.Edge(from, next)
		nextIdx := st.g.NodeIndex(next)

		if nextIdx == st.start && len(st.path) >= 2 {
			if weight+e.Weight < 0 {
				cycle := make([]types.TokenID, 0, len(st.path)+1)
				for _, idx := range st.path {
					cycle = append(cycle, st.nodes[idx])
				}
				st.cycles = append(st.cycles, append(cycle, st.nodes[st.start]))
				st.stats.CyclesFound++
			}
			continue
		}

		if st.onPath[nextIdx] || depth >= st.maxHops-1 {
			continue
		}

		st.onPath[nextIdx] = true
		st.path = append(st.path, nextIdx)
		st.visit(nextIdx, weight+e.Weight)
		st.path = st.path[:len(st.path)-1]
		st.onPath[nextIdx] = false
	}
}
