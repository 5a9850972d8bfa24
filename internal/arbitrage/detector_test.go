package arbitrage

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/mselser95/solana-cycle-arb/internal/graph"
	"github.com/mselser95/solana-cycle-arb/internal/risk"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// randomEdges builds a dense pseudo-random market around parity.
func randomEdges(seed uint64, n int) []types.Edge {
	rng := rand.New(rand.NewSource(int64(seed)))
	var edges []types.Edge
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || rng.Float64() < 0.2 {
				continue
			}
			from := fmt.Sprintf("T%02d", i)
			to := fmt.Sprintf("T%02d", j)
			e := CreateTestEdge(from, to, 0.97+rng.Float64()*0.06)
			e.SlippageBps = rng.Intn(80)
			edges = append(edges, e)
		}
	}
	return edges
}

func newDetector(t *testing.T, mutate func(c *Config)) *Detector {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := New(cfg)
	require.NoError(t, err)
	return d
}

func TestNew_ValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "max-hops-below-two", mutate: func(c *Config) { c.MaxHops = 1 }},
		{name: "zero-base-amount", mutate: func(c *Config) { c.BaseAmount = 0 }},
		{name: "negative-min-profit", mutate: func(c *Config) { c.MinProfitThreshold = -0.1 }},
		{name: "bad-risk-config", mutate: func(c *Config) { c.Risk.LowRiskThreshold = 0.9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestDetector_Triangle(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	d := newDetector(t, func(c *Config) { c.Logger = logger })

	report, err := d.DetectEdges(CreateTestTriangle())
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, []string{AlgorithmBellmanFord, AlgorithmTriangle, AlgorithmTwoHop, AlgorithmExhaustiveDFS}, d.Algorithms())
	require.Len(t, report.Algorithms, 4)
	assert.Equal(t, 3, report.Candidates, "bellman-ford, triangle and dfs each find it")
	assert.Equal(t, 1, report.Unique)
	assert.True(t, report.RiskEvaluated)
	require.NotNil(t, report.RiskSummary)
	assert.Equal(t, 1, report.RiskSummary.Consideration)
	require.NotNil(t, report.SearchStats)
	assert.Equal(t, graph.Stats{Nodes: 3, Edges: 6, BidirectionalPairs: 3}, report.Graph)
	assert.False(t, report.Failed())

	best, ok := report.Best()
	require.True(t, ok)
	assert.Equal(t, nodeSetKey(path("A", "B", "C", "A")), nodeSetKey(best.Path))
	assert.InDelta(t, 0.03-0.000315, best.ProfitRatio, 1e-9)
	assert.LessOrEqual(t, best.ConfidenceScore, 1-report.RiskSummary.AverageRiskScore+1e-12)
	assert.Len(t, d.Builder().History(), 1)
}

func TestDetector_ValidationErrorHaltsRun(t *testing.T) {
	d := newDetector(t, nil)

	edges := CreateTestTriangle()
	edges[4] = types.NewEdge("C", "B", "C", "B", 1.0, 0.0)

	report, err := d.DetectEdges(edges)
	require.Error(t, err)
	assert.Nil(t, report)

	var vErr *types.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, 4, vErr.Index)
	assert.Equal(t, "price_ratio", vErr.Field)
}

func TestDetector_EmptyGraph(t *testing.T) {
	d := newDetector(t, nil)

	report := d.Detect(nil)
	require.NotNil(t, report)
	assert.Empty(t, report.Opportunities)
	assert.NotNil(t, report.Opportunities)
}

type failingAlgorithm struct{ err error }

func (f failingAlgorithm) Name() string { return "failing" }

func (f failingAlgorithm) Detect(g *graph.Graph) ([]*types.Opportunity, error) {
	return nil, f.err
}

type panickingAlgorithm struct{}

func (panickingAlgorithm) Name() string { return "panicking" }

func (panickingAlgorithm) Detect(g *graph.Graph) ([]*types.Opportunity, error) {
	panic("index out of range")
}

func TestDetector_AlgorithmFailuresAreRecovered(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			d := newDetector(t, func(c *Config) { c.Parallel = parallel })
			d.algorithms = append(d.algorithms,
				failingAlgorithm{err: errors.New("boom")},
				panickingAlgorithm{},
			)

			report := d.Detect(mustBuild(t, CreateTestTriangle()))

			require.True(t, report.Failed())
			require.Len(t, report.Errors, 2)
			assert.Equal(t, "failing", report.Errors[0].Algorithm)
			assert.Equal(t, "panicking", report.Errors[1].Algorithm)
			assert.True(t, IsAlgorithmError(report.Errors[1]))
			assert.Contains(t, report.Errors[1].Error(), "panic")
			assert.Len(t, report.Opportunities, 1, "healthy algorithms still contribute")
			assert.NotEmpty(t, report.Algorithms[4].Error)
		})
	}
}

func TestDetector_OutputInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			edges := randomEdges(seed, 7)

			for _, withRisk := range []bool{false, true} {
				d := newDetector(t, func(c *Config) { c.EnableRiskEvaluation = withRisk })
				report, err := d.DetectEdges(edges)
				require.NoError(t, err)

				seen := make(map[string]bool)
				for i, opp := range report.Opportunities {
					assert.Equal(t, opp.Path[0], opp.Path[len(opp.Path)-1])
					assert.Equal(t, len(opp.Path)-1, opp.HopCount)
					assert.LessOrEqual(t, opp.HopCount, d.Config().MaxHops)
					assert.Less(t, opp.TotalWeight, 0.0)
					assert.GreaterOrEqual(t, opp.ProfitRatio, d.Config().MinProfitThreshold)
					assert.GreaterOrEqual(t, opp.ConfidenceScore, 0.0)
					assert.LessOrEqual(t, opp.ConfidenceScore, 1.0)

					key := nodeSetKey(opp.Path)
					assert.False(t, seen[key], "duplicate cycle %v", opp.Path)
					seen[key] = true

					if i == 0 {
						continue
					}
					prev := report.Opportunities[i-1]
					if withRisk {
						assert.GreaterOrEqual(t, prev.RiskAdjustedScore(), opp.RiskAdjustedScore())
						continue
					}
					if prev.ProfitRatio == opp.ProfitRatio {
						assert.GreaterOrEqual(t, prev.ConfidenceScore, opp.ConfidenceScore)
					} else {
						assert.Greater(t, prev.ProfitRatio, opp.ProfitRatio)
					}
				}
			}
		})
	}
}

func TestDetector_RiskOnlyFilters(t *testing.T) {
	for seed := uint64(10); seed <= 14; seed++ {
		edges := randomEdges(seed, 6)

		without, err := newDetector(t, func(c *Config) { c.EnableRiskEvaluation = false }).DetectEdges(edges)
		require.NoError(t, err)
		with, err := newDetector(t, nil).DetectEdges(edges)
		require.NoError(t, err)

		superset := cycleKeys(without.Opportunities, nodeSetKey)
		for _, opp := range with.Opportunities {
			assert.True(t, superset[nodeSetKey(opp.Path)], "seed %d: risk evaluation added %v", seed, opp.Path)
		}
		assert.Equal(t, len(without.Opportunities), len(with.Opportunities)+with.RiskFiltered)
	}
}

func TestDetector_ParallelMatchesSequential(t *testing.T) {
	edges := randomEdges(42, 7)

	seq, err := newDetector(t, nil).DetectEdges(edges)
	require.NoError(t, err)
	par, err := newDetector(t, func(c *Config) { c.Parallel = true }).DetectEdges(edges)
	require.NoError(t, err)

	require.Equal(t, len(seq.Opportunities), len(par.Opportunities))
	for i := range seq.Opportunities {
		assert.Equal(t, seq.Opportunities[i].Path, par.Opportunities[i].Path)
		assert.Equal(t, seq.Opportunities[i].ProfitRatio, par.Opportunities[i].ProfitRatio)
	}
}

func TestDetector_ConcurrentRunsKeepTheirOwnSearchStats(t *testing.T) {
	d := newDetector(t, nil)
	cfg := d.Config()

	inputs := [][]types.Edge{CreateTestTriangle(), randomEdges(7, 6)}
	want := make([]SearchStats, len(inputs))
	for i, edges := range inputs {
		_, stats, err := NewExhaustiveSearch(cfg, NewFactory(cfg.BaseAmount, cfg.MaxHops, nil)).Search(mustBuild(t, edges))
		require.NoError(t, err)
		want[i] = stats
	}
	require.NotEqual(t, want[0], want[1])

	const rounds = 20
	reports := make([][]*Report, len(inputs))
	var wg sync.WaitGroup
	for i, edges := range inputs {
		i, edges := i, edges
		reports[i] = make([]*Report, rounds)
		for r := 0; r < rounds; r++ {
			r := r
			wg.Add(1)
			go func() {
				defer wg.Done()
				report, err := d.DetectEdges(edges)
				if err == nil {
					reports[i][r] = report
				}
			}()
		}
	}
	wg.Wait()

	for i := range inputs {
		for r, report := range reports[i] {
			require.NotNil(t, report, "input %d round %d", i, r)
			require.NotNil(t, report.SearchStats)
			assert.Equal(t, want[i], *report.SearchStats, "input %d round %d", i, r)
		}
	}
}

func TestDetector_DisabledAlgorithms(t *testing.T) {
	d := newDetector(t, func(c *Config) {
		c.EnableBellmanFord = false
		c.EnableExhaustiveDFS = false
		c.EnableTriangle = false
	})
	assert.Equal(t, []string{AlgorithmTwoHop}, d.Algorithms())

	report, err := d.DetectEdges(CreateTestTriangle())
	require.NoError(t, err)
	assert.Empty(t, report.Opportunities)
	assert.Nil(t, report.SearchStats)
}

func TestDedupeAndRank(t *testing.T) {
	abcLow := &types.Opportunity{Path: path("A", "B", "C", "A"), ProfitRatio: 0.01, ConfidenceScore: 0.1}
	acbHigh := &types.Opportunity{Path: path("A", "C", "B", "A"), ProfitRatio: 0.02, ConfidenceScore: 0.2}
	abTie1 := &types.Opportunity{Path: path("A", "B", "A"), ProfitRatio: 0.015, ConfidenceScore: 0.15}
	cdTie := &types.Opportunity{Path: path("C", "D", "C"), ProfitRatio: 0.015, ConfidenceScore: 0.3}

	out := dedupeAndRank([]*types.Opportunity{abcLow, abTie1, acbHigh, cdTie})

	require.Len(t, out, 3)
	assert.Same(t, acbHigh, out[0])
	assert.Same(t, cdTie, out[1], "equal profit ranks by confidence")
	assert.Same(t, abTie1, out[2])
}

func TestApplyRisk_CapsConfidenceAndDropsAvoid(t *testing.T) {
	d := newDetector(t, nil)
	g := mustBuild(t, CreateTestTriangle())

	good := CreateTestOpportunity("A", 0.05)
	good.ConfidenceScore = 1.0
	thin := CreateTestOpportunity("A", 0.002)

	kept, evals := d.applyRisk(g, []*types.Opportunity{thin, good})
	require.Len(t, evals, 2)
	assert.Equal(t, risk.Avoid, evals[0].Recommendation)

	require.Len(t, kept, 1)
	assert.Same(t, good, kept[0])
	assert.InDelta(t, 1-evals[1].RiskScore, good.ConfidenceScore, 1e-12)
}
