package risk

import (
	"testing"

	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func opportunity(hops int, profitRatio float64) *types.Opportunity {
	path := make([]types.TokenID, 0, hops+1)
	for i := 0; i < hops; i++ {
		path = append(path, types.TokenID(string(rune('A'+i))))
	}
	path = append(path, path[0])

	return &types.Opportunity{
		Path:               path,
		ProfitRatio:        profitRatio,
		HopCount:           hops,
		ConfidenceScore:    1.0,
		EstimatedProfitSOL: profitRatio,
	}
}

func pathEdges(hops int, gasLamports int64, slippageBps int) []types.Edge {
	edges := make([]types.Edge, hops)
	for i := range edges {
		edges[i] = types.Edge{GasFee: gasLamports, SlippageBps: slippageBps}
	}
	return edges
}

func TestEvaluate(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	evaluator := NewEvaluator(DefaultConfig(), logger)

	tests := []struct {
		name           string
		opp            *types.Opportunity
		edges          []types.Edge
		expectRisk     float64
		expectRec      Recommendation
		expectLevel    Level
		expectSlippage float64
	}{
		{
			name:           "low-risk-high-profit-executes",
			opp:            opportunity(2, 0.4),
			expectRisk:     0.1,
			expectRec:      Execute,
			expectLevel:    LevelLow,
			expectSlippage: 0.2,
		},
		{
			name:           "low-risk-modest-profit-considered",
			opp:            opportunity(2, 0.05),
			expectRisk:     0.1,
			expectRec:      Consider,
			expectLevel:    LevelLow,
			expectSlippage: 0.2,
		},
		{
			name:           "edge-data-drives-costs",
			opp:            opportunity(3, 0.02),
			edges:          pathEdges(3, 5000, 50),
			expectRisk:     0.39,
			expectRec:      Consider,
			expectLevel:    LevelMedium,
			expectSlippage: 1.5,
		},
		{
			name:           "below-min-profit-avoided",
			opp:            opportunity(2, 0.003),
			expectRisk:     0.1*0.5 + 1.0*0.3 + 0.1*0.2, // 0.001 SOL gas is a third of the profit
			expectRec:      Avoid,
			expectLevel:    LevelMedium,
			expectSlippage: 0.2,
		},
		{
			name:           "high-slippage-long-path-avoided",
			opp:            opportunity(5, 0.05),
			edges:          pathEdges(5, 5000, 100),
			expectRisk:     0.5 + 0.03 + 0.18,
			expectRec:      Avoid,
			expectLevel:    LevelHigh,
			expectSlippage: 5.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := evaluator.Evaluate(tt.opp, tt.edges)

			assert.InDelta(t, tt.expectRisk, ev.RiskScore, 1e-9)
			assert.Equal(t, tt.expectRec, ev.Recommendation)
			assert.Equal(t, tt.expectLevel, ev.Level)
			assert.InDelta(t, tt.expectSlippage, ev.TotalSlippagePct, 1e-9)
			assert.Equal(t, tt.opp.ID(), ev.OpportunityID)
			assert.InDelta(t, tt.opp.ProfitRatio*100*(1-ev.RiskScore), ev.RiskAdjustedReturn, 1e-9)
		})
	}
}

func TestEvaluate_GasCostUsesProfitFloor(t *testing.T) {
	evaluator := NewEvaluator(DefaultConfig(), nil)

	opp := opportunity(2, 0.01)
	opp.EstimatedProfitSOL = 0
	ev := evaluator.Evaluate(opp, pathEdges(2, 5000, 10))

	assert.InDelta(t, 1e-5, ev.GasCostSOL, 1e-15)
	assert.InDelta(t, 1e-5/0.001, ev.GasCostRatio, 1e-12)
}

func TestEvaluate_Invalid(t *testing.T) {
	evaluator := NewEvaluator(DefaultConfig(), nil)

	ev := evaluator.Evaluate(nil, nil)
	assert.Equal(t, Avoid, ev.Recommendation)
	assert.Equal(t, LevelHigh, ev.Level)
	assert.Equal(t, "INVALID", ev.OpportunityID)
	assert.InDelta(t, 1.0, ev.RiskScore, 1e-12)
}

func TestRiskBucketsAreMonotonic(t *testing.T) {
	evaluator := NewEvaluator(DefaultConfig(), nil)

	prev := 0.0
	for _, s := range []float64{0, 0.005, 0.0051, 0.01, 0.015, 0.02, 0.03, 1} {
		r := evaluator.slippageRisk(s)
		assert.GreaterOrEqual(t, r, prev, "slippage %v", s)
		prev = r
	}

	prev = 0.0
	for _, g := range []float64{0, 0.05, 0.06, 0.1, 0.15, 0.2, 0.5} {
		r := evaluator.gasRisk(g)
		assert.GreaterOrEqual(t, r, prev, "gas ratio %v", g)
		prev = r
	}

	prev = 0.0
	for hops := 2; hops <= 6; hops++ {
		r := complexityRisk(hops)
		assert.GreaterOrEqual(t, r, prev, "hops %d", hops)
		prev = r
	}
}

func TestEvaluateBatchAndSummary(t *testing.T) {
	evaluator := NewEvaluator(DefaultConfig(), nil)

	evals := evaluator.EvaluateBatch([]*types.Opportunity{
		opportunity(2, 0.05),
		opportunity(2, 0.4),
		opportunity(2, 0.003),
	})
	require.Len(t, evals, 3)

	for i := 1; i < len(evals); i++ {
		assert.GreaterOrEqual(t, evals[i-1].RiskAdjustedReturn, evals[i].RiskAdjustedReturn)
	}
	assert.Equal(t, Execute, evals[0].Recommendation)

	summary := Summarize(evals)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Executable)
	assert.Equal(t, 1, summary.Consideration)
	assert.Equal(t, 1, summary.Avoid)
	assert.InDelta(t, 100.0/3.0, summary.ExecutionRate, 1e-9)
	assert.InDelta(t, (5.0+40.0+0.3)/3.0, summary.AverageProfitPercentage, 1e-9)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "negative-weight", mutate: func(c *Config) { c.Weights.Gas = -0.1 }, wantErr: true},
		{name: "zero-weights", mutate: func(c *Config) { c.Weights = Weights{} }, wantErr: true},
		{name: "inverted-thresholds", mutate: func(c *Config) { c.LowRiskThreshold = 0.7 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
