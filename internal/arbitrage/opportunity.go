package arbitrage

import (
	"math"

	"github.com/mselser95/solana-cycle-arb/internal/graph"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"go.uber.org/zap"
)

// Factory converts a candidate cycle into a scored opportunity. Every search
// algorithm goes through the same Factory so the profit model cannot drift.
type Factory struct {
	baseAmount float64
	maxHops    int
	logger     *zap.Logger
}

// NewFactory creates an opportunity factory for the given trade size and hop limit.
func NewFactory(baseAmount float64, maxHops int, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		baseAmount: baseAmount,
		maxHops:    maxHops,
		logger:     logger,
	}
}

// Create scores path against g. path must be closed (first == last) with at
// least two hops. A rejected candidate returns nil and the reason.
func (f *Factory) Create(g *graph.Graph, path []types.TokenID) (*types.Opportunity, RejectReason) {
	if len(path) < 3 {
		return f.reject(path, RejectPathTooShort)
	}
	if path[0] != path[len(path)-1] {
		return f.reject(path, RejectPathNotClosed)
	}
	if len(path)-1 > f.maxHops {
		return f.reject(path, RejectExceedsMaxHops)
	}

	var (
		totalWeight   float64
		gasLamports   int64
		tradingFeeSOL float64
	)
	for i := 0; i < len(path)-1; i++ {
		e, ok := g.Edge(path[i], path[i+1])
		if !ok {
			return f.reject(path, RejectMissingEdge)
		}

		totalWeight += e.Weight
		gasLamports += e.GasFee
		// Quotes may be taken at a different size than the configured base amount.
		tradingFeeSOL += e.TotalFee * (f.baseAmount / e.InAmount)
	}

	if totalWeight >= 0 {
		return f.reject(path, RejectNonNegativeWeight)
	}

	grossRatio := math.Exp(-totalWeight) - 1
	gasSOL := float64(gasLamports) / types.LamportsPerSOL
	totalFee := gasSOL + tradingFeeSOL
	netProfit := f.baseAmount*grossRatio - totalFee
	netRatio := netProfit / f.baseAmount

	out := make([]types.TokenID, len(path))
	copy(out, path)

	return &types.Opportunity{
		Path:               out,
		PathSymbols:        g.Symbols(out),
		ProfitRatio:        netRatio,
		TotalWeight:        totalWeight,
		TotalFee:           totalFee,
		HopCount:           len(out) - 1,
		ConfidenceScore:    clamp(netRatio*10, 0, 1),
		EstimatedProfitSOL: netProfit,
	}, RejectNone
}

func (f *Factory) reject(path []types.TokenID, reason RejectReason) (*types.Opportunity, RejectReason) {
	OpportunitiesRejectedTotal.WithLabelValues(string(reason)).Inc()
	f.logger.Debug("candidate-rejected",
		zap.Int("path-length", len(path)),
		zap.String("reason", string(reason)))
	return nil, reason
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
