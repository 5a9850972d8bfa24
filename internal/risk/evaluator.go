package risk

import (
	"math"
	"sort"

	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"go.uber.org/zap"
)

// Recommendation is the execution advice for an opportunity.
type Recommendation string

const (
	Execute  Recommendation = "EXECUTE"
	Consider Recommendation = "CONSIDER"
	Avoid    Recommendation = "AVOID"
)

// Level is a coarse bucket of the overall risk score.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// minExpectedProfitSOL floors the profit used as the gas cost denominator.
const minExpectedProfitSOL = 0.001

// Evaluation is the derived risk assessment of one opportunity.
type Evaluation struct {
	OpportunityID      string         `json:"opportunity_id"`
	ProfitPercentage   float64        `json:"profit_percentage"`
	EstimatedProfitSOL float64        `json:"estimated_profit_sol"`
	RiskScore          float64        `json:"risk_score"`
	SlippageRisk       float64        `json:"slippage_risk"`
	GasRisk            float64        `json:"gas_risk"`
	ComplexityRisk     float64        `json:"complexity_risk"`
	TotalSlippagePct   float64        `json:"total_slippage_pct"`
	GasCostSOL         float64        `json:"gas_cost_sol"`
	GasCostRatio       float64        `json:"gas_cost_ratio"`
	Recommendation     Recommendation `json:"recommendation"`
	Level              Level          `json:"risk_level"`
	RiskAdjustedReturn float64        `json:"risk_adjusted_return"`
	RejectionReason    string         `json:"rejection_reason,omitempty"`
}

// Evaluator scores slippage, gas and complexity risk.
type Evaluator struct {
	config Config
	logger *zap.Logger
}

// NewEvaluator creates a risk evaluator.
func NewEvaluator(cfg Config, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		config: cfg,
		logger: logger,
	}
}

// Config returns the evaluator's policy.
func (e *Evaluator) Config() Config {
	return e.config
}

// Evaluate assesses one opportunity. pathEdges are the graph edges along the
// opportunity's path; when empty, per-hop defaults are used for costs.
func (e *Evaluator) Evaluate(opp *types.Opportunity, pathEdges []types.Edge) Evaluation {
	if opp == nil || len(opp.Path) == 0 {
		EvaluationsTotal.WithLabelValues(string(Avoid)).Inc()
		return Evaluation{
			OpportunityID:   "INVALID",
			RiskScore:       1.0,
			Recommendation:  Avoid,
			Level:           LevelHigh,
			RejectionReason: "invalid opportunity",
		}
	}

	gasCost, slippage := e.executionCosts(opp, pathEdges)
	gasRatio := gasCost / math.Max(opp.EstimatedProfitSOL, minExpectedProfitSOL)

	slippageRisk := e.slippageRisk(slippage)
	gasRisk := e.gasRisk(gasRatio)
	complexity := complexityRisk(opp.HopCount)

	w := e.config.Weights
	overall := math.Min(1.0, slippageRisk*w.Slippage+gasRisk*w.Gas+complexity*w.Complexity)

	rec := e.recommend(overall, opp.ProfitRatio)
	EvaluationsTotal.WithLabelValues(string(rec)).Inc()
	RiskScore.Observe(overall)

	e.logger.Debug("opportunity-risk-evaluated",
		zap.String("opportunity-id", opp.ID()),
		zap.Float64("risk-score", overall),
		zap.String("recommendation", string(rec)))

	return Evaluation{
		OpportunityID:      opp.ID(),
		ProfitPercentage:   opp.ProfitRatio * 100,
		EstimatedProfitSOL: opp.EstimatedProfitSOL,
		RiskScore:          overall,
		SlippageRisk:       slippageRisk,
		GasRisk:            gasRisk,
		ComplexityRisk:     complexity,
		TotalSlippagePct:   slippage * 100,
		GasCostSOL:         gasCost,
		GasCostRatio:       gasRatio,
		Recommendation:     rec,
		Level:              e.level(overall),
		RiskAdjustedReturn: opp.ProfitRatio * 100 * (1 - overall),
	}
}

// EvaluateBatch evaluates opportunities using per-hop cost defaults and sorts
// the results by risk-adjusted return, highest first.
func (e *Evaluator) EvaluateBatch(opps []*types.Opportunity) []Evaluation {
	evals := make([]Evaluation, 0, len(opps))
	for _, opp := range opps {
		evals = append(evals, e.Evaluate(opp, nil))
	}

	sort.SliceStable(evals, func(i, j int) bool {
		return evals[i].RiskAdjustedReturn > evals[j].RiskAdjustedReturn
	})

	return evals
}

func (e *Evaluator) executionCosts(opp *types.Opportunity, pathEdges []types.Edge) (gasCost float64, slippage float64) {
	if len(pathEdges) == 0 {
		hops := float64(opp.HopCount)
		return hops * e.config.DefaultGasPerHop, hops * e.config.DefaultSlippagePerHop
	}

	var lamports int64
	bps := 0
	for i := range pathEdges {
		lamports += pathEdges[i].GasFee
		bps += pathEdges[i].SlippageBps
	}

	return float64(lamports) / types.LamportsPerSOL, float64(bps) / 10000.0
}

func (e *Evaluator) slippageRisk(total float64) float64 {
	switch {
	case total <= 0.005:
		return 0.1
	case total <= 0.01:
		return 0.3
	case total <= e.config.MaxAcceptableSlippage:
		return 0.6
	default:
		return 1.0
	}
}

func (e *Evaluator) gasRisk(ratio float64) float64 {
	switch {
	case ratio <= 0.05:
		return 0.1
	case ratio <= e.config.MaxGasCostRatio:
		return 0.4
	case ratio <= 0.2:
		return 0.7
	default:
		return 1.0
	}
}

func complexityRisk(hops int) float64 {
	switch {
	case hops <= 2:
		return 0.1
	case hops <= 3:
		return 0.3
	case hops <= 4:
		return 0.6
	default:
		return 0.9
	}
}

func (e *Evaluator) recommend(overall float64, profitRatio float64) Recommendation {
	if overall <= e.config.LowRiskThreshold && profitRatio >= e.config.MinConfidenceThreshold {
		return Execute
	}
	if overall <= e.config.MediumRiskThreshold && profitRatio >= e.config.MinProfitThreshold {
		return Consider
	}
	return Avoid
}

func (e *Evaluator) level(score float64) Level {
	switch {
	case score <= e.config.LowRiskThreshold:
		return LevelLow
	case score <= e.config.MediumRiskThreshold:
		return LevelMedium
	default:
		return LevelHigh
	}
}
