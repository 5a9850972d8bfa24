package arbitrage

import (
	"time"

	"github.com/mselser95/solana-cycle-arb/internal/graph"
	"github.com/mselser95/solana-cycle-arb/internal/risk"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
)

// AlgorithmResult records what one algorithm contributed to a run.
type AlgorithmResult struct {
	Name     string        `json:"name"`
	Found    int           `json:"found"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// Report is the outcome of one detection run.
type Report struct {
	ID            string               `json:"id"`
	StartedAt     time.Time            `json:"started_at"`
	Duration      time.Duration        `json:"duration_ns"`
	Graph         graph.Stats          `json:"graph"`
	Algorithms    []AlgorithmResult    `json:"algorithms"`
	Candidates    int                  `json:"candidates"` // Before dedup
	Unique        int                  `json:"unique"`     // After dedup, before risk
	RiskEvaluated bool                 `json:"risk_evaluated"`
	RiskFiltered  int                  `json:"risk_filtered"`
	RiskSummary   *risk.Summary        `json:"risk_summary,omitempty"`
	SearchStats   *SearchStats         `json:"search_stats,omitempty"`
	Opportunities []*types.Opportunity `json:"opportunities"`

	// Errors holds the recovered algorithm failures of this run.
	Errors []*AlgorithmError `json:"-"`
}

// Top returns at most n opportunities (all when n <= 0).
func (r *Report) Top(n int) []*types.Opportunity {
	if n <= 0 || n >= len(r.Opportunities) {
		return r.Opportunities
	}
	return r.Opportunities[:n]
}

// Best returns the highest-ranked opportunity, if any.
func (r *Report) Best() (*types.Opportunity, bool) {
	if len(r.Opportunities) == 0 {
		return nil, false
	}
	return r.Opportunities[0], true
}

// Failed reports whether any algorithm failed during the run.
func (r *Report) Failed() bool {
	return len(r.Errors) > 0
}
