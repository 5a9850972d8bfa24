package types

import (
	"fmt"
	"strings"
)

// Opportunity is a scored arbitrage cycle. Path starts and ends at the same token.
// ConfidenceScore is the only field changed after creation (once, by risk evaluation).
type Opportunity struct {
	Path               []TokenID `json:"path"`
	PathSymbols        []string  `json:"path_symbols"`
	ProfitRatio        float64   `json:"profit_ratio"` // Net of fees, relative to the base amount
	TotalWeight        float64   `json:"total_weight"`
	TotalFee           float64   `json:"total_fee"` // SOL
	HopCount           int       `json:"hop_count"`
	ConfidenceScore    float64   `json:"confidence_score"`
	EstimatedProfitSOL float64   `json:"estimated_profit_sol"`
}

// Cycle returns the path without the closing repeat of the start token.
func (o *Opportunity) Cycle() []TokenID {
	if len(o.Path) > 1 && o.Path[0] == o.Path[len(o.Path)-1] {
		return o.Path[:len(o.Path)-1]
	}
	return o.Path
}

// ID returns a short display identifier: first two addresses, then the last address prefix.
func (o *Opportunity) ID() string {
	if len(o.Path) == 0 {
		return "INVALID"
	}

	head := o.Path
	if len(head) > 2 {
		head = head[:2]
	}
	parts := make([]string, len(head))
	for i, t := range head {
		parts[i] = string(t)
	}

	last := string(o.Path[len(o.Path)-1])
	if len(last) > 8 {
		last = last[:8]
	}

	return strings.Join(parts, "-") + "..." + last
}

// RiskAdjustedScore is the post-risk ranking key.
func (o *Opportunity) RiskAdjustedScore() float64 {
	return o.ProfitRatio * o.ConfidenceScore
}

// String returns a human-readable representation of the opportunity.
func (o *Opportunity) String() string {
	return fmt.Sprintf(
		"Opportunity[%s] Profit=%.4f%% Est=%.6fSOL Hops=%d Fee=%.6fSOL Confidence=%.2f Weight=%.6f",
		strings.Join(o.PathSymbols, "→"),
		o.ProfitRatio*100,
		o.EstimatedProfitSOL,
		o.HopCount,
		o.TotalFee,
		o.ConfidenceScore,
		o.TotalWeight,
	)
}
