package types

import (
	"fmt"
	"math"
)

// TokenID is an opaque token identifier (the token's chain address).
type TokenID string

// Short returns an abbreviated form of the identifier for display.
func (t TokenID) Short() string {
	s := string(t)
	if len(s) <= 8 {
		return s
	}
	return s[:4] + ".." + s[len(s)-4:]
}

// LamportsPerSOL converts lamport-denominated gas fees into SOL.
const LamportsPerSOL = 1e9

// Edge is a directed, quoted exchange from one token to another.
// All amounts and fees are SOL-equivalent except GasFee, which is in lamports.
type Edge struct {
	From           TokenID
	To             TokenID
	FromSymbol     string
	ToSymbol       string
	InAmount       float64 // Quoted input amount (SOL-equivalent)
	OutAmount      float64 // Quoted output amount (SOL-equivalent)
	PriceRatio     float64 // OutAmount / InAmount
	Weight         float64 // -ln(PriceRatio)
	SlippageBps    int
	PlatformFee    float64
	PriceImpactPct float64
	TotalFee       float64 // SOL, scaled to this edge's own InAmount
	GasFee         int64   // Lamports
}

// NewEdge creates an edge from a quote, deriving PriceRatio and Weight from the amounts.
// The result is not validated; the graph builder does that.
func NewEdge(from, to TokenID, fromSymbol, toSymbol string, inAmount, outAmount float64) Edge {
	ratio := 0.0
	if inAmount != 0 {
		ratio = outAmount / inAmount
	}

	return Edge{
		From:       from,
		To:         to,
		FromSymbol: fromSymbol,
		ToSymbol:   toSymbol,
		InAmount:   inAmount,
		OutAmount:  outAmount,
		PriceRatio: ratio,
		Weight:     WeightForRatio(ratio),
	}
}

// WeightForRatio returns the edge weight -ln(ratio) used by the cycle searches.
func WeightForRatio(ratio float64) float64 {
	return -math.Log(ratio)
}

// WeightTolerance bounds how far a supplied weight may drift from -ln(ratio),
// relative to the magnitude of the weight once it exceeds 1.
const WeightTolerance = 1e-9

// WeightMatchesRatio reports whether weight equals -ln(ratio) within WeightTolerance.
func WeightMatchesRatio(weight, ratio float64) bool {
	expected := WeightForRatio(ratio)
	return math.Abs(weight-expected) <= WeightTolerance*math.Max(1, math.Abs(expected))
}

// GasFeeSOL returns the edge's gas fee converted to SOL.
func (e *Edge) GasFeeSOL() float64 {
	return float64(e.GasFee) / LamportsPerSOL
}

// Validate checks the edge invariants. The returned error is a *ValidationError
// with Index set to -1; callers that know the record position overwrite it.
func (e *Edge) Validate() error {
	if e.From == "" {
		return NewValidationError(-1, "from_token", "token address cannot be empty")
	}
	if e.To == "" {
		return NewValidationError(-1, "to_token", "token address cannot be empty")
	}
	if e.From == e.To {
		return NewValidationError(-1, "to_token", fmt.Sprintf("self-loop on %s", e.From))
	}

	positive := []struct {
		field string
		value float64
	}{
		{"price_ratio", e.PriceRatio},
		{"in_amount", e.InAmount},
		{"out_amount", e.OutAmount},
	}
	for _, p := range positive {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return NewValidationError(-1, p.field, fmt.Sprintf("%v (must be finite)", p.value))
		}
		if p.value <= 0 {
			return NewValidationError(-1, p.field, fmt.Sprintf("%v (must be positive)", p.value))
		}
	}

	nonNegative := []struct {
		field string
		value float64
	}{
		{"platform_fee", e.PlatformFee},
		{"price_impact_pct", e.PriceImpactPct},
		{"total_fee", e.TotalFee},
	}
	for _, n := range nonNegative {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return NewValidationError(-1, n.field, fmt.Sprintf("%v (must be finite)", n.value))
		}
		if n.value < 0 {
			return NewValidationError(-1, n.field, fmt.Sprintf("%v (must be non-negative)", n.value))
		}
	}

	if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
		return NewValidationError(-1, "weight", fmt.Sprintf("%v (must be finite)", e.Weight))
	}
	if !WeightMatchesRatio(e.Weight, e.PriceRatio) {
		return NewValidationError(-1, "weight",
			fmt.Sprintf("%v (must equal -ln(price_ratio) = %v)", e.Weight, WeightForRatio(e.PriceRatio)))
	}

	if e.SlippageBps < 0 {
		return NewValidationError(-1, "slippage_bps", fmt.Sprintf("%d (must be non-negative integer)", e.SlippageBps))
	}

	if e.GasFee < 0 {
		return NewValidationError(-1, "gas_fee", fmt.Sprintf("%d (must be non-negative integer)", e.GasFee))
	}

	return nil
}
