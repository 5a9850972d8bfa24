package risk

import (
	"fmt"
	"math"
)

// Weights are the relative contributions of each risk factor to the overall score.
type Weights struct {
	Slippage   float64 `toml:"slippage"`
	Gas        float64 `toml:"gas"`
	Complexity float64 `toml:"complexity"`
}

// Config holds risk evaluator thresholds and defaults.
type Config struct {
	LowRiskThreshold       float64 `toml:"low_risk_threshold"`
	MediumRiskThreshold    float64 `toml:"medium_risk_threshold"`
	MaxAcceptableSlippage  float64 `toml:"max_acceptable_slippage"` // Fraction, upper bound of the 0.6 slippage bucket
	MaxGasCostRatio        float64 `toml:"max_gas_cost_ratio"`      // Upper bound of the 0.4 gas bucket
	MinConfidenceThreshold float64 `toml:"min_confidence_threshold"`
	MinProfitThreshold     float64 `toml:"min_profit_threshold"`
	Weights                Weights `toml:"weights"`

	// Used when no edge data is available for an opportunity.
	DefaultGasPerHop      float64 `toml:"default_gas_per_hop"` // SOL
	DefaultSlippagePerHop float64 `toml:"default_slippage_per_hop"`
}

// DefaultConfig returns the default risk policy.
func DefaultConfig() Config {
	return Config{
		LowRiskThreshold:       0.3,
		MediumRiskThreshold:    0.6,
		MaxAcceptableSlippage:  0.02,
		MaxGasCostRatio:        0.1,
		MinConfidenceThreshold: 0.3,
		MinProfitThreshold:     0.005,
		Weights: Weights{
			Slippage:   0.5,
			Gas:        0.3,
			Complexity: 0.2,
		},
		DefaultGasPerHop:      0.0005,
		DefaultSlippagePerHop: 0.001,
	}
}

// Validate checks that the risk policy is usable.
func (c Config) Validate() error {
	values := map[string]float64{
		"low_risk_threshold":       c.LowRiskThreshold,
		"medium_risk_threshold":    c.MediumRiskThreshold,
		"max_acceptable_slippage":  c.MaxAcceptableSlippage,
		"max_gas_cost_ratio":       c.MaxGasCostRatio,
		"min_confidence_threshold": c.MinConfidenceThreshold,
		"min_profit_threshold":     c.MinProfitThreshold,
		"weights.slippage":         c.Weights.Slippage,
		"weights.gas":              c.Weights.Gas,
		"weights.complexity":       c.Weights.Complexity,
		"default_gas_per_hop":      c.DefaultGasPerHop,
		"default_slippage_per_hop": c.DefaultSlippagePerHop,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("risk %s must be a finite non-negative number, got %v", name, v)
		}
	}

	if c.Weights.Slippage+c.Weights.Gas+c.Weights.Complexity <= 0 {
		return fmt.Errorf("risk weights must have a positive sum")
	}

	if c.LowRiskThreshold > c.MediumRiskThreshold {
		return fmt.Errorf("low_risk_threshold (%v) must not exceed medium_risk_threshold (%v)",
			c.LowRiskThreshold, c.MediumRiskThreshold)
	}

	return nil
}
