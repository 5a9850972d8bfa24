package arbitrage

import (
	"fmt"
	"math"

	"github.com/mselser95/solana-cycle-arb/internal/risk"
	"go.uber.org/zap"
)

// Config holds detector configuration.
type Config struct {
	MinProfitThreshold   float64 // Minimum net profit ratio an opportunity must reach
	MaxHops              int
	BaseAmount           float64 // SOL-equivalent trade size used to rescale fees
	EnableRiskEvaluation bool

	EnableBellmanFord   bool
	EnableTriangle      bool
	EnableTwoHop        bool
	EnableExhaustiveDFS bool

	// ProfitPruningThreshold abandons DFS branches whose running weight exceeds it.
	// +Inf disables pruning.
	ProfitPruningThreshold float64

	// Parallel runs the enabled algorithms concurrently. Output is identical either way.
	Parallel bool

	Risk   risk.Config
	Logger *zap.Logger
}

// DefaultConfig returns the default detector configuration with every algorithm enabled.
func DefaultConfig() Config {
	return Config{
		MinProfitThreshold:     0.005,
		MaxHops:                4,
		BaseAmount:             1.0,
		EnableRiskEvaluation:   true,
		EnableBellmanFord:      true,
		EnableTriangle:         true,
		EnableTwoHop:           true,
		EnableExhaustiveDFS:    true,
		ProfitPruningThreshold: 0.5,
		Risk:                   risk.DefaultConfig(),
	}
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.MaxHops < 2 {
		return fmt.Errorf("max_hops must be at least 2, got %d", c.MaxHops)
	}

	if math.IsNaN(c.BaseAmount) || math.IsInf(c.BaseAmount, 0) || c.BaseAmount <= 0 {
		return fmt.Errorf("base_amount must be a finite positive number, got %v", c.BaseAmount)
	}

	if math.IsNaN(c.MinProfitThreshold) || c.MinProfitThreshold < 0 {
		return fmt.Errorf("min_profit_threshold must be non-negative, got %v", c.MinProfitThreshold)
	}

	if math.IsNaN(c.ProfitPruningThreshold) {
		return fmt.Errorf("profit_pruning_threshold cannot be NaN")
	}

	if c.EnableRiskEvaluation {
		err := c.Risk.Validate()
		if err != nil {
			return fmt.Errorf("risk config: %w", err)
		}
	}

	return nil
}
