package config

import (
	"os"
	"testing"
)

// BenchmarkConfig_Validate benchmarks configuration validation
func BenchmarkConfig_Validate(b *testing.B) {
	cfg := Defaults()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cfg.Validate()
	}
}

// BenchmarkConfig_LoadFromEnv benchmarks environment variable loading
func BenchmarkConfig_LoadFromEnv(b *testing.B) {
	os.Setenv("ARB_MAX_HOPS", "5")
	os.Setenv("ARB_MIN_PROFIT_THRESHOLD", "0.002")
	os.Setenv("RISK_WEIGHT_GAS", "0.4")
	defer func() {
		os.Unsetenv("ARB_MAX_HOPS")
		os.Unsetenv("ARB_MIN_PROFIT_THRESHOLD")
		os.Unsetenv("RISK_WEIGHT_GAS")
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = LoadFromEnv()
	}
}
