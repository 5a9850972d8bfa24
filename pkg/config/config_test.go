package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mselser95/solana-cycle-arb/internal/arbitrage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaults_MatchDetectorDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	want := arbitrage.DefaultConfig()
	got := cfg.Detector(nil)
	assert.Equal(t, want, got)

	assert.Equal(t, 10*time.Second, cfg.WatchInterval.Duration)
	assert.Equal(t, StorageConsole, cfg.Storage.Mode)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("EDGES_FILE", "/data/edges.json")
	t.Setenv("WATCH_INTERVAL", "2s")
	t.Setenv("ARB_MAX_HOPS", "6")
	t.Setenv("ARB_BASE_AMOUNT", "2.5")
	t.Setenv("ARB_ENABLE_TWO_HOP", "false")
	t.Setenv("ARB_PROFIT_PRUNING_THRESHOLD", "+Inf")
	t.Setenv("ARB_PARALLEL", "true")
	t.Setenv("RISK_LOW_THRESHOLD", "0.2")
	t.Setenv("RISK_WEIGHT_COMPLEXITY", "0.1")
	t.Setenv("STORAGE_MODE", "none")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "/data/edges.json", cfg.EdgesFile)
	assert.Equal(t, 2*time.Second, cfg.WatchInterval.Duration)
	assert.Equal(t, StorageNone, cfg.Storage.Mode)

	det := cfg.Detector(zap.NewNop())
	assert.Equal(t, 6, det.MaxHops)
	assert.Equal(t, 2.5, det.BaseAmount)
	assert.False(t, det.EnableTwoHop)
	assert.True(t, det.EnableTriangle)
	assert.True(t, math.IsInf(det.ProfitPruningThreshold, 1))
	assert.True(t, det.Parallel)
	assert.Equal(t, 0.2, det.Risk.LowRiskThreshold)
	assert.Equal(t, 0.1, det.Risk.Weights.Complexity)
	assert.NotNil(t, det.Logger)
}

func TestLoadFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ARB_MAX_HOPS", "four")
	t.Setenv("ARB_PARALLEL", "yes")
	t.Setenv("WATCH_INTERVAL", "10")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Arbitrage.MaxHops)
	assert.False(t, cfg.Arbitrage.Parallel)
	assert.Equal(t, 10*time.Second, cfg.WatchInterval.Duration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults"},
		{name: "empty-port", mutate: func(c *Config) { c.HTTPPort = "" }, wantErr: "HTTP_PORT"},
		{name: "bad-log-level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "LOG_LEVEL"},
		{name: "negative-watch", mutate: func(c *Config) { c.WatchInterval.Duration = -time.Second }, wantErr: "WATCH_INTERVAL"},
		{name: "negative-cache-ttl", mutate: func(c *Config) { c.CacheTTL.Duration = -time.Second }, wantErr: "CACHE_TTL"},
		{name: "negative-report-limit", mutate: func(c *Config) { c.ReportLimit = -1 }, wantErr: "REPORT_LIMIT"},
		{name: "max-hops-one", mutate: func(c *Config) { c.Arbitrage.MaxHops = 1 }, wantErr: "ARB_MAX_HOPS"},
		{name: "max-hops-two", mutate: func(c *Config) { c.Arbitrage.MaxHops = 2 }},
		{name: "zero-base", mutate: func(c *Config) { c.Arbitrage.BaseAmount = 0 }, wantErr: "ARB_BASE_AMOUNT"},
		{name: "inf-base", mutate: func(c *Config) { c.Arbitrage.BaseAmount = math.Inf(1) }, wantErr: "ARB_BASE_AMOUNT"},
		{name: "negative-min-profit", mutate: func(c *Config) { c.Arbitrage.MinProfitThreshold = -0.01 }, wantErr: "ARB_MIN_PROFIT_THRESHOLD"},
		{name: "zero-min-profit", mutate: func(c *Config) { c.Arbitrage.MinProfitThreshold = 0 }},
		{name: "nan-pruning", mutate: func(c *Config) { c.Arbitrage.ProfitPruningThreshold = math.NaN() }, wantErr: "PRUNING"},
		{name: "negative-risk-weight", mutate: func(c *Config) { c.Risk.Weights.Gas = -1 }, wantErr: "risk config"},
		{name: "zero-risk-weights", mutate: func(c *Config) {
			c.Risk.Weights.Gas = 0
			c.Risk.Weights.Slippage = 0
			c.Risk.Weights.Complexity = 0
		}, wantErr: "positive sum"},
		{name: "low-above-medium", mutate: func(c *Config) { c.Risk.LowRiskThreshold = 0.7 }, wantErr: "low_risk_threshold"},
		{name: "unknown-storage", mutate: func(c *Config) { c.Storage.Mode = "s3" }, wantErr: "STORAGE_MODE"},
		{name: "postgres-storage", mutate: func(c *Config) { c.Storage.Mode = StoragePostgres }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

const sampleTOML = `
log_level = "warn"
edges_file = "edges.json"
watch_interval = "1m"
sanitize_edges = true

[arbitrage]
max_hops = 3
min_profit_threshold = 0.01
enable_exhaustive_dfs = false

[risk]
low_risk_threshold = 0.25

[risk.weights]
slippage = 0.6
gas = 0.2
complexity = 0.2

[storage]
mode = "postgres"
postgres_host = "db.internal"
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "override.internal")

	cfg, err := LoadFile(writeFile(t, sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.HTTPPort, "absent keys keep defaults")
	assert.Equal(t, "edges.json", cfg.EdgesFile)
	assert.Equal(t, time.Minute, cfg.WatchInterval.Duration)
	assert.True(t, cfg.SanitizeEdges)

	assert.Equal(t, 3, cfg.Arbitrage.MaxHops)
	assert.Equal(t, 0.01, cfg.Arbitrage.MinProfitThreshold)
	assert.False(t, cfg.Arbitrage.EnableExhaustiveDFS)
	assert.True(t, cfg.Arbitrage.EnableBellmanFord)

	assert.Equal(t, 0.25, cfg.Risk.LowRiskThreshold)
	assert.Equal(t, 0.6, cfg.Risk.MediumRiskThreshold)
	assert.Equal(t, 0.6, cfg.Risk.Weights.Slippage)

	assert.Equal(t, StoragePostgres, cfg.Storage.Mode)
	assert.Equal(t, "override.internal", cfg.Storage.PostgresHost, "env wins over file")
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "syntax", content: "max_hops = = 3", wantErr: "decode config file"},
		{name: "unknown-key", content: "[arbitrage]\nmax_hopz = 3", wantErr: "unknown config keys"},
		{name: "bad-duration", content: `watch_interval = "soon"`, wantErr: "decode config file"},
		{name: "invalid-value", content: "[arbitrage]\nmax_hops = 1", wantErr: "ARB_MAX_HOPS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "12abc")
	assert.Equal(t, 42, getIntOrDefault("TEST_INT_VAR", 42))
	t.Setenv("TEST_INT_VAR", "-10")
	assert.Equal(t, -10, getIntOrDefault("TEST_INT_VAR", 42))

	t.Setenv("TEST_FLOAT_VAR", "abc")
	assert.Equal(t, 1.5, getFloat64OrDefault("TEST_FLOAT_VAR", 1.5))
	t.Setenv("TEST_FLOAT_VAR", "0.25")
	assert.Equal(t, 0.25, getFloat64OrDefault("TEST_FLOAT_VAR", 1.5))

	t.Setenv("TEST_DURATION_VAR", "5")
	assert.Equal(t, time.Second, getDurationOrDefault("TEST_DURATION_VAR", time.Second))
	t.Setenv("TEST_DURATION_VAR", "250ms")
	assert.Equal(t, 250*time.Millisecond, getDurationOrDefault("TEST_DURATION_VAR", time.Second))
}

func TestGetBoolOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		expected     bool
	}{
		{name: "parse-true", envValue: "true", defaultValue: false, expected: true},
		{name: "parse-false", envValue: "false", defaultValue: true, expected: false},
		{name: "parse-1", envValue: "1", defaultValue: false, expected: true},
		{name: "parse-0", envValue: "0", defaultValue: true, expected: false},
		{name: "invalid-value", envValue: "yes", defaultValue: false, expected: false},
		{name: "empty-string", envValue: "", defaultValue: true, expected: true},
		{name: "numeric-2", envValue: "2", defaultValue: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VAR", tt.envValue)
			assert.Equal(t, tt.expected, getBoolOrDefault("TEST_BOOL_VAR", tt.defaultValue))
		})
	}
}

func TestNewLoggerWithLevel(t *testing.T) {
	logger, err := NewLoggerWithLevel("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLoggerWithLevel("")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))

	_, err = NewLoggerWithLevel("verbose")
	assert.Error(t, err)
}
