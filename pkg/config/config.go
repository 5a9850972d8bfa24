package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mselser95/solana-cycle-arb/internal/arbitrage"
	"github.com/mselser95/solana-cycle-arb/internal/risk"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Storage modes.
const (
	StorageConsole  = "console"
	StoragePostgres = "postgres"
	StorageNone     = "none"
)

// Duration wraps time.Duration so TOML files can use strings like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string `toml:"log_level"`
	HTTPPort string `toml:"http_port"`

	// Input
	EdgesFile     string   `toml:"edges_file"`
	WatchInterval Duration `toml:"watch_interval"` // 0 disables the serve-mode watch loop
	SanitizeEdges bool     `toml:"sanitize_edges"`
	CacheTTL      Duration `toml:"cache_ttl"`
	ReportLimit   int      `toml:"report_limit"`

	Arbitrage ArbitrageConfig `toml:"arbitrage"`
	Risk      risk.Config     `toml:"risk"`
	Storage   StorageConfig   `toml:"storage"`
}

// ArbitrageConfig holds detector settings.
type ArbitrageConfig struct {
	MinProfitThreshold     float64 `toml:"min_profit_threshold"`
	MaxHops                int     `toml:"max_hops"`
	BaseAmount             float64 `toml:"base_amount"`
	EnableRiskEvaluation   bool    `toml:"enable_risk_evaluation"`
	EnableBellmanFord      bool    `toml:"enable_bellman_ford"`
	EnableTriangle         bool    `toml:"enable_triangle"`
	EnableTwoHop           bool    `toml:"enable_two_hop"`
	EnableExhaustiveDFS    bool    `toml:"enable_exhaustive_dfs"`
	ProfitPruningThreshold float64 `toml:"profit_pruning_threshold"`
	Parallel               bool    `toml:"parallel"`
}

// StorageConfig selects and configures the run recorder.
type StorageConfig struct {
	Mode         string `toml:"mode"` // "console", "postgres" or "none"
	PostgresHost string `toml:"postgres_host"`
	PostgresPort string `toml:"postgres_port"`
	PostgresUser string `toml:"postgres_user"`
	PostgresPass string `toml:"postgres_password"`
	PostgresDB   string `toml:"postgres_db"`
	PostgresSSL  string `toml:"postgres_sslmode"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	det := arbitrage.DefaultConfig()

	return &Config{
		LogLevel:      "info",
		HTTPPort:      "8080",
		WatchInterval: Duration{10 * time.Second},
		CacheTTL:      Duration{30 * time.Second},
		ReportLimit:   10,

		Arbitrage: ArbitrageConfig{
			MinProfitThreshold:     det.MinProfitThreshold,
			MaxHops:                det.MaxHops,
			BaseAmount:             det.BaseAmount,
			EnableRiskEvaluation:   det.EnableRiskEvaluation,
			EnableBellmanFord:      det.EnableBellmanFord,
			EnableTriangle:         det.EnableTriangle,
			EnableTwoHop:           det.EnableTwoHop,
			EnableExhaustiveDFS:    det.EnableExhaustiveDFS,
			ProfitPruningThreshold: det.ProfitPruningThreshold,
			Parallel:               det.Parallel,
		},
		Risk: det.Risk,

		Storage: StorageConfig{
			Mode:         StorageConsole,
			PostgresHost: "localhost",
			PostgresPort: "5432",
			PostgresUser: "cyclearb",
			PostgresPass: "cyclearb",
			PostgresDB:   "cycle_arb",
			PostgresSSL:  "disable",
		},
	}
}

// LoadFromEnv loads configuration from environment variables over the defaults.
func LoadFromEnv() (*Config, error) {
	cfg := Defaults()
	cfg.applyEnv()

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadFile decodes a TOML file over the defaults, then applies environment
// overrides. Keys absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}

	cfg.applyEnv()

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.HTTPPort = getEnvOrDefault("HTTP_PORT", c.HTTPPort)
	c.EdgesFile = getEnvOrDefault("EDGES_FILE", c.EdgesFile)
	c.WatchInterval.Duration = getDurationOrDefault("WATCH_INTERVAL", c.WatchInterval.Duration)
	c.SanitizeEdges = getBoolOrDefault("SANITIZE_EDGES", c.SanitizeEdges)
	c.CacheTTL.Duration = getDurationOrDefault("CACHE_TTL", c.CacheTTL.Duration)
	c.ReportLimit = getIntOrDefault("REPORT_LIMIT", c.ReportLimit)

	a := &c.Arbitrage
	a.MinProfitThreshold = getFloat64OrDefault("ARB_MIN_PROFIT_THRESHOLD", a.MinProfitThreshold)
	a.MaxHops = getIntOrDefault("ARB_MAX_HOPS", a.MaxHops)
	a.BaseAmount = getFloat64OrDefault("ARB_BASE_AMOUNT", a.BaseAmount)
	a.EnableRiskEvaluation = getBoolOrDefault("ARB_ENABLE_RISK_EVALUATION", a.EnableRiskEvaluation)
	a.EnableBellmanFord = getBoolOrDefault("ARB_ENABLE_BELLMAN_FORD", a.EnableBellmanFord)
	a.EnableTriangle = getBoolOrDefault("ARB_ENABLE_TRIANGLE", a.EnableTriangle)
	a.EnableTwoHop = getBoolOrDefault("ARB_ENABLE_TWO_HOP", a.EnableTwoHop)
	a.EnableExhaustiveDFS = getBoolOrDefault("ARB_ENABLE_EXHAUSTIVE_DFS", a.EnableExhaustiveDFS)
	a.ProfitPruningThreshold = getFloat64OrDefault("ARB_PROFIT_PRUNING_THRESHOLD", a.ProfitPruningThreshold)
	a.Parallel = getBoolOrDefault("ARB_PARALLEL", a.Parallel)

	r := &c.Risk
	r.LowRiskThreshold = getFloat64OrDefault("RISK_LOW_THRESHOLD", r.LowRiskThreshold)
	r.MediumRiskThreshold = getFloat64OrDefault("RISK_MEDIUM_THRESHOLD", r.MediumRiskThreshold)
	r.MaxAcceptableSlippage = getFloat64OrDefault("RISK_MAX_ACCEPTABLE_SLIPPAGE", r.MaxAcceptableSlippage)
	r.MaxGasCostRatio = getFloat64OrDefault("RISK_MAX_GAS_COST_RATIO", r.MaxGasCostRatio)
	r.MinConfidenceThreshold = getFloat64OrDefault("RISK_MIN_CONFIDENCE_THRESHOLD", r.MinConfidenceThreshold)
	r.MinProfitThreshold = getFloat64OrDefault("RISK_MIN_PROFIT_THRESHOLD", r.MinProfitThreshold)
	r.Weights.Slippage = getFloat64OrDefault("RISK_WEIGHT_SLIPPAGE", r.Weights.Slippage)
	r.Weights.Gas = getFloat64OrDefault("RISK_WEIGHT_GAS", r.Weights.Gas)
	r.Weights.Complexity = getFloat64OrDefault("RISK_WEIGHT_COMPLEXITY", r.Weights.Complexity)
	r.DefaultGasPerHop = getFloat64OrDefault("RISK_DEFAULT_GAS_PER_HOP", r.DefaultGasPerHop)
	r.DefaultSlippagePerHop = getFloat64OrDefault("RISK_DEFAULT_SLIPPAGE_PER_HOP", r.DefaultSlippagePerHop)

	s := &c.Storage
	s.Mode = getEnvOrDefault("STORAGE_MODE", s.Mode)
	s.PostgresHost = getEnvOrDefault("POSTGRES_HOST", s.PostgresHost)
	s.PostgresPort = getEnvOrDefault("POSTGRES_PORT", s.PostgresPort)
	s.PostgresUser = getEnvOrDefault("POSTGRES_USER", s.PostgresUser)
	s.PostgresPass = getEnvOrDefault("POSTGRES_PASSWORD", s.PostgresPass)
	s.PostgresDB = getEnvOrDefault("POSTGRES_DB", s.PostgresDB)
	s.PostgresSSL = getEnvOrDefault("POSTGRES_SSLMODE", s.PostgresSSL)
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	var level zapcore.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	if err != nil {
		return fmt.Errorf("LOG_LEVEL %q is invalid: %w", c.LogLevel, err)
	}

	if c.WatchInterval.Duration < 0 {
		return fmt.Errorf("WATCH_INTERVAL must be non-negative, got %s", c.WatchInterval.Duration)
	}

	if c.CacheTTL.Duration < 0 {
		return fmt.Errorf("CACHE_TTL must be non-negative, got %s", c.CacheTTL.Duration)
	}

	if c.ReportLimit < 0 {
		return fmt.Errorf("REPORT_LIMIT must be non-negative, got %d", c.ReportLimit)
	}

	a := c.Arbitrage
	if a.MaxHops < 2 {
		return fmt.Errorf("ARB_MAX_HOPS must be at least 2, got %d", a.MaxHops)
	}

	if math.IsNaN(a.BaseAmount) || math.IsInf(a.BaseAmount, 0) || a.BaseAmount <= 0 {
		return fmt.Errorf("ARB_BASE_AMOUNT must be a finite positive number, got %v", a.BaseAmount)
	}

	if math.IsNaN(a.MinProfitThreshold) || a.MinProfitThreshold < 0 {
		return fmt.Errorf("ARB_MIN_PROFIT_THRESHOLD must be non-negative, got %v", a.MinProfitThreshold)
	}

	if math.IsNaN(a.ProfitPruningThreshold) {
		return fmt.Errorf("ARB_PROFIT_PRUNING_THRESHOLD cannot be NaN")
	}

	err = c.Risk.Validate()
	if err != nil {
		return fmt.Errorf("risk config: %w", err)
	}

	switch c.Storage.Mode {
	case StorageConsole, StoragePostgres, StorageNone:
	default:
		return fmt.Errorf("STORAGE_MODE must be 'console', 'postgres' or 'none', got %q", c.Storage.Mode)
	}

	return nil
}

// Detector converts the arbitrage and risk settings into a detector configuration.
func (c *Config) Detector(logger *zap.Logger) arbitrage.Config {
	a := c.Arbitrage
	return arbitrage.Config{
		MinProfitThreshold:     a.MinProfitThreshold,
		MaxHops:                a.MaxHops,
		BaseAmount:             a.BaseAmount,
		EnableRiskEvaluation:   a.EnableRiskEvaluation,
		EnableBellmanFord:      a.EnableBellmanFord,
		EnableTriangle:         a.EnableTriangle,
		EnableTwoHop:           a.EnableTwoHop,
		EnableExhaustiveDFS:    a.EnableExhaustiveDFS,
		ProfitPruningThreshold: a.ProfitPruningThreshold,
		Parallel:               a.Parallel,
		Risk:                   c.Risk,
		Logger:                 logger,
	}
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
