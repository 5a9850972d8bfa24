package app

import (
	"context"
	"fmt"

	"github.com/mselser95/solana-cycle-arb/internal/arbitrage"
	"github.com/mselser95/solana-cycle-arb/internal/pipeline"
	"github.com/mselser95/solana-cycle-arb/internal/storage"
	"github.com/mselser95/solana-cycle-arb/pkg/cache"
	"github.com/mselser95/solana-cycle-arb/pkg/config"
	"github.com/mselser95/solana-cycle-arb/pkg/healthprobe"
	"github.com/mselser95/solana-cycle-arb/pkg/httpserver"
	"github.com/mselser95/solana-cycle-arb/pkg/websocket"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	edgesFile := cfg.EdgesFile
	if opts.EdgesFile != "" {
		edgesFile = opts.EdgesFile
	}

	// Initialize components
	healthChecker := setupHealthChecker()
	hub := setupHub(logger)

	reportCache, err := setupCache(logger)
	if err != nil {
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	runStorage, err := setupStorage(cfg, logger)
	if err != nil {
		reportCache.Close()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	detector, err := arbitrage.New(cfg.Detector(logger))
	if err != nil {
		reportCache.Close()
		runStorage.Close()
		return nil, fmt.Errorf("setup detector: %w", err)
	}

	p, err := pipeline.New(pipeline.Config{
		Detector:  detector,
		Storage:   runStorage,
		Publisher: hub,
		Health:    healthChecker,
		Cache:     reportCache,
		CacheTTL:  cfg.CacheTTL.Duration,
		Sanitize:  cfg.SanitizeEdges,
		Logger:    logger,
	})
	if err != nil {
		reportCache.Close()
		runStorage.Close()
		return nil, fmt.Errorf("setup pipeline: %w", err)
	}

	httpServer := setupHTTPServer(cfg, logger, healthChecker, p, hub)

	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		hub:           hub,
		reportCache:   reportCache,
		storage:       runStorage,
		pipeline:      p,
		edgesFile:     edgesFile,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupHub(logger *zap.Logger) *websocket.Hub {
	return websocket.NewHub(websocket.Config{Logger: logger})
}

func setupCache(logger *zap.Logger) (*cache.RistrettoCache, error) {
	return cache.NewRistrettoCache(cache.DefaultRistrettoConfig(logger))
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (arbitrage.Storage, error) {
	if cfg.Storage.Mode == config.StoragePostgres {
		return storage.New(storage.ModePostgres, &storage.PostgresConfig{
			Host:     cfg.Storage.PostgresHost,
			Port:     cfg.Storage.PostgresPort,
			User:     cfg.Storage.PostgresUser,
			Password: cfg.Storage.PostgresPass,
			Database: cfg.Storage.PostgresDB,
			SSLMode:  cfg.Storage.PostgresSSL,
		}, logger)
	}

	if cfg.Storage.Mode == config.StorageConsole || cfg.Storage.Mode == "" {
		return storage.NewConsoleStorage(logger, cfg.ReportLimit), nil
	}

	return storage.New(cfg.Storage.Mode, nil, logger)
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	p *pipeline.Pipeline,
	hub *websocket.Hub,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Runner:        p,
		Hub:           hub,
	})
}
