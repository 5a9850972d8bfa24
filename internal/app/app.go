// Package app wires the long-running detection service together.
package app

import (
	"context"
	"sync"

	"github.com/mselser95/solana-cycle-arb/internal/arbitrage"
	"github.com/mselser95/solana-cycle-arb/internal/pipeline"
	"github.com/mselser95/solana-cycle-arb/pkg/cache"
	"github.com/mselser95/solana-cycle-arb/pkg/config"
	"github.com/mselser95/solana-cycle-arb/pkg/healthprobe"
	"github.com/mselser95/solana-cycle-arb/pkg/httpserver"
	"github.com/mselser95/solana-cycle-arb/pkg/websocket"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	hub           *websocket.Hub
	reportCache   *cache.RistrettoCache
	storage       arbitrage.Storage
	pipeline      *pipeline.Pipeline
	edgesFile     string
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	EdgesFile string // Overrides cfg.EdgesFile when set
}

// Pipeline returns the detection pipeline.
func (a *App) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}
