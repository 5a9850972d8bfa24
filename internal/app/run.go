package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mselser95/solana-cycle-arb/internal/edgefile"
	"github.com/mselser95/solana-cycle-arb/internal/pipeline"
	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("http-port", a.cfg.HTTPPort),
		zap.String("edges-file", a.edgesFile),
		zap.Duration("watch-interval", a.cfg.WatchInterval.Duration),
		zap.String("storage-mode", a.cfg.Storage.Mode),
		zap.String("log-level", a.cfg.LogLevel))

	a.startComponents()

	// Mark as ready
	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort))

	// Wait for shutdown signal
	return a.waitForShutdown()
}

func (a *App) startComponents() {
	// Start HTTP server
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)

	a.wg.Add(1)
	go a.runHub()

	if a.edgesFile == "" {
		a.logger.Info("edge-watch-disabled", zap.String("reason", "no edges file configured"))
		return
	}

	a.wg.Add(1)
	go a.watchEdges(a.ctx, a.cfg.WatchInterval.Duration)
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) runHub() {
	defer a.wg.Done()
	err := a.hub.Run(a.ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("websocket-hub-error", zap.Error(err))
	}
}

// RunOnce loads the edges file and runs one detection pass over it.
func (a *App) RunOnce(ctx context.Context) (*pipeline.Result, error) {
	if a.edgesFile == "" {
		return nil, errors.New("no edges file configured")
	}

	edges, err := edgefile.Load(a.edgesFile)
	if err != nil {
		return nil, err
	}

	result, err := a.pipeline.Run(ctx, edges)
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", a.edgesFile, err)
	}
	return result, nil
}

// watchEdges re-runs detection over the edges file on every tick. A zero
// interval runs once. Failed passes are logged and retried on the next tick.
func (a *App) watchEdges(ctx context.Context, interval time.Duration) {
	defer a.wg.Done()

	a.runWatchPass(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runWatchPass(ctx)
		}
	}
}

func (a *App) runWatchPass(ctx context.Context) {
	result, err := a.RunOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		a.logger.Error("edge-watch-pass-failed",
			zap.String("edges-file", a.edgesFile),
			zap.Error(err))
		return
	}

	a.logger.Debug("edge-watch-pass-complete",
		zap.String("run-id", result.Report.ID),
		zap.Bool("cached", result.Cached),
		zap.Int("opportunities", len(result.Report.Opportunities)))
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
