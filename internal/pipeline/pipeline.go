// Package pipeline glues edge input to detection, run recording and publishing.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/solana-cycle-arb/internal/arbitrage"
	"github.com/mselser95/solana-cycle-arb/internal/edgefile"
	"github.com/mselser95/solana-cycle-arb/pkg/cache"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"github.com/mselser95/solana-cycle-arb/pkg/websocket"
	"go.uber.org/zap"
)

// DefaultCacheTTL bounds how long an identical edge batch reuses a report.
const DefaultCacheTTL = 30 * time.Second

// Publisher broadcasts detection reports.
type Publisher interface {
	Publish(msgType string, payload any) error
}

// RunRecorder tracks the outcome of the latest run for health reporting.
type RunRecorder interface {
	RecordRun(runID string, opportunities int, err error)
}

// Config holds pipeline dependencies. Only Detector is required.
type Config struct {
	Detector  *arbitrage.Detector
	Storage   arbitrage.Storage
	Publisher Publisher
	Health    RunRecorder
	Cache     cache.Cache
	CacheTTL  time.Duration
	// Sanitize drops invalid edges before building instead of failing the run.
	Sanitize bool
	Logger   *zap.Logger
}

// Pipeline runs build → detect → record → publish for one edge batch at a time.
type Pipeline struct {
	detector  *arbitrage.Detector
	storage   arbitrage.Storage
	publisher Publisher
	health    RunRecorder
	cache     cache.Cache
	cacheTTL  time.Duration
	sanitize  bool
	logger    *zap.Logger
	configKey string

	mu     sync.RWMutex
	latest *arbitrage.Report
}

// Result is the outcome of one pipeline run.
type Result struct {
	Report  *arbitrage.Report
	Cached  bool
	Dropped []edgefile.Dropped
}

// New creates a pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Detector == nil {
		return nil, errors.New("pipeline requires a detector")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	detectorCfg := cfg.Detector.Config()
	detectorCfg.Logger = nil

	return &Pipeline{
		detector:  cfg.Detector,
		storage:   cfg.Storage,
		publisher: cfg.Publisher,
		health:    cfg.Health,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		sanitize:  cfg.Sanitize,
		logger:    cfg.Logger,
		configKey: fmt.Sprintf("%+v", detectorCfg),
	}, nil
}

// Run processes one edge batch. Invalid input is returned as an error wrapping
// *types.ValidationError; storage and publish failures are logged and do not
// fail the run.
func (p *Pipeline) Run(ctx context.Context, edges []types.Edge) (*Result, error) {
	err := ctx.Err()
	if err != nil {
		RunsTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	result := &Result{}
	if p.sanitize {
		edges, result.Dropped = edgefile.Sanitize(edges)
		p.logDropped(result.Dropped)
	}

	key, keyErr := p.fingerprint(edges)
	if keyErr != nil {
		p.logger.Debug("fingerprint-skipped", zap.Error(keyErr))
	}

	if p.cache != nil && key != "" {
		if v, found := p.cache.Get(key); found {
			if report, ok := v.(*arbitrage.Report); ok {
				RunsTotal.WithLabelValues("cached").Inc()
				p.setLatest(report)
				p.logger.Debug("pipeline-cache-hit", zap.String("run-id", report.ID))
				result.Report = report
				result.Cached = true
				return result, nil
			}
		}
	}

	report, err := p.detector.DetectEdges(edges)
	if err != nil {
		RunsTotal.WithLabelValues("invalid").Inc()
		if p.health != nil {
			p.health.RecordRun("", 0, err)
		}
		return nil, err
	}
	RunsTotal.WithLabelValues("detected").Inc()
	result.Report = report

	if p.cache != nil && key != "" {
		p.cache.Set(key, report, p.cacheTTL)
	}
	p.setLatest(report)

	var storeErr error
	if p.storage != nil {
		storeErr = p.storage.StoreRun(ctx, report)
		if storeErr != nil {
			StoreFailuresTotal.Inc()
			p.logger.Error("store-run-failed",
				zap.String("run-id", report.ID),
				zap.Error(storeErr))
		}
	}

	if p.publisher != nil {
		pubErr := p.publisher.Publish(websocket.MessageTypeDetectionReport, report)
		if pubErr != nil {
			PublishFailuresTotal.Inc()
			p.logger.Warn("publish-report-failed",
				zap.String("run-id", report.ID),
				zap.Error(pubErr))
		}
	}

	if p.health != nil {
		p.health.RecordRun(report.ID, len(report.Opportunities), storeErr)
	}

	return result, nil
}

// Latest returns the most recent report, if any run has completed.
func (p *Pipeline) Latest() (*arbitrage.Report, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.latest != nil
}

// Detector returns the detector the pipeline runs.
func (p *Pipeline) Detector() *arbitrage.Detector {
	return p.detector
}

func (p *Pipeline) setLatest(report *arbitrage.Report) {
	p.mu.Lock()
	p.latest = report
	p.mu.Unlock()
}

// fingerprint hashes the edge batch together with the detector configuration.
func (p *Pipeline) fingerprint(edges []types.Edge) (string, error) {
	data, err := json.Marshal(edges)
	if err != nil {
		return "", fmt.Errorf("marshal edges: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(p.configKey))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (p *Pipeline) logDropped(dropped []edgefile.Dropped) {
	if len(dropped) == 0 {
		return
	}
	EdgesDroppedTotal.Add(float64(len(dropped)))
	for _, d := range dropped {
		p.logger.Warn("edge-dropped",
			zap.Int("edge-index", d.Index),
			zap.String("from", string(d.Edge.From)),
			zap.String("to", string(d.Edge.To)),
			zap.String("field", d.Err.Field),
			zap.String("reason", d.Err.Reason))
	}
}
