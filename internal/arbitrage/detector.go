package arbitrage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/solana-cycle-arb/internal/graph"
	"github.com/mselser95/solana-cycle-arb/internal/risk"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Storage is the interface for recording detection runs.
type Storage interface {
	StoreRun(ctx context.Context, report *Report) error
	Close() error
}

// Detector runs the enabled search algorithms over a graph, merges their
// results, and applies risk evaluation. It is the only entry point callers use.
type Detector struct {
	config     Config
	logger     *zap.Logger
	builder    *graph.Builder
	factory    *Factory
	algorithms []Algorithm
	evaluator  *risk.Evaluator
}

// New creates a new arbitrage detector.
func New(cfg Config) (*Detector, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate detector config: %w", err)
	}

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	d := &Detector{
		config:  cfg,
		logger:  cfg.Logger,
		builder: graph.NewBuilder(cfg.Logger),
		factory: NewFactory(cfg.BaseAmount, cfg.MaxHops, cfg.Logger),
	}

	if cfg.EnableBellmanFord {
		d.algorithms = append(d.algorithms, NewBellmanFord(cfg, d.factory))
	}
	if cfg.EnableTriangle {
		d.algorithms = append(d.algorithms, NewTriangle(cfg, d.factory))
	}
	if cfg.EnableTwoHop {
		d.algorithms = append(d.algorithms, NewTwoHop(cfg, d.factory))
	}
	if cfg.EnableExhaustiveDFS {
		d.algorithms = append(d.algorithms, NewExhaustiveSearch(cfg, d.factory))
	}

	if cfg.EnableRiskEvaluation {
		d.evaluator = risk.NewEvaluator(cfg.Risk, cfg.Logger)
	}

	return d, nil
}

// Config returns the detector configuration.
func (d *Detector) Config() Config {
	return d.config
}

// Builder returns the graph builder used by DetectEdges.
func (d *Detector) Builder() *graph.Builder {
	return d.builder
}

// Algorithms returns the names of the enabled algorithms in run order.
func (d *Detector) Algorithms() []string {
	names := make([]string, len(d.algorithms))
	for i, alg := range d.algorithms {
		names[i] = alg.Name()
	}
	return names
}

// DetectEdges validates edges, builds the graph and runs detection.
// Validation errors are returned; algorithm failures are recorded in the report.
func (d *Detector) DetectEdges(edges []types.Edge) (*Report, error) {
	g, err := d.builder.Build(edges)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	return d.Detect(g), nil
}

type algorithmRun struct {
	opps     []*types.Opportunity
	stats    *SearchStats
	duration time.Duration
	err      *AlgorithmError
}

// Detect runs detection over g. It always returns a report, possibly empty.
func (d *Detector) Detect(g *graph.Graph) *Report {
	start := time.Now()
	report := &Report{
		ID:            uuid.New().String(),
		StartedAt:     start,
		RiskEvaluated: d.evaluator != nil,
		Opportunities: []*types.Opportunity{},
	}

	if g == nil || g.NodeCount() == 0 {
		d.logger.Warn("detection-skipped-empty-graph", zap.String("run-id", report.ID))
		report.Duration = time.Since(start)
		return report
	}
	report.Graph = g.Stats()

	runs := d.runAlgorithms(g)

	var candidates []*types.Opportunity
	for i, alg := range d.algorithms {
		run := runs[i]
		result := AlgorithmResult{
			Name:     alg.Name(),
			Found:    len(run.opps),
			Duration: run.duration,
		}
		if run.err != nil {
			result.Error = run.err.Error()
			report.Errors = append(report.Errors, run.err)
		}
		report.Algorithms = append(report.Algorithms, result)
		candidates = append(candidates, run.opps...)
		if run.stats != nil {
			report.SearchStats = run.stats
		}
	}
	report.Candidates = len(candidates)

	ranked := dedupeAndRank(candidates)
	report.Unique = len(ranked)

	if d.evaluator != nil && len(ranked) > 0 {
		kept, evals := d.applyRisk(g, ranked)
		summary := risk.Summarize(evals)
		report.RiskSummary = &summary
		report.RiskFiltered = len(ranked) - len(kept)
		ranked = kept
	}

	report.Opportunities = ranked
	report.Duration = time.Since(start)

	DetectionDurationSeconds.Observe(report.Duration.Seconds())
	OpportunitiesReturnedTotal.Add(float64(len(ranked)))
	for _, opp := range ranked {
		OpportunityProfitBPS.Observe(opp.ProfitRatio * 10000)
	}

	d.logger.Info("detection-complete",
		zap.String("run-id", report.ID),
		zap.Int("nodes", report.Graph.Nodes),
		zap.Int("edges", report.Graph.Edges),
		zap.Int("candidates", report.Candidates),
		zap.Int("unique", report.Unique),
		zap.Int("risk-filtered", report.RiskFiltered),
		zap.Int("opportunities", len(ranked)),
		zap.Int("algorithm-failures", len(report.Errors)),
		zap.Duration("duration", report.Duration))

	return report
}

// runAlgorithms runs every enabled algorithm, concurrently when configured.
// Results are slotted by algorithm position so merge order never depends on scheduling.
func (d *Detector) runAlgorithms(g *graph.Graph) []algorithmRun {
	runs := make([]algorithmRun, len(d.algorithms))

	if !d.config.Parallel {
		for i, alg := range d.algorithms {
			runs[i] = d.runAlgorithm(alg, g)
		}
		return runs
	}

	var eg errgroup.Group
	for i, alg := range d.algorithms {
		i, alg := i, alg
		eg.Go(func() error {
			runs[i] = d.runAlgorithm(alg, g)
			return nil
		})
	}
	_ = eg.Wait()

	return runs
}

// runAlgorithm runs one algorithm, converting errors and panics into an AlgorithmError.
func (d *Detector) runAlgorithm(alg Algorithm, g *graph.Graph) (run algorithmRun) {
	start := time.Now()
	name := alg.Name()

	defer func() {
		if r := recover(); r != nil {
			run.opps = nil
			run.stats = nil
			run.err = &AlgorithmError{Algorithm: name, Err: fmt.Errorf("panic: %v", r)}
		}

		run.duration = time.Since(start)
		AlgorithmDurationSeconds.WithLabelValues(name).Observe(run.duration.Seconds())

		if run.err != nil {
			AlgorithmFailuresTotal.WithLabelValues(name).Inc()
			d.logger.Error("algorithm-failed",
				zap.String("algorithm", name),
				zap.Error(run.err))
			return
		}

		OpportunitiesDetectedTotal.WithLabelValues(name).Add(float64(len(run.opps)))
		d.logger.Debug("algorithm-complete",
			zap.String("algorithm", name),
			zap.Int("opportunities", len(run.opps)),
			zap.Duration("duration", run.duration))
	}()

	var (
		opps []*types.Opportunity
		err  error
	)
	if searcher, ok := alg.(statsSearcher); ok {
		var stats SearchStats
		opps, stats, err = searcher.Search(g)
		run.stats = &stats
	} else {
		opps, err = alg.Detect(g)
	}
	if err != nil {
		run.stats = nil
		var aErr *AlgorithmError
		if !errors.As(err, &aErr) {
			aErr = &AlgorithmError{Algorithm: name, Err: err}
		}
		run.err = aErr
		return run
	}

	run.opps = opps
	return run
}

// dedupeAndRank keeps one opportunity per node set and orders the result by
// (profit ratio, confidence) descending.
func dedupeAndRank(opps []*types.Opportunity) []*types.Opportunity {
	unique := dedupe(opps, nodeSetKey)

	sort.SliceStable(unique, func(i, j int) bool {
		a, b := unique[i], unique[j]
		if a.ProfitRatio != b.ProfitRatio {
			return a.ProfitRatio > b.ProfitRatio
		}
		if a.ConfidenceScore != b.ConfidenceScore {
			return a.ConfidenceScore > b.ConfidenceScore
		}
		return comparePaths(a.Path, b.Path) < 0
	})

	return unique
}

// applyRisk evaluates each opportunity against its path edges, drops AVOID
// recommendations, caps confidence at 1-risk and re-sorts by profit × confidence.
func (d *Detector) applyRisk(g *graph.Graph, opps []*types.Opportunity) ([]*types.Opportunity, []risk.Evaluation) {
	kept := make([]*types.Opportunity, 0, len(opps))
	evals := make([]risk.Evaluation, 0, len(opps))

	for _, opp := range opps {
		ev := d.evaluator.Evaluate(opp, g.PathEdges(opp.Path))
		evals = append(evals, ev)

		if ev.Recommendation == risk.Avoid {
			RiskFilteredTotal.Inc()
			continue
		}

		opp.ConfidenceScore = math.Min(opp.ConfidenceScore, 1.0-ev.RiskScore)
		kept = append(kept, opp)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		si, sj := kept[i].RiskAdjustedScore(), kept[j].RiskAdjustedScore()
		if si != sj {
			return si > sj
		}
		return comparePaths(kept[i].Path, kept[j].Path) < 0
	})

	d.logger.Debug("risk-evaluation-applied",
		zap.Int("evaluated", len(opps)),
		zap.Int("kept", len(kept)))

	return kept, evals
}
