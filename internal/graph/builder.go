package graph

import (
	"errors"
	"sync"
	"time"

	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"go.uber.org/zap"
)

// BuildRecord describes one successful graph build.
type BuildRecord struct {
	Timestamp   time.Time
	InputEdges  int
	Nodes       int
	GraphEdges  int
	Overwritten int
}

// Builder validates edge records and constructs graphs.
type Builder struct {
	logger  *zap.Logger
	mu      sync.Mutex
	history []BuildRecord
}

// NewBuilder creates a graph builder.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build validates every record and, only if all pass, constructs the graph.
// A second edge for an already-seen ordered pair replaces the first.
func (b *Builder) Build(edges []types.Edge) (*Graph, error) {
	if len(edges) == 0 {
		GraphBuildsTotal.WithLabelValues("rejected").Inc()
		return nil, types.EmptyEdgesError()
	}

	for i := range edges {
		err := edges[i].Validate()
		if err != nil {
			var vErr *types.ValidationError
			if errors.As(err, &vErr) {
				vErr.Index = i
				EdgesRejectedTotal.WithLabelValues(vErr.Field).Inc()
			}
			GraphBuildsTotal.WithLabelValues("rejected").Inc()
			b.logger.Warn("graph-build-rejected",
				zap.Int("edge-index", i),
				zap.Error(err))
			return nil, err
		}
	}

	g := newGraph(len(edges))
	overwritten := 0
	for _, e := range edges {
		if g.addEdge(e) {
			overwritten++
			b.logger.Debug("duplicate-edge-overwritten",
				zap.String("from", string(e.From)),
				zap.String("to", string(e.To)))
		}
	}

	if overwritten > 0 {
		DuplicateEdgesTotal.Add(float64(overwritten))
	}
	GraphBuildsTotal.WithLabelValues("ok").Inc()
	GraphNodes.Set(float64(g.NodeCount()))
	GraphEdges.Set(float64(g.EdgeCount()))

	record := BuildRecord{
		Timestamp:   time.Now(),
		InputEdges:  len(edges),
		Nodes:       g.NodeCount(),
		GraphEdges:  g.EdgeCount(),
		Overwritten: overwritten,
	}
	b.mu.Lock()
	b.history = append(b.history, record)
	b.mu.Unlock()

	b.logger.Info("graph-built",
		zap.Int("nodes", record.Nodes),
		zap.Int("edges", record.GraphEdges),
		zap.Int("overwritten", overwritten))

	return g, nil
}

// History returns a copy of the build records, oldest first.
func (b *Builder) History() []BuildRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]BuildRecord, len(b.history))
	copy(out, b.history)
	return out
}

// Build constructs a graph with a throwaway builder.
func Build(edges []types.Edge) (*Graph, error) {
	return NewBuilder(nil).Build(edges)
}
