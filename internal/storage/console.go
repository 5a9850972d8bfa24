package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mselser95/solana-cycle-arb/internal/arbitrage"
	"go.uber.org/zap"
)

// DefaultReportLimit is the number of opportunities printed per run.
const DefaultReportLimit = 10

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ConsoleStorage implements arbitrage.Storage by pretty-printing each run.
type ConsoleStorage struct {
	logger *zap.Logger
	out    io.Writer
	limit  int
}

// NewConsoleStorage creates a console recorder printing at most limit opportunities per run.
func NewConsoleStorage(logger *zap.Logger, limit int) *ConsoleStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("console-storage-initialized", zap.Int("limit", limit))
	return &ConsoleStorage{
		logger: logger,
		out:    os.Stdout,
		limit:  limit,
	}
}

// StoreRun prints the run header and the top opportunities.
func (c *ConsoleStorage) StoreRun(ctx context.Context, report *arbitrage.Report) error {
	return WriteReport(c.out, report, c.limit)
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}

// WriteReport renders report as a human-readable listing of at most limit
// opportunities (all when limit <= 0).
func WriteReport(w io.Writer, report *arbitrage.Report, limit int) error {
	var b strings.Builder

	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "🔁 CYCLE ARBITRAGE RUN %s\n", shortID(report.ID))
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Time:       %s\n", report.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Duration:   %s\n", report.Duration)
	fmt.Fprintf(&b, "Graph:      %d tokens, %d edges\n", report.Graph.Nodes, report.Graph.Edges)
	fmt.Fprintf(&b, "Candidates: %d (unique %d", report.Candidates, report.Unique)
	if report.RiskEvaluated {
		fmt.Fprintf(&b, ", risk-filtered %d", report.RiskFiltered)
	}
	b.WriteString(")\n")

	for _, alg := range report.Algorithms {
		status := "ok"
		if alg.Error != "" {
			status = "FAILED: " + alg.Error
		}
		fmt.Fprintf(&b, "  %-15s found=%-4d %-12s %s\n", alg.Name, alg.Found, alg.Duration, status)
	}
	b.WriteString(rule + "\n")

	if len(report.Opportunities) == 0 {
		b.WriteString("No arbitrage opportunities found.\n")
		b.WriteString(rule + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	top := report.Top(limit)
	fmt.Fprintf(&b, "💰 TOP %d OF %d OPPORTUNITIES\n", len(top), len(report.Opportunities))
	for i, opp := range top {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.Join(opp.PathSymbols, " → "))
		fmt.Fprintf(&b, "   Profit:     %.4f%% (%.6f SOL)\n", opp.ProfitRatio*100, opp.EstimatedProfitSOL)
		fmt.Fprintf(&b, "   Hops:       %d\n", opp.HopCount)
		fmt.Fprintf(&b, "   Fee:        %.6f SOL\n", opp.TotalFee)
		fmt.Fprintf(&b, "   Confidence: %.2f\n", opp.ConfidenceScore)
		fmt.Fprintf(&b, "   Weight:     %.6f\n", opp.TotalWeight)
	}
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
