package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mselser95/solana-cycle-arb/internal/graph"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var inspectCmd = &cobra.Command{
	Use:   "inspect <edges-file>",
	Short: "Show graph statistics for an edge file",
	Long: `Validates an edge file, builds the token graph and prints its shape
(nodes, edges, reciprocal pairs) followed by a table of edges.

Example:
  cycle-arb inspect edges.json --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntP("limit", "n", 10, "Edges to list (0 lists all)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	edges, err := readEdges(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	g, err := graph.Build(edges)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	return writeGraphSummary(cmd.OutOrStdout(), g, limit)
}

func writeGraphSummary(w io.Writer, g *graph.Graph, limit int) error {
	stats := g.Stats()

	fmt.Fprintf(w, "📊 TOKEN GRAPH\n")
	fmt.Fprintf(w, "Nodes:                %d\n", stats.Nodes)
	fmt.Fprintf(w, "Edges:                %d\n", stats.Edges)
	fmt.Fprintf(w, "Bidirectional pairs:  %d\n", stats.BidirectionalPairs)
	fmt.Fprintf(w, "Unidirectional edges: %d\n\n", stats.UnidirectionalEdges)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFROM\tTO\tRATIO\tWEIGHT\tFEE\tSLIPPAGE\tIMPACT")
	for _, e := range g.EdgeSummaries(limit) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.6f\t%.6f\t%.6f\t%dbps\t%.4f%%\n",
			e.Index, e.From, e.To, e.PriceRatio, e.Weight, e.TotalFee, e.SlippageBps, e.PriceImpactPct)
	}
	err := tw.Flush()
	if err != nil {
		return fmt.Errorf("write edge table: %w", err)
	}

	if limit > 0 && stats.Edges > limit {
		fmt.Fprintf(w, "... %d more\n", stats.Edges-limit)
	}
	return nil
}
