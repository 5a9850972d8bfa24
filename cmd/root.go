package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/mselser95/solana-cycle-arb/internal/edgefile"
	"github.com/mselser95/solana-cycle-arb/pkg/config"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "cycle-arb",
	Short: "Cyclic token arbitrage detector",
	Long: `Cyclic token arbitrage detector for quoted token swaps.

Reads quoted edges (token A -> token B at a price ratio, with fees and
slippage), builds a directed token graph with -log(ratio) weights, and
searches it for negative-weight cycles with Bellman-Ford, triangle, two-hop
and bounded DFS detectors. Surviving cycles are risk-scored and ranked.

Configuration comes from an optional TOML file (--config), then environment
variables (a .env file in the working directory is loaded first).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
}

// loadConfig reads --config when given, otherwise the environment, and applies
// the --log-level override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level, _ := cmd.Flags().GetString("log-level")
	if level != "" {
		cfg.LogLevel = level
	}

	return cfg, nil
}

// readEdges decodes edges from path, or from in when path is "-".
func readEdges(path string, in io.Reader) ([]types.Edge, error) {
	if path == "-" {
		return edgefile.Decode(in)
	}
	return edgefile.Load(path)
}
