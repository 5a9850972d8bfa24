package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/mselser95/solana-cycle-arb/internal/arbitrage"
	"github.com/mselser95/solana-cycle-arb/internal/pipeline"
	"github.com/mselser95/solana-cycle-arb/internal/storage"
	"github.com/mselser95/solana-cycle-arb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var detectCmd = &cobra.Command{
	Use:   "detect [edges-file]",
	Short: "Run one detection pass over an edge file",
	Long: `Builds the token graph from an edge file (JSON array of edge records, or an
object with an "edges" array), runs every enabled detector and prints the
ranked opportunities.

Pass "-" to read edges from stdin. Use --json for machine-readable output and
--store to also record the run in the configured storage backend.

Example:
  cycle-arb detect edges.json --max-hops 3 --min-profit 0.002`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringP("edges", "e", "", "Edge file (defaults to EDGES_FILE)")
	detectCmd.Flags().BoolP("json", "j", false, "Print the report as JSON")
	detectCmd.Flags().IntP("limit", "n", 0, "Opportunities to print (0 uses REPORT_LIMIT)")
	detectCmd.Flags().Float64("min-profit", 0, "Minimum net profit ratio")
	detectCmd.Flags().Int("max-hops", 0, "Maximum cycle length")
	detectCmd.Flags().Bool("no-risk", false, "Skip risk evaluation")
	detectCmd.Flags().Bool("parallel", false, "Run detectors concurrently")
	detectCmd.Flags().Bool("sanitize", false, "Drop invalid edges instead of failing")
	detectCmd.Flags().Bool("store", false, "Also record the run when STORAGE_MODE is postgres")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	err = applyDetectFlags(cmd, cfg)
	if err != nil {
		return err
	}

	logger, err := config.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	path, _ := cmd.Flags().GetString("edges")
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		path = cfg.EdgesFile
	}
	if path == "" {
		return errors.New("no edge file given (pass a path, --edges or set EDGES_FILE)")
	}

	edges, err := readEdges(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	detector, err := arbitrage.New(cfg.Detector(logger))
	if err != nil {
		return fmt.Errorf("create detector: %w", err)
	}

	pcfg := pipeline.Config{
		Detector: detector,
		Sanitize: cfg.SanitizeEdges,
		Logger:   logger,
	}

	store, _ := cmd.Flags().GetBool("store")
	if store && cfg.Storage.Mode != config.StorageConsole {
		runStorage, storageErr := storage.New(cfg.Storage.Mode, &storage.PostgresConfig{
			Host:     cfg.Storage.PostgresHost,
			Port:     cfg.Storage.PostgresPort,
			User:     cfg.Storage.PostgresUser,
			Password: cfg.Storage.PostgresPass,
			Database: cfg.Storage.PostgresDB,
			SSLMode:  cfg.Storage.PostgresSSL,
		}, logger)
		if storageErr != nil {
			return fmt.Errorf("create storage: %w", storageErr)
		}
		defer runStorage.Close()
		pcfg.Storage = runStorage
	}

	p, err := pipeline.New(pcfg)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	result, err := p.Run(context.Background(), edges)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	for _, d := range result.Dropped {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  dropped edge %d (%s → %s): %v\n", d.Index, d.Edge.From, d.Edge.To, d.Err)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.ReportLimit
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	return writeDetectOutput(cmd.OutOrStdout(), result.Report, limit, asJSON)
}

// applyDetectFlags overrides config values with explicitly set flags.
func applyDetectFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("min-profit") {
		cfg.Arbitrage.MinProfitThreshold, _ = flags.GetFloat64("min-profit")
	}
	if flags.Changed("max-hops") {
		cfg.Arbitrage.MaxHops, _ = flags.GetInt("max-hops")
	}
	if flags.Changed("no-risk") {
		noRisk, _ := flags.GetBool("no-risk")
		cfg.Arbitrage.EnableRiskEvaluation = !noRisk
	}
	if flags.Changed("parallel") {
		cfg.Arbitrage.Parallel, _ = flags.GetBool("parallel")
	}
	if flags.Changed("sanitize") {
		cfg.SanitizeEdges, _ = flags.GetBool("sanitize")
	}

	err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("validate flags: %w", err)
	}
	return nil
}

func writeDetectOutput(w io.Writer, report *arbitrage.Report, limit int, asJSON bool) error {
	if !asJSON {
		return storage.WriteReport(w, report, limit)
	}

	out := *report
	out.Opportunities = report.Top(limit)

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
