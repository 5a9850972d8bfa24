package cmd

import (
	"fmt"

	"github.com/mselser95/solana-cycle-arb/internal/app"
	"github.com/mselser95/solana-cycle-arb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the detection service",
	Long: `Starts the detection service, which will:
1. Serve /health, /ready and /metrics
2. Accept edge batches on POST /api/detect
3. Re-run detection over EDGES_FILE every WATCH_INTERVAL, if set
4. Stream every report to WebSocket subscribers on /ws`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("edges", "e", "", "Edge file to watch (overrides EDGES_FILE)")
	serveCmd.Flags().StringP("port", "p", "", "HTTP port (overrides HTTP_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetString("port")
	if port != "" {
		cfg.HTTPPort = port
	}

	// Create logger
	logger, err := config.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	edges, _ := cmd.Flags().GetString("edges")

	application, err := app.New(cfg, logger, &app.Options{EdgesFile: edges})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Run app
	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
