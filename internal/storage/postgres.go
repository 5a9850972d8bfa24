package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"github.com/mselser95/solana-cycle-arb/internal/arbitrage"
	"go.uber.org/zap"
)

// Schema creates the run history tables.
const Schema = `
CREATE TABLE IF NOT EXISTS detection_runs (
	id                 UUID PRIMARY KEY,
	started_at         TIMESTAMPTZ NOT NULL,
	duration_ms        DOUBLE PRECISION NOT NULL,
	total_nodes        INTEGER NOT NULL,
	total_edges        INTEGER NOT NULL,
	candidates         INTEGER NOT NULL,
	unique_cycles      INTEGER NOT NULL,
	risk_filtered      INTEGER NOT NULL,
	opportunity_count  INTEGER NOT NULL,
	failed_algorithms  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS detection_opportunities (
	run_id               UUID NOT NULL REFERENCES detection_runs(id) ON DELETE CASCADE,
	rank                 INTEGER NOT NULL,
	path                 JSONB NOT NULL,
	path_symbols         TEXT NOT NULL,
	profit_ratio         DOUBLE PRECISION NOT NULL,
	estimated_profit_sol DOUBLE PRECISION NOT NULL,
	total_weight         DOUBLE PRECISION NOT NULL,
	total_fee            DOUBLE PRECISION NOT NULL,
	hop_count            INTEGER NOT NULL,
	confidence_score     DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, rank)
);
`

const insertRunQuery = `
		INSERT INTO detection_runs (
			id, started_at, duration_ms, total_nodes, total_edges,
			candidates, unique_cycles, risk_filtered, opportunity_count, failed_algorithms
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

const insertOpportunityQuery = `
		INSERT INTO detection_opportunities (
			run_id, rank, path, path_symbols, profit_ratio, estimated_profit_sol,
			total_weight, total_fee, hop_count, confidence_score
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

// PostgresStorage implements arbitrage.Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage connects to PostgreSQL and ensures the schema exists.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Test connection
	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}

	err = p.EnsureSchema(context.Background())
	if err != nil {
		db.Close()
		return nil, err
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return p, nil
}

// EnsureSchema creates the run history tables if they do not exist.
func (p *PostgresStorage) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, Schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// StoreRun writes the run aggregate and its ranked opportunities in one transaction.
func (p *PostgresStorage) StoreRun(ctx context.Context, report *arbitrage.Report) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, insertRunQuery,
		report.ID,
		report.StartedAt,
		float64(report.Duration.Microseconds())/1000,
		report.Graph.Nodes,
		report.Graph.Edges,
		report.Candidates,
		report.Unique,
		report.RiskFiltered,
		len(report.Opportunities),
		failedAlgorithms(report),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, opp := range report.Opportunities {
		path, mErr := json.Marshal(opp.Path)
		if mErr != nil {
			err = fmt.Errorf("marshal path: %w", mErr)
			return err
		}

		_, err = tx.ExecContext(ctx, insertOpportunityQuery,
			report.ID,
			i+1,
			string(path),
			strings.Join(opp.PathSymbols, "→"),
			opp.ProfitRatio,
			opp.EstimatedProfitSOL,
			opp.TotalWeight,
			opp.TotalFee,
			opp.HopCount,
			opp.ConfidenceScore,
		)
		if err != nil {
			return fmt.Errorf("insert opportunity %d: %w", i+1, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	p.logger.Debug("detection-run-stored",
		zap.String("run-id", report.ID),
		zap.Int("opportunities", len(report.Opportunities)))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}

func failedAlgorithms(report *arbitrage.Report) string {
	names := make([]string, 0, len(report.Algorithms))
	for _, alg := range report.Algorithms {
		if alg.Error != "" {
			names = append(names, alg.Name)
		}
	}
	return strings.Join(names, ",")
}
