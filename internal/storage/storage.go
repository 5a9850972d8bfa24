package storage

import (
	"context"
	"fmt"

	"github.com/mselser95/solana-cycle-arb/internal/arbitrage"
	"go.uber.org/zap"
)

// Storage modes accepted by New.
const (
	ModeConsole  = "console"
	ModePostgres = "postgres"
	ModeNone     = "none"
)

// New creates the run recorder for mode. pg is only consulted for ModePostgres.
func New(mode string, pg *PostgresConfig, logger *zap.Logger) (arbitrage.Storage, error) {
	switch mode {
	case ModeConsole, "":
		return NewConsoleStorage(logger, DefaultReportLimit), nil
	case ModePostgres:
		if pg == nil {
			return nil, fmt.Errorf("postgres storage requires configuration")
		}
		pg.Logger = logger
		return NewPostgresStorage(pg)
	case ModeNone:
		return NopStorage{}, nil
	default:
		return nil, fmt.Errorf("unknown storage mode %q", mode)
	}
}

// NopStorage discards every run.
type NopStorage struct{}

// StoreRun does nothing.
func (NopStorage) StoreRun(ctx context.Context, report *arbitrage.Report) error {
	return nil
}

// Close does nothing.
func (NopStorage) Close() error {
	return nil
}
