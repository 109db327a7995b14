package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pollmap/kr-stock-screener/internal/adjust"
	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/internal/dataset"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

// SnapshotLoader materializes the full in-memory snapshot for a backtest run:
// securities, listing intervals, financial records, and per-code price series
// with adjustment factors already applied. After Load returns, the core needs
// no further I/O.
type SnapshotLoader struct {
	securities *SecurityStore
	financials *FinancialStore
	prices     *PriceStore
	actions    *ActionStore
	log        *logger.Logger
}

// NewSnapshotLoader wires the loader over one pool.
func NewSnapshotLoader(pool *pgxpool.Pool, log *logger.Logger) *SnapshotLoader {
	return &SnapshotLoader{
		securities: NewSecurityStore(pool),
		financials: NewFinancialStore(pool),
		prices:     NewPriceStore(pool),
		actions:    NewActionStore(pool),
		log:        log,
	}
}

// Load reads all tables and runs the adjustment engine per code. Validation
// failures (bad interval, unknown action kind) abort the load: malformed
// static input must never reach a run.
func (l *SnapshotLoader) Load(ctx context.Context) (*dataset.Snapshot, error) {
	secs, err := l.securities.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load securities: %w", err)
	}

	intervals, err := l.securities.GetListingIntervals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load listing intervals: %w", err)
	}

	financials, err := l.financials.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load financials: %w", err)
	}

	bars := make(map[string][]*contracts.PriceBar, len(secs))
	for _, sec := range secs {
		codeBars, err := l.prices.GetByCode(ctx, sec.Code)
		if err != nil {
			return nil, fmt.Errorf("load prices for %s: %w", sec.Code, err)
		}
		if len(codeBars) == 0 {
			continue
		}

		actions, err := l.actions.GetByCode(ctx, sec.Code)
		if err != nil {
			return nil, fmt.Errorf("load actions for %s: %w", sec.Code, err)
		}

		engine := adjust.NewEngine(l.log, actions...)
		bars[sec.Code] = engine.Adjust(codeBars)
	}

	l.log.WithFields(map[string]interface{}{
		"securities": len(secs),
		"intervals":  len(intervals),
		"financials": len(financials),
		"priced":     len(bars),
	}).Info("snapshot loaded")

	return &dataset.Snapshot{
		Securities: secs,
		Intervals:  intervals,
		Financials: financials,
		Bars:       bars,
	}, nil
}
