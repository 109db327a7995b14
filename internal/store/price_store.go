package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
)

// PriceStore implements contracts.PriceRepository. Only raw OHLCV is
// persisted; adjusted fields are derived in memory by the adjustment engine
// and recomputed whenever the action ledger changes.
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PriceStore struct {
	pool *pgxpool.Pool
}

// NewPriceStore creates a new price store.
func NewPriceStore(pool *pgxpool.Pool) *PriceStore {
	return &PriceStore{pool: pool}
}

// GetByCodeAndDateRange retrieves raw bars for a code within [from, to].
func (s *PriceStore) GetByCodeAndDateRange(ctx context.Context, code string, from, to time.Time) ([]*contracts.PriceBar, error) {
	query := `
		SELECT code, trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_prices
		WHERE code = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`
	rows, err := s.pool.Query(ctx, query, code, from, to)
	if err != nil {
		return nil, fmt.Errorf("query prices for %s: %w", code, err)
	}
	defer rows.Close()
	return scanBars(rows)
}

// GetByCode retrieves all raw bars for a code, date ascending.
func (s *PriceStore) GetByCode(ctx context.Context, code string) ([]*contracts.PriceBar, error) {
	query := `
		SELECT code, trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_prices
		WHERE code = $1
		ORDER BY trade_date ASC
	`
	rows, err := s.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("query prices for %s: %w", code, err)
	}
	defer rows.Close()
	return scanBars(rows)
}

func scanBars(rows pgxRows) ([]*contracts.PriceBar, error) {
	var bars []*contracts.PriceBar
	for rows.Next() {
		var bar contracts.PriceBar
		if err := rows.Scan(&bar.Code, &bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("scan price bar: %w", err)
		}
		bars = append(bars, &bar)
	}
	return bars, rows.Err()
}

// Save upserts one bar's raw fields.
func (s *PriceStore) Save(ctx context.Context, bar *contracts.PriceBar) error {
	query := `
		INSERT INTO data.daily_prices (code, trade_date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`
	_, err := s.pool.Exec(ctx, query, bar.Code, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	return err
}

// SaveBatch upserts multiple bars.
func (s *PriceStore) SaveBatch(ctx context.Context, bars []*contracts.PriceBar) error {
	for _, bar := range bars {
		if err := s.Save(ctx, bar); err != nil {
			return err
		}
	}
	return nil
}
