// Package store implements the input collaborators over PostgreSQL. It
// materializes the immutable snapshot tables before a backtest run; the core
// performs no I/O of its own.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
)

// SecurityStore implements contracts.SecurityRepository.
// ⭐ SSOT: 종목/상장이력 저장소는 여기서만
type SecurityStore struct {
	pool *pgxpool.Pool
}

// NewSecurityStore creates a new security store.
func NewSecurityStore(pool *pgxpool.Pool) *SecurityStore {
	return &SecurityStore{pool: pool}
}

// GetAll retrieves every known security, delisted ones included. Excluding
// them here would reintroduce survivorship bias at the source.
func (s *SecurityStore) GetAll(ctx context.Context) ([]*contracts.Security, error) {
	query := `
		SELECT code, name, COALESCE(market, ''), COALESCE(sector, ''), COALESCE(listed_at, 'epoch'::date)
		FROM data.securities
		ORDER BY code
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query securities: %w", err)
	}
	defer rows.Close()

	var secs []*contracts.Security
	for rows.Next() {
		var sec contracts.Security
		var listedAt time.Time
		if err := rows.Scan(&sec.Code, &sec.Name, &sec.Market, &sec.Sector, &listedAt); err != nil {
			return nil, fmt.Errorf("scan security: %w", err)
		}
		if listedAt.Year() > 1970 {
			sec.ListedAt = listedAt
		}
		secs = append(secs, &sec)
	}
	return secs, rows.Err()
}

// GetListingIntervals retrieves all listed/delisted spans. Rows are validated
// through the contracts constructor so malformed intervals fail the load, not
// the run.
func (s *SecurityStore) GetListingIntervals(ctx context.Context) ([]*contracts.ListingInterval, error) {
	query := `
		SELECT code, listed_at, delisted_at, COALESCE(reason, '')
		FROM data.listing_intervals
		ORDER BY code, listed_at
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query listing intervals: %w", err)
	}
	defer rows.Close()

	var intervals []*contracts.ListingInterval
	for rows.Next() {
		var (
			code       string
			listedAt   time.Time
			delistedAt *time.Time
			reason     string
		)
		if err := rows.Scan(&code, &listedAt, &delistedAt, &reason); err != nil {
			return nil, fmt.Errorf("scan listing interval: %w", err)
		}
		interval, err := contracts.NewListingInterval(code, listedAt, delistedAt, reason)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, interval)
	}
	return intervals, rows.Err()
}

// Save upserts a security.
func (s *SecurityStore) Save(ctx context.Context, sec *contracts.Security) error {
	query := `
		INSERT INTO data.securities (code, name, market, sector, listed_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, 'epoch'::date))
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			market = EXCLUDED.market,
			sector = EXCLUDED.sector,
			listed_at = EXCLUDED.listed_at
	`
	_, err := s.pool.Exec(ctx, query, sec.Code, sec.Name, sec.Market, sec.Sector, sec.ListedAt)
	return err
}

// SaveInterval inserts a listing interval.
func (s *SecurityStore) SaveInterval(ctx context.Context, interval *contracts.ListingInterval) error {
	query := `
		INSERT INTO data.listing_intervals (code, listed_at, delisted_at, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code, listed_at) DO UPDATE SET
			delisted_at = EXCLUDED.delisted_at,
			reason = EXCLUDED.reason
	`
	_, err := s.pool.Exec(ctx, query, interval.Code, interval.ListedAt, interval.DelistedAt, interval.Reason)
	return err
}
