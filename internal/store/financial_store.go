package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
)

// FinancialStore implements contracts.FinancialRepository. Accounts are kept
// as a JSONB map of canonical keys; normalization happened at ingestion.
// ⭐ SSOT: 재무 데이터 저장소는 여기서만
type FinancialStore struct {
	pool *pgxpool.Pool
}

// NewFinancialStore creates a new financial store.
func NewFinancialStore(pool *pgxpool.Pool) *FinancialStore {
	return &FinancialStore{pool: pool}
}

const financialColumns = `code, fiscal_year, fiscal_period, report_kind, accounts, announced_at, estimated`

// GetByCode retrieves all records for one stock, announced-at ascending.
func (s *FinancialStore) GetByCode(ctx context.Context, code string) ([]*contracts.FinancialRecord, error) {
	query := `
		SELECT ` + financialColumns + `
		FROM data.financials
		WHERE code = $1
		ORDER BY announced_at ASC
	`
	rows, err := s.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("query financials for %s: %w", code, err)
	}
	defer rows.Close()
	return scanFinancials(rows)
}

// GetAll retrieves every record.
func (s *FinancialStore) GetAll(ctx context.Context) ([]*contracts.FinancialRecord, error) {
	query := `
		SELECT ` + financialColumns + `
		FROM data.financials
		ORDER BY code, announced_at ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query financials: %w", err)
	}
	defer rows.Close()
	return scanFinancials(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanFinancials(rows pgxRows) ([]*contracts.FinancialRecord, error) {
	var recs []*contracts.FinancialRecord
	for rows.Next() {
		var (
			code, period, reportKind string
			fiscalYear               int
			accountsJSON             []byte
			announcedAt              time.Time
			estimated                bool
		)
		if err := rows.Scan(&code, &fiscalYear, &period, &reportKind, &accountsJSON, &announcedAt, &estimated); err != nil {
			return nil, fmt.Errorf("scan financial: %w", err)
		}

		accounts := make(map[string]float64)
		if len(accountsJSON) > 0 {
			if err := json.Unmarshal(accountsJSON, &accounts); err != nil {
				return nil, fmt.Errorf("decode accounts for %s: %w", code, err)
			}
		}

		rec, err := contracts.NewFinancialRecord(code, fiscalYear, contracts.FiscalPeriod(period),
			reportKind, accounts, announcedAt, estimated)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Save upserts one record.
func (s *FinancialStore) Save(ctx context.Context, rec *contracts.FinancialRecord) error {
	accountsJSON, err := json.Marshal(rec.Accounts)
	if err != nil {
		return fmt.Errorf("encode accounts for %s: %w", rec.Code, err)
	}

	query := `
		INSERT INTO data.financials (code, fiscal_year, fiscal_period, report_kind, accounts, announced_at, estimated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code, fiscal_year, fiscal_period) DO UPDATE SET
			report_kind = EXCLUDED.report_kind,
			accounts = EXCLUDED.accounts,
			announced_at = EXCLUDED.announced_at,
			estimated = EXCLUDED.estimated
	`
	_, err = s.pool.Exec(ctx, query,
		rec.Code, rec.FiscalYear, string(rec.Period), rec.ReportKind,
		accountsJSON, rec.AnnouncedAt, rec.Estimated,
	)
	return err
}

// SaveBatch upserts multiple records.
func (s *FinancialStore) SaveBatch(ctx context.Context, recs []*contracts.FinancialRecord) error {
	for _, rec := range recs {
		if err := s.Save(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
