package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
)

// ActionStore implements contracts.ActionRepository.
// ⭐ SSOT: 기업 이벤트 저장소는 여기서만
type ActionStore struct {
	pool *pgxpool.Pool
}

// NewActionStore creates a new corporate-action store.
func NewActionStore(pool *pgxpool.Pool) *ActionStore {
	return &ActionStore{pool: pool}
}

// GetByCode retrieves a code's action ledger, date ascending. Rows pass
// through the contracts constructor, so an unknown kind in the table fails
// the load loudly instead of corrupting the adjustment pass.
func (s *ActionStore) GetByCode(ctx context.Context, code string) ([]*contracts.CorporateAction, error) {
	query := `
		SELECT code, action_date, kind, COALESCE(ratio, 0), COALESCE(dividend, 0)
		FROM data.corporate_actions
		WHERE code = $1
		ORDER BY action_date ASC
	`
	rows, err := s.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("query corporate actions for %s: %w", code, err)
	}
	defer rows.Close()

	var actions []*contracts.CorporateAction
	for rows.Next() {
		var (
			rowCode, kind   string
			date            time.Time
			ratio, dividend decimal.Decimal
		)
		if err := rows.Scan(&rowCode, &date, &kind, &ratio, &dividend); err != nil {
			return nil, fmt.Errorf("scan corporate action: %w", err)
		}
		parsed, err := contracts.ParseActionKind(kind)
		if err != nil {
			return nil, err
		}
		action, err := contracts.NewCorporateAction(rowCode, date, parsed, ratio, dividend)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

// Save inserts one action.
func (s *ActionStore) Save(ctx context.Context, action *contracts.CorporateAction) error {
	query := `
		INSERT INTO data.corporate_actions (code, action_date, kind, ratio, dividend)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code, action_date, kind) DO UPDATE SET
			ratio = EXCLUDED.ratio,
			dividend = EXCLUDED.dividend
	`
	_, err := s.pool.Exec(ctx, query, action.Code, action.Date, string(action.Kind), action.Ratio, action.Dividend)
	return err
}
