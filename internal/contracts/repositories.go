package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만
//
// Repositories are the input collaborators of the core: they materialize the
// immutable snapshot tables before a run. The core itself never touches them
// mid-run.

// SecurityRepository manages stock identity and listing-interval data.
type SecurityRepository interface {
	GetAll(ctx context.Context) ([]*Security, error)
	GetListingIntervals(ctx context.Context) ([]*ListingInterval, error)
	Save(ctx context.Context, sec *Security) error
	SaveInterval(ctx context.Context, interval *ListingInterval) error
}

// FinancialRepository manages fiscal-period financial records.
type FinancialRepository interface {
	GetByCode(ctx context.Context, code string) ([]*FinancialRecord, error)
	GetAll(ctx context.Context) ([]*FinancialRecord, error)
	Save(ctx context.Context, rec *FinancialRecord) error
	SaveBatch(ctx context.Context, recs []*FinancialRecord) error
}

// PriceRepository manages raw daily price bars.
type PriceRepository interface {
	GetByCodeAndDateRange(ctx context.Context, code string, from, to time.Time) ([]*PriceBar, error)
	GetByCode(ctx context.Context, code string) ([]*PriceBar, error)
	Save(ctx context.Context, bar *PriceBar) error
	SaveBatch(ctx context.Context, bars []*PriceBar) error
}

// ActionRepository manages corporate-action ledgers.
type ActionRepository interface {
	GetByCode(ctx context.Context, code string) ([]*CorporateAction, error)
	Save(ctx context.Context, action *CorporateAction) error
}
