package contracts

import (
	"fmt"
	"time"
)

// FiscalPeriod identifies which report a financial record covers.
type FiscalPeriod string

const (
	PeriodFY FiscalPeriod = "FY" // 사업보고서 (연간)
	Period1Q FiscalPeriod = "1Q"
	Period2Q FiscalPeriod = "2Q"
	Period3Q FiscalPeriod = "3Q"
	Period4Q FiscalPeriod = "4Q"
)

// Valid reports whether p is a known fiscal period tag.
func (p FiscalPeriod) Valid() bool {
	switch p {
	case PeriodFY, Period1Q, Period2Q, Period3Q, Period4Q:
		return true
	}
	return false
}

// IsQuarterly reports whether p is a quarterly tag (1Q–4Q).
func (p FiscalPeriod) IsQuarterly() bool {
	return p.Valid() && p != PeriodFY
}

// Canonical account keys. Source-specific aliases are resolved to these once,
// at ingestion (internal/ingest), so lookups never string-match variants.
const (
	AccountRevenue          = "revenue"           // 매출액
	AccountCostOfSales      = "cost_of_sales"     // 매출원가
	AccountOperatingIncome  = "operating_income"  // 영업이익
	AccountNetIncome        = "net_income"        // 당기순이익
	AccountTotalAssets      = "total_assets"      // 자산총계
	AccountTotalLiabilities = "total_liabilities" // 부채총계
	AccountTotalEquity      = "total_equity"      // 자본총계
	AccountCurrentAssets    = "current_assets"    // 유동자산
	AccountCurrentLiabs     = "current_liabilities"
	AccountCash             = "cash" // 현금및현금성자산
	AccountOCF              = "ocf"  // 영업현금흐름
	AccountFCF              = "fcf"  // 잉여현금흐름
	AccountShares           = "shares_outstanding"
)

// FinancialRecord is one fiscal-period statement for one stock.
// Immutable once stored; never deleted within a backtest run.
type FinancialRecord struct {
	Code        string             `json:"code"`
	FiscalYear  int                `json:"fiscal_year"`
	Period      FiscalPeriod       `json:"fiscal_period"`
	ReportKind  string             `json:"report_kind"` // 사업보고서, 분기보고서 등
	Accounts    map[string]float64 `json:"accounts"`    // canonical key → amount (원)
	AnnouncedAt time.Time          `json:"announced_at"`
	// Estimated is true when AnnouncedAt came from the delay-table heuristic
	// rather than an explicit disclosure date.
	Estimated bool `json:"estimated"`
}

// NewFinancialRecord validates and builds a record. The announcement date must
// not precede the fiscal period end; accepting such a row silently would let
// look-ahead data into every downstream query.
func NewFinancialRecord(code string, year int, period FiscalPeriod, reportKind string,
	accounts map[string]float64, announcedAt time.Time, estimated bool) (*FinancialRecord, error) {

	if !period.Valid() {
		return nil, fmt.Errorf("%w: fiscal period %q", ErrInvalidRecord, period)
	}
	rec := &FinancialRecord{
		Code:        code,
		FiscalYear:  year,
		Period:      period,
		ReportKind:  reportKind,
		Accounts:    accounts,
		AnnouncedAt: announcedAt,
		Estimated:   estimated,
	}
	if announcedAt.Before(rec.PeriodEnd()) {
		return nil, fmt.Errorf("%w: %s %d%s announced %s before period end %s",
			ErrInvalidRecord, code, year, period,
			announcedAt.Format("2006-01-02"), rec.PeriodEnd().Format("2006-01-02"))
	}
	return rec, nil
}

// PeriodEnd returns the last day of the record's fiscal period, assuming a
// calendar fiscal year.
func (r *FinancialRecord) PeriodEnd() time.Time {
	switch r.Period {
	case Period1Q:
		return time.Date(r.FiscalYear, 3, 31, 0, 0, 0, 0, time.UTC)
	case Period2Q:
		return time.Date(r.FiscalYear, 6, 30, 0, 0, 0, 0, time.UTC)
	case Period3Q:
		return time.Date(r.FiscalYear, 9, 30, 0, 0, 0, 0, time.UTC)
	default: // 4Q, FY
		return time.Date(r.FiscalYear, 12, 31, 0, 0, 0, 0, time.UTC)
	}
}

// Account returns the amount for a canonical account key.
func (r *FinancialRecord) Account(key string) (float64, bool) {
	v, ok := r.Accounts[key]
	return v, ok
}
