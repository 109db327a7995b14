// Package pit answers "what was known as of date D": financial records are
// visible only from their public announcement date, never from their fiscal
// period. This is the look-ahead guard of the backtest core.
package pit

import (
	"sort"
	"time"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

// 한국 공시 일정: 사업보고서는 회계연도 종료 후 90일, 분기보고서는 45일.
const quarterlyDelayDays = 45

// EstimateAnnouncementDate returns the assumed public date for a report that
// carries no explicit disclosure date. FY reports land on March 31 of the next
// year (the 90-day rule); quarterly reports 45 days after quarter end. A
// conservative heuristic, not ground truth.
func EstimateAnnouncementDate(fiscalYear int, period contracts.FiscalPeriod) time.Time {
	switch period {
	case contracts.Period1Q:
		return time.Date(fiscalYear, 3, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, quarterlyDelayDays)
	case contracts.Period2Q:
		return time.Date(fiscalYear, 6, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, quarterlyDelayDays)
	case contracts.Period3Q:
		return time.Date(fiscalYear, 9, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, quarterlyDelayDays)
	case contracts.Period4Q:
		return time.Date(fiscalYear, 12, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, quarterlyDelayDays)
	default:
		return time.Date(fiscalYear+1, 3, 31, 0, 0, 0, 0, time.UTC)
	}
}

// ValidateNoLookahead reports whether data for a fiscal period ending at
// dataPeriodEnd may be used on tradeDate. When announcedAt is nil the
// conservative default is April 1 of the following year. This is an advisory
// predicate: callers decide whether a violation is fatal, and should log it.
func ValidateNoLookahead(tradeDate, dataPeriodEnd time.Time, announcedAt *time.Time) bool {
	announced := time.Date(dataPeriodEnd.Year()+1, 4, 1, 0, 0, 0, 0, time.UTC)
	if announcedAt != nil {
		announced = *announcedAt
	}
	return !tradeDate.Before(announced)
}

// View is a read-only point-in-time index over financial records.
// Safe for concurrent readers; the record table is an immutable snapshot.
type View struct {
	records map[string][]*contracts.FinancialRecord // per code, announced-at asc
	log     *logger.Logger
}

// NewView indexes records by code, ordered by announcement date.
func NewView(records []*contracts.FinancialRecord, log *logger.Logger) *View {
	byCode := make(map[string][]*contracts.FinancialRecord)
	for _, rec := range records {
		byCode[rec.Code] = append(byCode[rec.Code], rec)
	}
	for code := range byCode {
		recs := byCode[code]
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].AnnouncedAt.Before(recs[j].AnnouncedAt)
		})
	}
	return &View{records: byCode, log: log}
}

// RecordsAvailableAsOf returns the records of code announced on or before
// asOf. Monotonic: a later asOf never shrinks the result. Unknown codes
// return an empty slice, never an error.
func (v *View) RecordsAvailableAsOf(code string, asOf time.Time) []*contracts.FinancialRecord {
	recs := v.records[code]
	// Records are sorted by announcement date, so the available set is a prefix.
	cut := sort.Search(len(recs), func(i int) bool {
		return recs[i].AnnouncedAt.After(asOf)
	})
	available := recs[:cut]
	v.log.WithFields(map[string]interface{}{
		"code":      code,
		"as_of":     asOf.Format("2006-01-02"),
		"available": len(available),
		"total":     len(recs),
	}).Debug("point-in-time records")
	return available
}

// LatestAvailableAsOf returns the most recently announced record as of asOf.
func (v *View) LatestAvailableAsOf(code string, asOf time.Time) (*contracts.FinancialRecord, bool) {
	available := v.RecordsAvailableAsOf(code, asOf)
	if len(available) == 0 {
		return nil, false
	}
	return available[len(available)-1], true
}

// Flow accounts that make sense to sum across quarters. Balance-sheet stocks
// (assets, equity) are levels, not flows, and are excluded from TTM sums.
var ttmAccounts = []string{
	contracts.AccountRevenue,
	contracts.AccountCostOfSales,
	contracts.AccountOperatingIncome,
	contracts.AccountNetIncome,
	contracts.AccountOCF,
	contracts.AccountFCF,
}

// TrailingTwelveMonths sums the four most recently announced quarterly records
// available as of asOf. Fewer than four quarters yields ok=false and no
// partial fabrication.
func (v *View) TrailingTwelveMonths(code string, asOf time.Time) (map[string]float64, bool) {
	available := v.RecordsAvailableAsOf(code, asOf)

	quarters := make([]*contracts.FinancialRecord, 0, 4)
	for i := len(available) - 1; i >= 0 && len(quarters) < 4; i-- {
		if available[i].Period.IsQuarterly() {
			quarters = append(quarters, available[i])
		}
	}
	if len(quarters) < 4 {
		v.log.WithFields(map[string]interface{}{
			"code":     code,
			"as_of":    asOf.Format("2006-01-02"),
			"quarters": len(quarters),
		}).Debug("TTM unavailable, fewer than four quarters")
		return nil, false
	}

	ttm := make(map[string]float64)
	for _, key := range ttmAccounts {
		sum, present := 0.0, false
		for _, q := range quarters {
			if amount, ok := q.Account(key); ok {
				sum += amount
				present = true
			}
		}
		if present {
			ttm[key] = sum
		}
	}
	return ttm, true
}
