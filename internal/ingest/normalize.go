// Package ingest converts collector-shaped rows into validated domain
// records. Account names arrive in many historical API variants; they are
// resolved to canonical keys exactly once here, so no downstream lookup ever
// string-matches a variant.
package ingest

import (
	"fmt"
	"time"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/internal/pit"
)

// accountAliases maps canonical keys to the source-side account name
// variants observed across OpenDART statement formats.
var accountAliases = map[string][]string{
	contracts.AccountRevenue:          {"매출액", "영업수익", "수익(매출액)", "매출"},
	contracts.AccountCostOfSales:      {"매출원가", "영업비용"},
	contracts.AccountOperatingIncome:  {"영업이익", "영업이익(손실)"},
	contracts.AccountNetIncome:        {"당기순이익", "당기순이익(손실)", "분기순이익"},
	contracts.AccountTotalAssets:      {"자산총계", "자산 총계", "자산합계"},
	contracts.AccountTotalLiabilities: {"부채총계", "부채 총계", "부채합계"},
	contracts.AccountTotalEquity:      {"자본총계", "자본 총계", "자본합계"},
	contracts.AccountCurrentAssets:    {"유동자산"},
	contracts.AccountCurrentLiabs:     {"유동부채"},
	contracts.AccountCash:             {"현금및현금성자산", "현금", "현금 및 현금성자산"},
	contracts.AccountOCF:              {"영업활동현금흐름", "영업현금흐름"},
	contracts.AccountFCF:              {"잉여현금흐름"},
	contracts.AccountShares:           {"상장주식수", "발행주식수"},
}

// Normalizer resolves account name variants to canonical keys. The lookup
// table is built once per process, not per query.
type Normalizer struct {
	lookup map[string]string // alias → canonical
}

// NewNormalizer builds the alias lookup.
func NewNormalizer() *Normalizer {
	lookup := make(map[string]string)
	for canonical, aliases := range accountAliases {
		lookup[canonical] = canonical // canonical names pass through
		for _, alias := range aliases {
			lookup[alias] = canonical
		}
	}
	return &Normalizer{lookup: lookup}
}

// NormalizeAccounts maps a raw account map onto canonical keys. Unknown
// account names are dropped; the first variant seen for a key wins.
func (n *Normalizer) NormalizeAccounts(raw map[string]float64) map[string]float64 {
	normalized := make(map[string]float64, len(raw))
	for name, amount := range raw {
		canonical, ok := n.lookup[name]
		if !ok {
			continue
		}
		if _, exists := normalized[canonical]; !exists {
			normalized[canonical] = amount
		}
	}
	return normalized
}

// RawFinancialRow is the shape the financial-statement collaborator delivers.
type RawFinancialRow struct {
	Code        string
	FiscalYear  int
	Period      string
	ReportKind  string
	Accounts    map[string]float64 // source account names
	AnnouncedAt *time.Time         // nil = 공시일 미상, 추정 사용
}

// BuildRecord validates a raw row into a FinancialRecord. When the
// announcement date is absent it is estimated from the disclosure delay
// table and the record is marked as estimated.
func (n *Normalizer) BuildRecord(row RawFinancialRow) (*contracts.FinancialRecord, error) {
	period := contracts.FiscalPeriod(row.Period)
	if !period.Valid() {
		return nil, fmt.Errorf("%w: fiscal period %q for %s", contracts.ErrInvalidRecord, row.Period, row.Code)
	}

	announced := pit.EstimateAnnouncementDate(row.FiscalYear, period)
	estimated := true
	if row.AnnouncedAt != nil {
		announced = *row.AnnouncedAt
		estimated = false
	}

	return contracts.NewFinancialRecord(
		row.Code, row.FiscalYear, period, row.ReportKind,
		n.NormalizeAccounts(row.Accounts), announced, estimated,
	)
}
