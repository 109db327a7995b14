package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollmap/kr-stock-screener/internal/adjust"
	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func mustRecord(t *testing.T, code string, year int, accounts map[string]float64, announced time.Time) *contracts.FinancialRecord {
	t.Helper()
	rec, err := contracts.NewFinancialRecord(code, year, contracts.PeriodFY, "사업보고서", accounts, announced, false)
	require.NoError(t, err)
	return rec
}

func bars(t *testing.T, code string, closes map[time.Time]int64) []*contracts.PriceBar {
	t.Helper()
	out := make([]*contracts.PriceBar, 0, len(closes))
	for d, c := range closes {
		out = append(out, &contracts.PriceBar{
			Code: code, Date: d,
			Open: c, High: c, Low: c, Close: c, Volume: 1000,
		})
	}
	// 액션 없는 엔진으로 Adj* 필드 채움 (factor 1.0)
	return adjust.NewEngine(logger.NewNop()).Adjust(out)
}

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()

	delisted := date(2022, 10, 1)
	interval, err := contracts.NewListingInterval("200000", date(2000, 1, 4), &delisted, "감사의견 거절")
	require.NoError(t, err)

	accounts := func(netIncome float64) map[string]float64 {
		return map[string]float64{
			contracts.AccountRevenue:     1000,
			contracts.AccountNetIncome:   netIncome,
			contracts.AccountTotalEquity: 500,
			contracts.AccountShares:      100,
		}
	}

	return &Snapshot{
		Securities: []*contracts.Security{
			{Code: "100000", Name: "생존기업", Market: "KOSPI"},
			{Code: "200000", Name: "상폐기업", Market: "KOSDAQ"},
		},
		Intervals: []*contracts.ListingInterval{interval},
		Financials: []*contracts.FinancialRecord{
			mustRecord(t, "100000", 2021, accounts(50), date(2022, 3, 15)),
			mustRecord(t, "100000", 2022, accounts(60), date(2023, 3, 10)),
			mustRecord(t, "200000", 2021, accounts(10), date(2022, 3, 20)),
		},
		Bars: map[string][]*contracts.PriceBar{
			"100000": bars(t, "100000", map[time.Time]int64{
				date(2022, 3, 31): 10_000,
				date(2023, 3, 31): 12_000,
			}),
			"200000": bars(t, "200000", map[time.Time]int64{
				date(2022, 3, 31): 5_000,
			}),
		},
	}
}

func TestBuilder_Build(t *testing.T) {
	builder := NewBuilder(testSnapshot(t), DefaultBuilderConfig(), logger.NewNop())
	series := builder.Build(2022, 2023)

	assert.Equal(t, []int{2022, 2023}, series.Years())

	p2022, ok := series.Period(2022)
	require.True(t, ok)
	assert.True(t, p2022.EvalDate.Equal(date(2022, 4, 1)))

	// 2022 평가일: 상폐기업도 아직 살아 있으므로 행이 있어야 한다
	codes := make([]string, len(p2022.Rows))
	for i, r := range p2022.Rows {
		codes[i] = r.Code
	}
	assert.ElementsMatch(t, []string{"100000", "200000"}, codes)

	p2023, ok := series.Period(2023)
	require.True(t, ok)

	// 2023 평가일: 상폐기업은 유니버스에서 빠진다 — 선정에서도, 실현에서도
	require.Len(t, p2023.Rows, 1)
	assert.Equal(t, "100000", p2023.Rows[0].Code)
	_, hasDelisted := p2023.Returns["200000"]
	assert.False(t, hasDelisted, "delisted stock must not contribute a return")

	// 수익률은 직전 평가일 대비 수정종가: (12000 − 10000) / 10000
	ret, ok := p2023.Returns["100000"]
	require.True(t, ok)
	assert.InDelta(t, 0.2, ret, 1e-9)
}

func TestBuilder_Build_RowUsesPITRecord(t *testing.T) {
	builder := NewBuilder(testSnapshot(t), DefaultBuilderConfig(), logger.NewNop())
	series := builder.Build(2023, 2023)

	p2023, _ := series.Period(2023)
	require.Len(t, p2023.Rows, 1)
	row := p2023.Rows[0]

	// 2023-04-01에는 FY2022 (2023-03-10 공시) 가 최신
	assert.Equal(t, 2022, row.FiscalYear)

	// 시총 = 수정종가 × 주식수 = 12000 × 100
	assert.InDelta(t, 1_200_000, row.MarketCap, 1e-9)
	// PER = 시총 / 순이익 = 1_200_000 / 60
	assert.InDelta(t, 20_000, row.PER, 1e-9)
	// YoY 매출성장: FY2021 매출 1000 → FY2022 매출 1000 → 0%
	assert.Zero(t, row.RevenueGrowth)
}

func TestBuilder_Build_UnannouncedRecordInvisible(t *testing.T) {
	snap := testSnapshot(t)
	// FY2022가 평가일 이후에야 공시되는 경우
	snap.Financials = []*contracts.FinancialRecord{
		mustRecord(t, "100000", 2022, map[string]float64{
			contracts.AccountNetIncome: 60,
		}, date(2023, 4, 15)),
	}

	builder := NewBuilder(snap, DefaultBuilderConfig(), logger.NewNop())
	series := builder.Build(2023, 2023)

	p2023, ok := series.Period(2023)
	require.True(t, ok, "returns alone still make a period")

	// 레코드가 보이지 않으므로 행은 없지만 수익률은 남는다
	assert.Empty(t, p2023.Rows)
	_, hasReturn := p2023.Returns["100000"]
	assert.True(t, hasReturn)
}

func TestBuilder_Build_StalePriceExcluded(t *testing.T) {
	snap := testSnapshot(t)
	// 마지막 봉이 평가일보다 30일 넘게 오래됨 (거래정지 장기화)
	snap.Bars["100000"] = bars(t, "100000", map[time.Time]int64{
		date(2023, 1, 15): 12_000,
	})

	builder := NewBuilder(snap, DefaultBuilderConfig(), logger.NewNop())
	series := builder.Build(2023, 2023)

	if p, ok := series.Period(2023); ok {
		for _, row := range p.Rows {
			assert.NotEqual(t, "100000", row.Code, "stale price must not back a row")
		}
		_, hasReturn := p.Returns["100000"]
		assert.False(t, hasReturn)
	}
}

func TestBuilder_Build_EmptyYears(t *testing.T) {
	builder := NewBuilder(testSnapshot(t), DefaultBuilderConfig(), logger.NewNop())
	// 데이터가 전혀 없는 연도 구간
	series := builder.Build(2010, 2011)
	assert.Empty(t, series.Years())
}

func TestNewSeries(t *testing.T) {
	series := NewSeries(
		&PeriodData{Year: 2023},
		nil,
		&PeriodData{Year: 2021},
	)
	assert.Equal(t, []int{2021, 2023}, series.Years())

	_, ok := series.Period(2022)
	assert.False(t, ok)
}
