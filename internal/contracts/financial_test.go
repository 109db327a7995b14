package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestFiscalPeriod(t *testing.T) {
	assert.True(t, PeriodFY.Valid())
	assert.True(t, Period4Q.Valid())
	assert.False(t, FiscalPeriod("5Q").Valid())
	assert.False(t, FiscalPeriod("").Valid())

	assert.False(t, PeriodFY.IsQuarterly())
	assert.True(t, Period1Q.IsQuarterly())
	assert.True(t, Period4Q.IsQuarterly(), "4Q는 유효한 분기 태그")
	assert.False(t, FiscalPeriod("5Q").IsQuarterly())
}

func TestNewFinancialRecord(t *testing.T) {
	accounts := map[string]float64{AccountRevenue: 1000}

	rec, err := NewFinancialRecord("005930", 2023, PeriodFY, "사업보고서", accounts, day(2024, 3, 12), false)
	require.NoError(t, err)
	assert.Equal(t, "005930", rec.Code)

	revenue, ok := rec.Account(AccountRevenue)
	require.True(t, ok)
	assert.Equal(t, 1000.0, revenue)
	_, ok = rec.Account(AccountFCF)
	assert.False(t, ok)
}

func TestNewFinancialRecord_Invalid(t *testing.T) {
	// 회계기간 종료 전 공시는 look-ahead 데이터 유입 경로
	_, err := NewFinancialRecord("005930", 2023, PeriodFY, "사업보고서", nil, day(2023, 11, 1), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewFinancialRecord("005930", 2023, FiscalPeriod("H1"), "반기보고서", nil, day(2024, 1, 1), false)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestFinancialRecord_PeriodEnd(t *testing.T) {
	tests := []struct {
		period FiscalPeriod
		want   time.Time
	}{
		{Period1Q, day(2023, 3, 31)},
		{Period2Q, day(2023, 6, 30)},
		{Period3Q, day(2023, 9, 30)},
		{Period4Q, day(2023, 12, 31)},
		{PeriodFY, day(2023, 12, 31)},
	}
	for _, tt := range tests {
		rec := &FinancialRecord{FiscalYear: 2023, Period: tt.period}
		assert.True(t, rec.PeriodEnd().Equal(tt.want), "%s", tt.period)
	}
}
