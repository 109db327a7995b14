package adjust

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func bar(code string, d time.Time, close int64) *contracts.PriceBar {
	return &contracts.PriceBar{
		Code: code, Date: d,
		Open: close, High: close, Low: close, Close: close,
		Volume: 1000,
	}
}

func mustAction(t *testing.T, code string, d time.Time, kind contracts.ActionKind, ratio, dividend string) *contracts.CorporateAction {
	t.Helper()
	a, err := contracts.NewCorporateAction(code, d, kind,
		decimal.RequireFromString(ratio), decimal.RequireFromString(dividend))
	require.NoError(t, err)
	return a
}

// 삼성전자 2018년 5월 4일 1:50 액면분할 시나리오
func TestEngine_Adjust_Split(t *testing.T) {
	split := mustAction(t, "005930", date(2018, 5, 4), contracts.ActionSplit, "0.02", "0")
	engine := NewEngine(logger.NewNop(), split)

	bars := []*contracts.PriceBar{
		bar("005930", date(2018, 5, 2), 2_650_000),
		bar("005930", date(2018, 5, 3), 2_500_000),
		bar("005930", date(2018, 5, 4), 51_900),
	}
	adjusted := engine.Adjust(bars)

	// 분할 전 봉: factor 0.02, 250만 → 정확히 5만
	assert.True(t, adjusted[1].Factor.Equal(decimal.RequireFromString("0.02")))
	assert.True(t, adjusted[1].AdjClose.Equal(decimal.NewFromInt(50_000)),
		"got %s", adjusted[1].AdjClose)
	assert.True(t, adjusted[0].AdjClose.Equal(decimal.NewFromInt(53_000)))

	// 거래량은 역수: 1000 / 0.02 = 50000
	assert.True(t, adjusted[1].AdjVolume.Equal(decimal.NewFromInt(50_000)))

	// 분할 당일 이후 봉: factor는 정확히 1.0, 원시가 보존
	assert.True(t, adjusted[2].Factor.Equal(decimal.NewFromInt(1)))
	assert.True(t, adjusted[2].AdjClose.Equal(decimal.NewFromInt(51_900)))
	assert.Equal(t, int64(51_900), adjusted[2].Close, "raw close untouched")
}

func TestEngine_Adjust_Dividend(t *testing.T) {
	// 배당락일 종가 10,000원에 배당 500원 → multiplier 0.95
	div := mustAction(t, "000660", date(2023, 12, 27), contracts.ActionDividend, "0", "500")
	engine := NewEngine(logger.NewNop(), div)

	bars := []*contracts.PriceBar{
		bar("000660", date(2023, 12, 26), 10_000),
		bar("000660", date(2023, 12, 27), 10_000),
	}
	adjusted := engine.Adjust(bars)

	assert.True(t, adjusted[0].Factor.Equal(decimal.RequireFromString("0.95")),
		"got %s", adjusted[0].Factor)
	assert.True(t, adjusted[0].AdjClose.Equal(decimal.NewFromInt(9_500)))
	assert.True(t, adjusted[1].Factor.Equal(decimal.NewFromInt(1)))
}

func TestEngine_Adjust_DividendSkipCases(t *testing.T) {
	log := logger.NewNop()

	t.Run("no bar on ex-date", func(t *testing.T) {
		div := mustAction(t, "000001", date(2023, 6, 15), contracts.ActionDividend, "0", "100")
		engine := NewEngine(log, div)

		bars := []*contracts.PriceBar{bar("000001", date(2023, 6, 14), 5_000)}
		adjusted := engine.Adjust(bars)

		// 기준가 없음 → 해당 액션만 건너뛰고 나머지는 정상
		assert.True(t, adjusted[0].Factor.Equal(decimal.NewFromInt(1)))
	})

	t.Run("dividend not below reference price", func(t *testing.T) {
		div := mustAction(t, "000002", date(2023, 6, 15), contracts.ActionDividend, "0", "6000")
		engine := NewEngine(log, div)

		bars := []*contracts.PriceBar{
			bar("000002", date(2023, 6, 14), 5_000),
			bar("000002", date(2023, 6, 15), 5_000),
		}
		adjusted := engine.Adjust(bars)
		assert.True(t, adjusted[0].Factor.Equal(decimal.NewFromInt(1)))
	})
}

func TestEngine_Adjust_CompoundActions(t *testing.T) {
	// 분할 이전에 배당: 배당 기준가는 항상 배당락일 원시 종가
	div := mustAction(t, "005935", date(2020, 12, 28), contracts.ActionDividend, "0", "1000")
	split := mustAction(t, "005935", date(2021, 6, 1), contracts.ActionSplit, "0.5", "0")
	engine := NewEngine(logger.NewNop(), split, div) // 순서 무관, 엔진이 정렬

	bars := []*contracts.PriceBar{
		bar("005935", date(2020, 12, 24), 20_000),
		bar("005935", date(2020, 12, 28), 20_000),
		bar("005935", date(2021, 5, 31), 22_000),
		bar("005935", date(2021, 6, 1), 11_000),
	}
	adjusted := engine.Adjust(bars)

	// 가장 오래된 봉: 0.5 (분할) × 0.95 (배당) = 0.475
	assert.True(t, adjusted[0].Factor.Equal(decimal.RequireFromString("0.475")),
		"got %s", adjusted[0].Factor)
	// 배당락일~분할 전: 분할만 적용
	assert.True(t, adjusted[1].Factor.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, adjusted[2].Factor.Equal(decimal.RequireFromString("0.5")))
	// 마지막 봉은 1.0
	assert.True(t, adjusted[3].Factor.Equal(decimal.NewFromInt(1)))
}

func TestEngine_Adjust_Idempotent(t *testing.T) {
	split := mustAction(t, "005930", date(2018, 5, 4), contracts.ActionSplit, "0.02", "0")
	engine := NewEngine(logger.NewNop(), split)

	bars := []*contracts.PriceBar{
		bar("005930", date(2018, 5, 3), 2_500_000),
		bar("005930", date(2018, 5, 4), 51_900),
	}
	first := engine.Adjust(bars)
	firstClose := first[0].AdjClose

	// 같은 입력으로 재계산해도 결과 동일
	second := engine.Adjust(bars)
	assert.True(t, second[0].AdjClose.Equal(firstClose))
	assert.True(t, second[0].Factor.Equal(decimal.RequireFromString("0.02")))
}

func TestEngine_Adjust_NoActions(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	bars := []*contracts.PriceBar{bar("035720", date(2023, 1, 2), 60_000)}
	adjusted := engine.Adjust(bars)

	assert.True(t, adjusted[0].Factor.Equal(decimal.NewFromInt(1)))
	assert.True(t, adjusted[0].AdjClose.Equal(decimal.NewFromInt(60_000)))
}

func TestEngine_AddAction_KeepsOrder(t *testing.T) {
	engine := NewEngine(logger.NewNop())
	engine.AddAction(mustAction(t, "005930", date(2021, 1, 1), contracts.ActionSplit, "0.5", "0"))
	engine.AddAction(mustAction(t, "005930", date(2019, 1, 1), contracts.ActionSplit, "0.1", "0"))

	actions := engine.Actions()
	require.Len(t, actions, 2)
	assert.True(t, actions[0].Date.Before(actions[1].Date))
}

func TestParseActionKind(t *testing.T) {
	kind, err := contracts.ParseActionKind("split")
	require.NoError(t, err)
	assert.Equal(t, contracts.ActionSplit, kind)

	_, err = contracts.ParseActionKind("merger")
	assert.ErrorIs(t, err, contracts.ErrInvalidAction)
}
