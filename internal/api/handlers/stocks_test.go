package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/internal/dataset"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

func stockSnapshot(t *testing.T) *dataset.Snapshot {
	t.Helper()

	bar := func(d time.Time, close int64) *contracts.PriceBar {
		return &contracts.PriceBar{
			Code: "100000", Date: d,
			Open: close, High: close, Low: close, Close: close, Volume: 1000,
			Factor:   decimal.NewFromInt(1),
			AdjClose: decimal.NewFromInt(close),
		}
	}

	rec, err := contracts.NewFinancialRecord("100000", 2023, contracts.PeriodFY, "사업보고서",
		map[string]float64{
			contracts.AccountTotalEquity:      1_000_000,
			contracts.AccountTotalLiabilities: 400_000,
			contracts.AccountCash:             100_000,
			contracts.AccountNetIncome:        150_000,
			contracts.AccountFCF:              120_000,
			contracts.AccountShares:           1_000,
		},
		time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), false)
	require.NoError(t, err)

	return &dataset.Snapshot{
		Financials: []*contracts.FinancialRecord{rec},
		Bars: map[string][]*contracts.PriceBar{
			"100000": {
				bar(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 10_000),
				bar(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 11_000),
				bar(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 12_000),
			},
		},
	}
}

func getStock(t *testing.T, h *StockHandler, path, code string,
	handler func(http.ResponseWriter, *http.Request)) (*httptest.ResponseRecorder, map[string]json.RawMessage) {

	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = mux.SetURLVars(req, map[string]string{"code": code})
	handler(rec, req)

	body := map[string]json.RawMessage{}
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	}
	return rec, body
}

func TestStockHandler_GetPrices(t *testing.T) {
	h := NewStockHandler(stockSnapshot(t), logger.NewNop())

	rec, body := getStock(t, h, "/api/v1/stocks/100000/prices", "100000", h.GetPrices)
	require.Equal(t, http.StatusOK, rec.Code)

	var total int
	require.NoError(t, json.Unmarshal(body["total"], &total))
	assert.Equal(t, 3, total)
}

func TestStockHandler_GetPrices_DateRange(t *testing.T) {
	h := NewStockHandler(stockSnapshot(t), logger.NewNop())

	rec, body := getStock(t, h,
		"/api/v1/stocks/100000/prices?from=2024-01-15&to=2024-02-15", "100000", h.GetPrices)
	require.Equal(t, http.StatusOK, rec.Code)

	var total int
	require.NoError(t, json.Unmarshal(body["total"], &total))
	assert.Equal(t, 1, total)
}

func TestStockHandler_GetPrices_Errors(t *testing.T) {
	h := NewStockHandler(stockSnapshot(t), logger.NewNop())

	rec, _ := getStock(t, h, "/api/v1/stocks/999999/prices", "999999", h.GetPrices)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = getStock(t, h, "/api/v1/stocks/100000/prices?from=01-15-2024", "100000", h.GetPrices)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStockHandler_GetValuation(t *testing.T) {
	h := NewStockHandler(stockSnapshot(t), logger.NewNop())

	rec, body := getStock(t, h,
		"/api/v1/stocks/100000/valuation?as_of=2024-04-01", "100000", h.GetValuation)
	require.Equal(t, http.StatusOK, rec.Code)

	var fiscalYear int
	require.NoError(t, json.Unmarshal(body["fiscal_year"], &fiscalYear))
	assert.Equal(t, 2023, fiscalYear)
	assert.Contains(t, body, "dcf")
	assert.Contains(t, body, "rim")
}

func TestStockHandler_GetValuation_PointInTime(t *testing.T) {
	h := NewStockHandler(stockSnapshot(t), logger.NewNop())

	// 공시 전 시점에서는 레코드가 보이지 않는다
	rec, _ := getStock(t, h,
		"/api/v1/stocks/100000/valuation?as_of=2024-03-01", "100000", h.GetValuation)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
