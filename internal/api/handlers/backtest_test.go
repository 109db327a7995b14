package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/internal/dataset"
	"github.com/pollmap/kr-stock-screener/internal/screening"
	"github.com/pollmap/kr-stock-screener/internal/valuation"
	"github.com/pollmap/kr-stock-screener/pkg/config"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

func backtestSeries() *dataset.Series {
	cheap := dataset.Row{Code: "100000", RatioSet: valuation.RatioSet{
		PER: 5, PBR: 0.5, ROE: 12, DebtRatio: 50,
	}}
	return dataset.NewSeries(
		&dataset.PeriodData{
			Year:     2022,
			EvalDate: time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC),
			Rows:     []dataset.Row{cheap},
		},
		&dataset.PeriodData{
			Year:     2023,
			EvalDate: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
			Returns:  map[string]float64{"100000": 0.25},
		},
	)
}

func newBacktestHandler() *BacktestHandler {
	defaults := config.BacktestConfig{MaxPositions: 20, StartYear: 2022, EndYear: 2023}
	return NewBacktestHandler(backtestSeries(), screening.DefaultThresholds(), defaults, logger.NewNop())
}

func postBacktest(t *testing.T, h *BacktestHandler, body BacktestRequest) (*httptest.ResponseRecorder, contracts.BacktestResult) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backtest/run", bytes.NewReader(payload))
	h.Run(rec, req)

	var result contracts.BacktestResult
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	}
	return rec, result
}

func TestBacktestHandler_Run(t *testing.T) {
	rec, result := postBacktest(t, newBacktestHandler(), BacktestRequest{})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "value", result.Strategy, "empty strategy falls back to value")
	assert.Equal(t, 2022, result.StartYear)
	assert.Equal(t, 2023, result.EndYear)
	require.Len(t, result.Periods, 1)
	assert.InDelta(t, 0.25, result.Periods[0].Return, 1e-9)
	assert.InDelta(t, 0.25, result.TotalReturn, 1e-9)
}

func TestBacktestHandler_Run_Errors(t *testing.T) {
	h := newBacktestHandler()

	rec, _ := postBacktest(t, h, BacktestRequest{Strategy: "momentum"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 구간 역전은 드라이버가 거부한다
	rec, _ = postBacktest(t, h, BacktestRequest{StartYear: 2024, EndYear: 2020})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	raw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backtest/run", bytes.NewReader([]byte("not json")))
	h.Run(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}
