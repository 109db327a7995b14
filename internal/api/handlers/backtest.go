package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pollmap/kr-stock-screener/internal/backtest"
	"github.com/pollmap/kr-stock-screener/internal/dataset"
	"github.com/pollmap/kr-stock-screener/internal/screening"
	"github.com/pollmap/kr-stock-screener/pkg/config"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

// BacktestHandler serves backtest runs over the prebuilt period series.
type BacktestHandler struct {
	series     *dataset.Series
	thresholds screening.Thresholds
	defaults   config.BacktestConfig
	log        *logger.Logger
}

// NewBacktestHandler creates a backtest handler.
func NewBacktestHandler(series *dataset.Series, thresholds screening.Thresholds,
	defaults config.BacktestConfig, log *logger.Logger) *BacktestHandler {

	return &BacktestHandler{series: series, thresholds: thresholds, defaults: defaults, log: log}
}

// BacktestRequest is the run payload; zero values fall back to configured
// defaults.
type BacktestRequest struct {
	Strategy     string `json:"strategy"`
	StartYear    int    `json:"start_year,omitempty"`
	EndYear      int    `json:"end_year,omitempty"`
	MaxPositions int    `json:"max_positions,omitempty"`
}

// Run executes a backtest and returns the full result record.
// POST /api/v1/backtest/run
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Strategy == "" {
		req.Strategy = "value"
	}
	if req.StartYear == 0 {
		req.StartYear = h.defaults.StartYear
	}
	if req.EndYear == 0 {
		req.EndYear = h.defaults.EndYear
	}
	if req.MaxPositions == 0 {
		req.MaxPositions = h.defaults.MaxPositions
	}

	strat, ok := screening.Registry(h.thresholds)[req.Strategy]
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown strategy: "+req.Strategy)
		return
	}

	driver := backtest.NewDriver(backtest.Config{
		Strategy:     req.Strategy,
		StartYear:    req.StartYear,
		EndYear:      req.EndYear,
		MaxPositions: req.MaxPositions,
	}, h.log)

	result, err := driver.Run(r.Context(), h.series, strat.Screen)
	if err != nil {
		h.log.WithError(err).Error("backtest failed")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}
