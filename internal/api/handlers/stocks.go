package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/internal/dataset"
	"github.com/pollmap/kr-stock-screener/internal/pit"
	"github.com/pollmap/kr-stock-screener/internal/valuation"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

// StockHandler serves per-stock price series and valuations from the
// in-memory snapshot.
type StockHandler struct {
	snap *dataset.Snapshot
	view *pit.View
	log  *logger.Logger
}

// NewStockHandler creates a stock handler over an immutable snapshot.
func NewStockHandler(snap *dataset.Snapshot, log *logger.Logger) *StockHandler {
	return &StockHandler{
		snap: snap,
		view: pit.NewView(snap.Financials, log),
		log:  log,
	}
}

// GetPrices returns a stock's daily bars, raw and adjusted.
// GET /api/v1/stocks/{code}/prices?from=2018-01-01&to=2018-12-31
func (h *StockHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	bars, ok := h.snap.Bars[code]
	if !ok {
		respondError(w, http.StatusNotFound, "no price data for "+code)
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filtered := make([]*contracts.PriceBar, 0, len(bars))
	for _, bar := range bars {
		if !from.IsZero() && bar.Date.Before(from) {
			continue
		}
		if !to.IsZero() && bar.Date.After(to) {
			continue
		}
		filtered = append(filtered, bar)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"code":  code,
		"total": len(filtered),
		"bars":  filtered,
	})
}

// GetValuation returns DCF and RIM fair values from the most recent record
// publicly known at as_of (default: today).
// GET /api/v1/stocks/{code}/valuation?as_of=2024-04-01
func (h *StockHandler) GetValuation(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid as_of date: "+raw)
			return
		}
		asOf = parsed
	}

	rec, ok := h.view.LatestAvailableAsOf(code, asOf)
	if !ok {
		respondError(w, http.StatusNotFound, "no financial record for "+code)
		return
	}

	equity, _ := rec.Account(contracts.AccountTotalEquity)
	liabilities, _ := rec.Account(contracts.AccountTotalLiabilities)
	cash, _ := rec.Account(contracts.AccountCash)
	netIncome, _ := rec.Account(contracts.AccountNetIncome)
	fcf, _ := rec.Account(contracts.AccountFCF)
	shares, _ := rec.Account(contracts.AccountShares)

	roe := 0.0
	if equity > 0 {
		roe = netIncome / equity * 100
	}

	dcfCalc := valuation.NewDCFCalculator(0, 0, 0)
	growth := dcfCalc.EstimateGrowthRate(nil) // 단일 레코드라 FCF 이력 없음, 기본 성장률
	dcfResult := dcfCalc.FairValue(fcf, growth, liabilities-cash, shares)

	rimCalc := valuation.NewRIMCalculator(0, 0, 0)
	rimResult := rimCalc.Value(equity, roe, 0, shares)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"code":         code,
		"as_of":        asOf.Format("2006-01-02"),
		"fiscal_year":  rec.FiscalYear,
		"period":       rec.Period,
		"announced_at": rec.AnnouncedAt.Format("2006-01-02"),
		"estimated":    rec.Estimated,
		"dcf":          dcfResult,
		"rim":          rimResult,
	})
}

func parseDateRange(r *http.Request) (from, to time.Time, err error) {
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = time.Parse("2006-01-02", raw); err != nil {
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = time.Parse("2006-01-02", raw); err != nil {
			return
		}
	}
	return
}
