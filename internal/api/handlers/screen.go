package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pollmap/kr-stock-screener/internal/dataset"
	"github.com/pollmap/kr-stock-screener/internal/screening"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

// ScreenHandler serves screening runs over the prebuilt period series.
// ⭐ SSOT: 스크리닝 API 핸들러는 이 구조체에서만
type ScreenHandler struct {
	series     *dataset.Series
	thresholds screening.Thresholds
	cache      *gocache.Cache
	log        *logger.Logger
}

// NewScreenHandler creates a screen handler with a result cache. The series
// is an immutable snapshot, so cached responses only expire by TTL.
func NewScreenHandler(series *dataset.Series, thresholds screening.Thresholds,
	cacheTTL time.Duration, log *logger.Logger) *ScreenHandler {

	return &ScreenHandler{
		series:     series,
		thresholds: thresholds,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		log:        log,
	}
}

// StrategyInfo describes one selectable strategy.
type StrategyInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListStrategies returns the built-in strategy registry.
// GET /api/v1/screen/strategies
func (h *ScreenHandler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	registry := screening.Registry(h.thresholds)
	infos := make([]StrategyInfo, 0, len(registry))
	for id, strat := range registry {
		infos = append(infos, StrategyInfo{ID: id, Name: strat.Name, Description: strat.Description})
	}
	respondJSON(w, http.StatusOK, infos)
}

// ScreenRequest is the screening run payload. Thresholds, when present,
// override the configured cut-offs for this request only.
type ScreenRequest struct {
	Strategy   string                `json:"strategy"`
	Year       int                   `json:"year,omitempty"`
	Limit      int                   `json:"limit,omitempty"`
	Thresholds *screening.Thresholds `json:"thresholds,omitempty"`
}

// ScreenItem is one selected stock.
type ScreenItem struct {
	Rank int `json:"rank"`
	dataset.Row
}

// ScreenResponse is the screening run result.
type ScreenResponse struct {
	Strategy string       `json:"strategy"`
	Year     int          `json:"year"`
	Total    int          `json:"total"`
	Items    []ScreenItem `json:"items"`
}

// Run executes a screening strategy against one period's dataset.
// POST /api/v1/screen/run
func (h *ScreenHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Strategy == "" {
		req.Strategy = "value"
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Year == 0 {
		years := h.series.Years()
		if len(years) == 0 {
			respondError(w, http.StatusNotFound, "no period data available")
			return
		}
		req.Year = years[len(years)-1]
	}

	// 커스텀 임계값 요청은 캐시하지 않음
	cacheKey := fmt.Sprintf("%s:%d:%d", req.Strategy, req.Year, req.Limit)
	if req.Thresholds == nil {
		if cached, found := h.cache.Get(cacheKey); found {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	thresholds := h.thresholds
	if req.Thresholds != nil {
		if err := req.Thresholds.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		thresholds = *req.Thresholds
	}

	strat, ok := screening.Registry(thresholds)[req.Strategy]
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown strategy: "+req.Strategy)
		return
	}

	period, ok := h.series.Period(req.Year)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("no dataset for year %d", req.Year))
		return
	}

	codes, err := strat.Screen(period)
	if err != nil {
		h.log.WithError(err).Error("screening failed")
		respondError(w, http.StatusInternalServerError, "screening failed")
		return
	}
	if len(codes) > req.Limit {
		codes = codes[:req.Limit]
	}

	rowsByCode := make(map[string]dataset.Row, len(period.Rows))
	for _, row := range period.Rows {
		rowsByCode[row.Code] = row
	}

	items := make([]ScreenItem, 0, len(codes))
	for i, code := range codes {
		items = append(items, ScreenItem{Rank: i + 1, Row: rowsByCode[code]})
	}

	resp := ScreenResponse{Strategy: req.Strategy, Year: req.Year, Total: len(items), Items: items}
	if req.Thresholds == nil {
		h.cache.Set(cacheKey, resp, gocache.DefaultExpiration)
	}
	respondJSON(w, http.StatusOK, resp)
}
