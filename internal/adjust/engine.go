// Package adjust computes corporate-action-corrected prices. Raw share prices
// jump artificially across splits, rights issues and ex-dividend dates; the
// engine rescales the past to match the present so returns are comparable
// across the action boundary.
package adjust

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

// Engine holds one stock's corporate-action ledger, sorted ascending by
// action date. Recomputing from an unchanged ledger and unchanged raw bars is
// idempotent: factors are rebuilt from scratch on every Adjust call.
type Engine struct {
	actions []*contracts.CorporateAction
	log     *logger.Logger
}

// NewEngine creates an engine with an optional initial ledger.
func NewEngine(log *logger.Logger, actions ...*contracts.CorporateAction) *Engine {
	e := &Engine{log: log}
	for _, a := range actions {
		e.AddAction(a)
	}
	return e
}

// AddAction inserts an action keeping the ledger date-ordered.
func (e *Engine) AddAction(action *contracts.CorporateAction) {
	e.actions = append(e.actions, action)
	sort.SliceStable(e.actions, func(i, j int) bool {
		return e.actions[i].Date.Before(e.actions[j].Date)
	})
}

// Actions returns the date-ordered ledger.
func (e *Engine) Actions() []*contracts.CorporateAction {
	return e.actions
}

// Adjust recomputes the adjustment factor and adjusted OHLCV of every bar.
// Bars are processed in date order; raw fields are never touched.
//
// Single backward pass: starting from the last action and moving to the
// earliest, each action multiplies the factor of every bar strictly before
// its date. Bars after all actions keep factor 1.0 exactly.
//
// Dividend reference prices are always the RAW close on the ex-date, never a
// partially adjusted value, so the result does not depend on where a dividend
// sits between splits in the pass.
func (e *Engine) Adjust(bars []*contracts.PriceBar) []*contracts.PriceBar {
	if len(bars) == 0 {
		return bars
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	factors := make([]decimal.Decimal, len(bars))
	one := decimal.NewFromInt(1)
	for i := range factors {
		factors[i] = one
	}

	rawCloseOn := make(map[time.Time]int64, len(bars))
	for _, bar := range bars {
		rawCloseOn[bar.Date] = bar.Close
	}

	for i := len(e.actions) - 1; i >= 0; i-- {
		action := e.actions[i]

		// Bars are date-sorted, so "strictly before the action" is a prefix.
		cut := sort.Search(len(bars), func(j int) bool {
			return !bars[j].Date.Before(action.Date)
		})
		if cut == 0 {
			continue
		}

		multiplier, ok := e.actionMultiplier(action, rawCloseOn)
		if !ok {
			continue
		}
		for j := 0; j < cut; j++ {
			factors[j] = factors[j].Mul(multiplier)
		}
	}

	for i, bar := range bars {
		f := factors[i]
		bar.Factor = f
		bar.AdjOpen = decimal.NewFromInt(bar.Open).Mul(f)
		bar.AdjHigh = decimal.NewFromInt(bar.High).Mul(f)
		bar.AdjLow = decimal.NewFromInt(bar.Low).Mul(f)
		bar.AdjClose = decimal.NewFromInt(bar.Close).Mul(f)
		// 주식수가 바뀌므로 거래량은 역수 적용
		bar.AdjVolume = decimal.NewFromInt(bar.Volume).Div(f)
	}
	return bars
}

// actionMultiplier returns the factor contribution of one action, or ok=false
// when the action cannot be applied (dividend with no bar on the ex-date, or
// a non-positive reference price). Skipping is a data-gap condition, not an
// error: one bad action must not abort the whole series.
func (e *Engine) actionMultiplier(action *contracts.CorporateAction, rawCloseOn map[time.Time]int64) (decimal.Decimal, bool) {
	switch action.Kind {
	case contracts.ActionSplit, contracts.ActionRights:
		return action.Ratio, true

	case contracts.ActionDividend:
		refClose, ok := rawCloseOn[action.Date]
		if !ok || refClose <= 0 {
			e.log.WithFields(map[string]interface{}{
				"code": action.Code,
				"date": action.Date.Format("2006-01-02"),
			}).Warn("dividend adjustment skipped, no reference price on ex-date")
			return decimal.Decimal{}, false
		}
		ref := decimal.NewFromInt(refClose)
		multiplier := ref.Sub(action.Dividend).Div(ref)
		if multiplier.LessThanOrEqual(decimal.Zero) {
			e.log.WithFields(map[string]interface{}{
				"code":     action.Code,
				"date":     action.Date.Format("2006-01-02"),
				"dividend": action.Dividend.String(),
				"close":    refClose,
			}).Warn("dividend adjustment skipped, dividend not below reference price")
			return decimal.Decimal{}, false
		}
		return multiplier, true
	}
	return decimal.Decimal{}, false
}
