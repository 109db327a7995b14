// Package dataset assembles the bias-free view the backtest driver consumes:
// point-in-time financials, survivorship-free universes and adjusted prices,
// folded into one period table per rebalancing year.
package dataset

import (
	"sort"
	"time"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/internal/valuation"
)

// Snapshot holds the fully materialized input tables for one backtest run.
// All fetching happens before the run; the snapshot is immutable afterwards,
// so concurrent read-only runs over the same snapshot are safe.
type Snapshot struct {
	Securities []*contracts.Security
	Intervals  []*contracts.ListingInterval
	Financials []*contracts.FinancialRecord
	// Bars are per-code daily bars, date ascending, with adjustment factors
	// already computed by the adjustment engine.
	Bars map[string][]*contracts.PriceBar
}

// closeAsOf returns the adjusted close of the last bar on or before date.
// Bars older than maxStaleDays are ignored so a long-gone price never passes
// for a current one.
func (s *Snapshot) closeAsOf(code string, date time.Time) (float64, bool) {
	bars := s.Bars[code]
	if len(bars) == 0 {
		return 0, false
	}
	idx := sort.Search(len(bars), func(i int) bool {
		return bars[i].Date.After(date)
	})
	if idx == 0 {
		return 0, false
	}
	bar := bars[idx-1]
	if date.Sub(bar.Date) > maxStaleDays*24*time.Hour {
		return 0, false
	}
	adj, _ := bar.AdjClose.Float64()
	if adj <= 0 {
		return 0, false
	}
	return adj, true
}

const maxStaleDays = 30

// Row is one stock's entry in a period dataset: identity, the valuation
// ratios derived from its most recent point-in-time record, and the adjusted
// close backing them.
type Row struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"`
	Sector string `json:"sector,omitempty"`

	valuation.RatioSet

	AdjClose   float64 `json:"adj_close"`
	MarketCap  float64 `json:"market_cap"`
	FiscalYear int     `json:"fiscal_year"` // of the record backing the ratios
}

// PeriodData is the dataset for one rebalancing period. Returns maps each
// universe member to the adjusted-close return realized over the year ENDING
// at EvalDate; the driver realizes period Y's holdings against period Y+1's
// map.
type PeriodData struct {
	Year     int
	EvalDate time.Time
	Rows     []Row
	Returns  map[string]float64
}

// Series is the ordered collection of period datasets.
type Series struct {
	years   []int
	periods map[int]*PeriodData
}

// NewSeries indexes periods by year, ascending. Nil periods are skipped; a
// duplicate year keeps the last one given.
func NewSeries(periods ...*PeriodData) *Series {
	s := &Series{periods: make(map[int]*PeriodData, len(periods))}
	for _, p := range periods {
		if p == nil {
			continue
		}
		if _, seen := s.periods[p.Year]; !seen {
			s.years = append(s.years, p.Year)
		}
		s.periods[p.Year] = p
	}
	sort.Ints(s.years)
	return s
}

// Period returns the dataset for a year.
func (s *Series) Period(year int) (*PeriodData, bool) {
	p, ok := s.periods[year]
	return p, ok
}

// Years returns the available period years, ascending.
func (s *Series) Years() []int {
	return s.years
}
