// Package universe tracks listing/delisting intervals so that backtests see
// the stocks that actually existed on a given date, delisted ones included.
// Excluding vanished companies from the sample inflates measured returns.
package universe

import (
	"time"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

// Tracker answers "was this stock tradable on date D". Read-only during a
// run; intervals are loaded once by the exchange-listing collaborator.
type Tracker struct {
	intervals map[string][]*contracts.ListingInterval
	log       *logger.Logger
}

// NewTracker creates an empty tracker.
func NewTracker(log *logger.Logger) *Tracker {
	return &Tracker{
		intervals: make(map[string][]*contracts.ListingInterval),
		log:       log,
	}
}

// AddInterval appends an interval for its code. Interval validity is enforced
// by contracts.NewListingInterval; the tracker does not deduplicate.
func (t *Tracker) AddInterval(interval *contracts.ListingInterval) {
	t.intervals[interval.Code] = append(t.intervals[interval.Code], interval)
}

// IntervalCount returns the number of recorded intervals for a code.
func (t *Tracker) IntervalCount(code string) int {
	return len(t.intervals[code])
}

// WasListedAt reports whether code was listed on date. A code with no
// interval record is treated as currently listed: absence of a row means "no
// delisting history to check", not "unknown stock". A re-listed code is
// admitted by whichever of its intervals covers the date.
func (t *Tracker) WasListedAt(code string, date time.Time) bool {
	intervals, ok := t.intervals[code]
	if !ok {
		return true
	}
	for _, interval := range intervals {
		if interval.Covers(date) {
			return true
		}
	}
	return false
}

// UniverseAt filters candidates down to those listed on date. When a
// candidate row carries its own listing date, that date must also have
// passed. This filter guards BOTH stock selection and return realization;
// applying it only at selection time would still let survivorship bias into
// the forward-return averages.
func (t *Tracker) UniverseAt(date time.Time, candidates []*contracts.Security) []*contracts.Security {
	result := make([]*contracts.Security, 0, len(candidates))
	for _, sec := range candidates {
		if !t.WasListedAt(sec.Code, date) {
			continue
		}
		if !sec.ListedAt.IsZero() && sec.ListedAt.After(date) {
			continue
		}
		result = append(result, sec)
	}
	t.log.WithFields(map[string]interface{}{
		"date":       date.Format("2006-01-02"),
		"candidates": len(candidates),
		"universe":   len(result),
	}).Debug("universe filtered")
	return result
}
