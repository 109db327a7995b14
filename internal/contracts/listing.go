package contracts

import (
	"fmt"
	"time"
)

// ListingInterval is one listed/delisted span for a stock. A stock that was
// delisted and later re-listed carries multiple intervals.
type ListingInterval struct {
	Code       string     `json:"code"`
	ListedAt   time.Time  `json:"listed_at"`
	DelistedAt *time.Time `json:"delisted_at,omitempty"` // nil = 상장 유지
	Reason     string     `json:"reason,omitempty"`      // 상폐 사유 (부도, 자진상폐 등)
}

// NewListingInterval validates and builds an interval.
func NewListingInterval(code string, listedAt time.Time, delistedAt *time.Time, reason string) (*ListingInterval, error) {
	if delistedAt != nil && delistedAt.Before(listedAt) {
		return nil, fmt.Errorf("%w: %s delisted %s before listed %s",
			ErrInvalidInterval, code,
			delistedAt.Format("2006-01-02"), listedAt.Format("2006-01-02"))
	}
	return &ListingInterval{
		Code:       code,
		ListedAt:   listedAt,
		DelistedAt: delistedAt,
		Reason:     reason,
	}, nil
}

// Covers reports whether the stock was listed on date under this interval.
// The delisting date itself is an unlisted day: listed ≤ date < delisted.
func (li *ListingInterval) Covers(date time.Time) bool {
	if date.Before(li.ListedAt) {
		return false
	}
	if li.DelistedAt == nil {
		return true
	}
	return date.Before(*li.DelistedAt)
}

// Security is a stock identity row from the exchange-listing collaborator.
type Security struct {
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Market   string    `json:"market"` // KOSPI, KOSDAQ
	Sector   string    `json:"sector,omitempty"`
	ListedAt time.Time `json:"listed_at,omitempty"` // zero = 상장일 미상
}
