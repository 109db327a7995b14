package contracts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ActionKind identifies the kind of corporate action.
type ActionKind string

const (
	ActionSplit    ActionKind = "split"    // 액면분할
	ActionDividend ActionKind = "dividend" // 배당락
	ActionRights   ActionKind = "rights"   // 무상증자
)

// ParseActionKind converts a raw string to an ActionKind, failing on unknown
// kinds rather than defaulting.
func ParseActionKind(raw string) (ActionKind, error) {
	switch ActionKind(raw) {
	case ActionSplit, ActionDividend, ActionRights:
		return ActionKind(raw), nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, raw)
}

// CorporateAction is one price-rescaling event. The Ratio applies to split and
// rights actions (1:50 분할 = 0.02); Dividend is the per-share cash amount on
// the ex-date.
type CorporateAction struct {
	Code     string          `json:"code"`
	Date     time.Time       `json:"date"`
	Kind     ActionKind      `json:"kind"`
	Ratio    decimal.Decimal `json:"ratio,omitempty"`
	Dividend decimal.Decimal `json:"dividend,omitempty"`
}

// NewCorporateAction validates and builds an action.
func NewCorporateAction(code string, date time.Time, kind ActionKind, ratio, dividend decimal.Decimal) (*CorporateAction, error) {
	switch kind {
	case ActionSplit, ActionRights:
		if ratio.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: %s %s on %s requires positive ratio, got %s",
				ErrInvalidAction, code, kind, date.Format("2006-01-02"), ratio)
		}
	case ActionDividend:
		if dividend.IsNegative() {
			return nil, fmt.Errorf("%w: %s dividend on %s is negative: %s",
				ErrInvalidAction, code, date.Format("2006-01-02"), dividend)
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, kind)
	}
	return &CorporateAction{Code: code, Date: date, Kind: kind, Ratio: ratio, Dividend: dividend}, nil
}
