package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is one daily OHLCV bar. Raw fields are immutable collector input in
// 원 (KRW); the Factor and Adj* fields are derived by the adjustment engine and
// recomputed whenever the corporate-action ledger changes.
type PriceBar struct {
	Code   string    `json:"code"`
	Date   time.Time `json:"date"`
	Open   int64     `json:"open"`
	High   int64     `json:"high"`
	Low    int64     `json:"low"`
	Close  int64     `json:"close"`
	Volume int64     `json:"volume"`

	Factor    decimal.Decimal `json:"factor"`
	AdjOpen   decimal.Decimal `json:"adj_open"`
	AdjHigh   decimal.Decimal `json:"adj_high"`
	AdjLow    decimal.Decimal `json:"adj_low"`
	AdjClose  decimal.Decimal `json:"adj_close"`
	AdjVolume decimal.Decimal `json:"adj_volume"`
}
