package contracts

// BacktestPeriod is one rebalancing period's outcome.
type BacktestPeriod struct {
	Year     int      `json:"year"`
	Seq      int      `json:"seq"` // 0-based position in the period sequence
	Holdings []string `json:"holdings"`
	Return   float64  `json:"return"` // realized forward return (equal-weighted mean)
}

// BacktestResult is the output of one backtest invocation.
type BacktestResult struct {
	RunID     string `json:"run_id"`
	Strategy  string `json:"strategy"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`

	Periods    []BacktestPeriod `json:"periods"`
	Skipped    []int            `json:"skipped,omitempty"` // years skipped for data gaps
	Cumulative []float64        `json:"cumulative"`        // value curve, seeded at 1.0

	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"` // mean of period returns
	Volatility       float64 `json:"volatility"`        // population std dev of period returns
	SharpeRatio      float64 `json:"sharpe_ratio"`      // 0 when volatility is 0
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRate          float64 `json:"win_rate"`
}

// PeriodCount returns the number of realized (non-skipped) periods.
func (r *BacktestResult) PeriodCount() int {
	return len(r.Periods)
}

// FinalValue returns the last point of the cumulative curve.
func (r *BacktestResult) FinalValue() float64 {
	if len(r.Cumulative) == 0 {
		return 1.0
	}
	return r.Cumulative[len(r.Cumulative)-1]
}
