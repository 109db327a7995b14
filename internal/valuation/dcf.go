package valuation

import "math"

// DCF default assumptions for the Korean market.
const (
	DefaultWACC            = 0.10
	DefaultTerminalGrowth  = 0.02 // GDP 성장률 수준
	DefaultProjectionYears = 10

	defaultGrowthEstimate = 0.05
	maxGrowthEstimate     = 0.15 // 보수적 상한
)

// DCFCalculator produces a discounted-cash-flow fair value from a base free
// cash flow.
type DCFCalculator struct {
	WACC            float64
	TerminalGrowth  float64
	ProjectionYears int
}

// NewDCFCalculator applies the default assumptions for zero-valued inputs.
func NewDCFCalculator(wacc, terminalGrowth float64, projectionYears int) *DCFCalculator {
	c := &DCFCalculator{WACC: wacc, TerminalGrowth: terminalGrowth, ProjectionYears: projectionYears}
	if c.WACC == 0 {
		c.WACC = DefaultWACC
	}
	if c.TerminalGrowth == 0 {
		c.TerminalGrowth = DefaultTerminalGrowth
	}
	if c.ProjectionYears == 0 {
		c.ProjectionYears = DefaultProjectionYears
	}
	return c
}

// DCFResult holds a fair-value computation.
type DCFResult struct {
	GrowthRate      float64 `json:"growth_rate"`
	EnterpriseValue float64 `json:"enterprise_value"`
	EquityValue     float64 `json:"equity_value"`
	PerShare        float64 `json:"per_share"`
	TerminalValue   float64 `json:"terminal_value"` // discounted
}

// EstimateGrowthRate derives a growth assumption from historical FCF, oldest
// first, using CAGR over the positive values. Too little history falls back
// to 5%; the estimate is capped so one lucky stretch cannot dominate.
func (c *DCFCalculator) EstimateGrowthRate(historicalFCF []float64) float64 {
	positive := make([]float64, 0, len(historicalFCF))
	for _, f := range historicalFCF {
		if f > 0 {
			positive = append(positive, f)
		}
	}
	if len(positive) < 2 {
		return defaultGrowthEstimate
	}

	start, end := positive[0], positive[len(positive)-1]
	years := float64(len(positive) - 1)
	cagr := math.Pow(end/start, 1/years) - 1

	if cagr > maxGrowthEstimate {
		return maxGrowthEstimate
	}
	if cagr < 0 {
		return 0
	}
	return cagr
}

// FairValue discounts projected FCF plus a Gordon terminal value. Shares or
// WACC ≤ terminal growth make the model undefined and yield a zero result.
func (c *DCFCalculator) FairValue(baseFCF, growth, netDebt, shares float64) DCFResult {
	result := DCFResult{GrowthRate: growth}
	if baseFCF <= 0 || c.WACC <= c.TerminalGrowth {
		return result
	}

	pv := 0.0
	fcf := baseFCF
	for year := 1; year <= c.ProjectionYears; year++ {
		fcf *= 1 + growth
		pv += fcf / math.Pow(1+c.WACC, float64(year))
	}

	terminal := fcf * (1 + c.TerminalGrowth) / (c.WACC - c.TerminalGrowth)
	result.TerminalValue = terminal / math.Pow(1+c.WACC, float64(c.ProjectionYears))

	result.EnterpriseValue = pv + result.TerminalValue
	result.EquityValue = result.EnterpriseValue - netDebt
	if shares > 0 {
		result.PerShare = result.EquityValue / shares
	}
	return result
}

// Sensitivity returns fair values per share across WACC offsets of ±1%p and
// ±2%p, keyed by the WACC used. 민감도 분석용.
func (c *DCFCalculator) Sensitivity(baseFCF, growth, netDebt, shares float64) map[float64]float64 {
	offsets := []float64{-0.02, -0.01, 0, 0.01, 0.02}
	grid := make(map[float64]float64, len(offsets))
	for _, off := range offsets {
		alt := &DCFCalculator{
			WACC:            c.WACC + off,
			TerminalGrowth:  c.TerminalGrowth,
			ProjectionYears: c.ProjectionYears,
		}
		grid[alt.WACC] = alt.FairValue(baseFCF, growth, netDebt, shares).PerShare
	}
	return grid
}
