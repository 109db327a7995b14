package valuation

import "math"

// RIM (잔여이익모형) default parameters for the Korean market.
const (
	DefaultCostOfEquity = 0.10 // 무위험 + 리스크 프리미엄
	DefaultFadeRate     = 0.10 // ROE가 매년 요구수익률로 10%씩 수렴
)

// RIMCalculator implements the residual income model:
//
//	V = BV + Σ[(ROE − r) × BV / (1 + r)^t]
type RIMCalculator struct {
	CostOfEquity    float64
	ProjectionYears int
	FadeRate        float64
}

// NewRIMCalculator applies defaults for zero-valued inputs.
func NewRIMCalculator(costOfEquity float64, projectionYears int, fadeRate float64) *RIMCalculator {
	c := &RIMCalculator{CostOfEquity: costOfEquity, ProjectionYears: projectionYears, FadeRate: fadeRate}
	if c.CostOfEquity == 0 {
		c.CostOfEquity = DefaultCostOfEquity
	}
	if c.ProjectionYears == 0 {
		c.ProjectionYears = DefaultProjectionYears
	}
	if c.FadeRate == 0 {
		c.FadeRate = DefaultFadeRate
	}
	return c
}

// RIMResult holds an intrinsic-value computation.
type RIMResult struct {
	IntrinsicValue   float64 `json:"intrinsic_value"`
	ResidualIncomePV float64 `json:"residual_income_pv"`
	PerShare         float64 `json:"per_share"`
}

// Value computes intrinsic value from book value (원) and ROE. ROE above 1 is
// read as percent (15.0 → 0.15). Equity grows by growthRate each year; the
// ROE fades toward the cost of equity so excess returns are not projected
// forever.
func (c *RIMCalculator) Value(bookValue, roe, growthRate, shares float64) RIMResult {
	result := RIMResult{}
	if bookValue <= 0 {
		return result
	}

	r := c.CostOfEquity
	currentROE := roe
	if currentROE > 1 {
		currentROE /= 100
	}

	bv := bookValue
	pv := 0.0
	for year := 1; year <= c.ProjectionYears; year++ {
		if currentROE > r {
			currentROE = r + (currentROE-r)*(1-c.FadeRate)
		}
		residualIncome := (currentROE - r) * bv
		pv += residualIncome / math.Pow(1+r, float64(year))
		bv *= 1 + growthRate
	}

	result.ResidualIncomePV = pv
	result.IntrinsicValue = bookValue + pv
	if shares > 0 {
		result.PerShare = result.IntrinsicValue / shares
	}
	return result
}
