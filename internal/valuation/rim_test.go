package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRIMCalculator_Defaults(t *testing.T) {
	c := NewRIMCalculator(0, 0, 0)
	assert.Equal(t, DefaultCostOfEquity, c.CostOfEquity)
	assert.Equal(t, DefaultProjectionYears, c.ProjectionYears)
	assert.Equal(t, DefaultFadeRate, c.FadeRate)
}

func TestRIMCalculator_Value(t *testing.T) {
	c := &RIMCalculator{CostOfEquity: 0.10, ProjectionYears: 1, FadeRate: 0.10}

	// 1년 투영 수기 계산: ROE 20% → fade 후 0.10 + 0.10×0.9 = 0.19
	// RI = (0.19 − 0.10) × 1000 = 90 → / 1.1 = 81.818...
	result := c.Value(1000, 0.20, 0, 100)
	assert.InDelta(t, 90.0/1.1, result.ResidualIncomePV, 1e-9)
	assert.InDelta(t, 1000+90.0/1.1, result.IntrinsicValue, 1e-9)
	assert.InDelta(t, (1000+90.0/1.1)/100, result.PerShare, 1e-9)
}

func TestRIMCalculator_Value_PercentROE(t *testing.T) {
	c := &RIMCalculator{CostOfEquity: 0.10, ProjectionYears: 1, FadeRate: 0.10}

	// 20.0 (%) 표기와 0.20 표기가 같은 결과여야 한다
	fromPercent := c.Value(1000, 20.0, 0, 100)
	fromFraction := c.Value(1000, 0.20, 0, 100)
	assert.InDelta(t, fromFraction.IntrinsicValue, fromPercent.IntrinsicValue, 1e-9)
}

func TestRIMCalculator_Value_FadesExcessReturns(t *testing.T) {
	c := NewRIMCalculator(0.10, 20, 0.10)

	// 초과수익이 영구 투영되지 않는다: 장기 투영이라도 잔여이익 PV는 유한 수렴
	result := c.Value(1000, 0.30, 0, 0)
	assert.Greater(t, result.ResidualIncomePV, 0.0)
	assert.Less(t, result.ResidualIncomePV, 1000.0)
}

func TestRIMCalculator_Value_Undefined(t *testing.T) {
	c := NewRIMCalculator(0, 0, 0)

	// 자본잠식이면 계산 불가
	result := c.Value(-500, 0.15, 0, 100)
	assert.Zero(t, result.IntrinsicValue)

	// ROE가 요구수익률 이하면 잔여이익은 음수: 내재가치 < 장부가
	result = c.Value(1000, 0.05, 0, 100)
	assert.Less(t, result.IntrinsicValue, 1000.0)
}
