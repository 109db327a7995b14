package backtest

import (
	"math"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
)

// computeMetrics fills the summary aggregates from the realized periods and
// the cumulative curve. Called once, after all periods.
func computeMetrics(result *contracts.BacktestResult) {
	returns := make([]float64, len(result.Periods))
	for i, p := range result.Periods {
		returns[i] = p.Return
	}
	if len(returns) == 0 {
		return
	}

	result.TotalReturn = result.FinalValue() - 1

	mean := meanOf(returns)
	result.AnnualizedReturn = mean
	result.Volatility = stdDev(returns, mean)

	// 변동성 0이면 Sharpe도 0 (0으로 나누기 방지)
	if result.Volatility > 0 {
		result.SharpeRatio = mean / result.Volatility
	}

	result.MaxDrawdown = maxDrawdown(result.Cumulative)

	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	result.WinRate = float64(wins) / float64(len(returns))
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// maxDrawdown is the largest peak-to-trough fractional decline along the
// cumulative value curve.
func maxDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0]
	maxDD := 0.0
	for _, value := range curve {
		if value > peak {
			peak = value
		}
		if peak > 0 {
			if dd := (peak - value) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
