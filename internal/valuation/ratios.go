// Package valuation holds the closed-form formula plug-ins: financial ratios,
// DCF and RIM fair values. Pure arithmetic over already-resolved statements;
// no temporal logic lives here.
package valuation

import "github.com/pollmap/kr-stock-screener/internal/contracts"

// RatioSet is the indicator row computed for one stock at one evaluation
// point. Zero means "not computable" (missing account or zero denominator);
// screening conditions guard with > 0 accordingly.
type RatioSet struct {
	PER             float64 `json:"per"`
	PBR             float64 `json:"pbr"`
	PSR             float64 `json:"psr"`
	ROE             float64 `json:"roe"`              // %
	ROA             float64 `json:"roa"`              // %
	DebtRatio       float64 `json:"debt_ratio"`       // 부채비율 %
	OperatingMargin float64 `json:"operating_margin"` // %
	NetMargin       float64 `json:"net_margin"`       // %
	CurrentRatio    float64 `json:"current_ratio"`    // 유동비율 %
	RevenueGrowth   float64 `json:"revenue_growth"`   // % YoY
	OCFToNetIncome  float64 `json:"ocf_to_net_income"`
}

// ComputeRatios derives the indicator row from a normalized account map and a
// market cap in 원. A nil map yields an all-zero set.
func ComputeRatios(accounts map[string]float64, marketCap float64) RatioSet {
	get := func(key string) float64 { return accounts[key] }

	revenue := get(contracts.AccountRevenue)
	opIncome := get(contracts.AccountOperatingIncome)
	netIncome := get(contracts.AccountNetIncome)
	assets := get(contracts.AccountTotalAssets)
	liabilities := get(contracts.AccountTotalLiabilities)
	equity := get(contracts.AccountTotalEquity)
	currentAssets := get(contracts.AccountCurrentAssets)
	currentLiabs := get(contracts.AccountCurrentLiabs)
	ocf := get(contracts.AccountOCF)

	rs := RatioSet{}
	if netIncome > 0 {
		rs.PER = safeDiv(marketCap, netIncome)
	}
	if equity > 0 {
		rs.PBR = safeDiv(marketCap, equity)
		rs.ROE = safeDiv(netIncome, equity) * 100
		rs.DebtRatio = safeDiv(liabilities, equity) * 100
	}
	rs.PSR = safeDiv(marketCap, revenue)
	rs.ROA = safeDiv(netIncome, assets) * 100
	rs.OperatingMargin = safeDiv(opIncome, revenue) * 100
	rs.NetMargin = safeDiv(netIncome, revenue) * 100
	rs.CurrentRatio = safeDiv(currentAssets, currentLiabs) * 100
	rs.OCFToNetIncome = safeDiv(ocf, netIncome)
	return rs
}

// GrowthRate returns the YoY growth in percent, or 0 when the prior value is
// not positive.
func GrowthRate(current, prior float64) float64 {
	if prior <= 0 {
		return 0
	}
	return (current - prior) / prior * 100
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
