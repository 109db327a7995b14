package screening

import (
	"sort"

	"github.com/pollmap/kr-stock-screener/internal/backtest"
	"github.com/pollmap/kr-stock-screener/internal/dataset"
)

// Strategy is a named screening function the driver can run.
type Strategy struct {
	Name        string
	Description string
	Screen      backtest.ScreenFunc
}

// Registry returns the built-in strategies wired to the given thresholds.
func Registry(t Thresholds) map[string]Strategy {
	return map[string]Strategy{
		"value": {
			Name:        "가치투자 (그레이엄)",
			Description: "저PER·저PBR, 건전한 재무구조",
			Screen:      valueScreen(t.Value),
		},
		"quality": {
			Name:        "퀄리티 (버핏)",
			Description: "높은 ROE·영업이익률, 이익의 현금 뒷받침",
			Screen:      qualityScreen(t.Quality),
		},
		"growth": {
			Name:        "성장투자 (린치)",
			Description: "높은 매출성장, 과도하지 않은 PER",
			Screen:      growthScreen(t.Growth),
		},
	}
}

// valueScreen ranks survivors by composite PER+PBR rank, ascending.
func valueScreen(c ValueCriteria) backtest.ScreenFunc {
	return func(period *dataset.PeriodData) ([]string, error) {
		passed := make([]dataset.Row, 0)
		for _, row := range period.Rows {
			if row.PER <= 0 || row.PER >= c.MaxPER {
				continue
			}
			if row.PBR <= 0 || row.PBR >= c.MaxPBR {
				continue
			}
			if row.ROE <= c.MinROE {
				continue
			}
			if row.DebtRatio >= c.MaxDebtRatio {
				continue
			}
			passed = append(passed, row)
		}

		perRank := rankAscending(passed, func(r dataset.Row) float64 { return r.PER })
		pbrRank := rankAscending(passed, func(r dataset.Row) float64 { return r.PBR })

		sort.SliceStable(passed, func(i, j int) bool {
			return perRank[passed[i].Code]+pbrRank[passed[i].Code] <
				perRank[passed[j].Code]+pbrRank[passed[j].Code]
		})
		return codesOf(passed), nil
	}
}

// qualityScreen ranks survivors by ROE, descending.
func qualityScreen(c QualityCriteria) backtest.ScreenFunc {
	return func(period *dataset.PeriodData) ([]string, error) {
		passed := make([]dataset.Row, 0)
		for _, row := range period.Rows {
			if row.ROE <= c.MinROE {
				continue
			}
			if row.OperatingMargin <= c.MinOperatingMargin {
				continue
			}
			if row.OCFToNetIncome <= c.MinOCFToNetIncome {
				continue
			}
			passed = append(passed, row)
		}
		sort.SliceStable(passed, func(i, j int) bool {
			return passed[i].ROE > passed[j].ROE
		})
		return codesOf(passed), nil
	}
}

// growthScreen ranks survivors by revenue growth, descending.
func growthScreen(c GrowthCriteria) backtest.ScreenFunc {
	return func(period *dataset.PeriodData) ([]string, error) {
		passed := make([]dataset.Row, 0)
		for _, row := range period.Rows {
			if row.RevenueGrowth <= c.MinRevenueGrowth {
				continue
			}
			if row.PER <= 0 || row.PER >= c.MaxPER {
				continue
			}
			passed = append(passed, row)
		}
		sort.SliceStable(passed, func(i, j int) bool {
			return passed[i].RevenueGrowth > passed[j].RevenueGrowth
		})
		return codesOf(passed), nil
	}
}

// rankAscending assigns 1-based ranks by the given metric, ascending.
func rankAscending(rows []dataset.Row, metric func(dataset.Row) float64) map[string]int {
	sorted := make([]dataset.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return metric(sorted[i]) < metric(sorted[j])
	})
	ranks := make(map[string]int, len(sorted))
	for i, row := range sorted {
		ranks[row.Code] = i + 1
	}
	return ranks
}

func codesOf(rows []dataset.Row) []string {
	codes := make([]string, len(rows))
	for i, row := range rows {
		codes[i] = row.Code
	}
	return codes
}
