// Package backtest simulates periodic rebalancing over the bias-free dataset
// and reports the performance curve.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/internal/dataset"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

// ScreenFunc is the caller-supplied screening function: it receives one
// period's bias-free dataset and returns a ranked subset of stock codes. The
// driver never inspects its logic.
type ScreenFunc func(period *dataset.PeriodData) ([]string, error)

// Config holds driver parameters.
type Config struct {
	Strategy     string
	StartYear    int
	EndYear      int
	MaxPositions int
}

// Driver runs the period state machine: SELECT → HOLD → REALIZE → ACCUMULATE.
// ⭐ SSOT: 백테스팅 실행은 여기서만
//
// Periods run strictly in order; each period's cumulative value is an input
// to the next, so the loop cannot be parallelized. There is no I/O and no
// blocking inside the run.
type Driver struct {
	config Config
	log    *logger.Logger
}

// NewDriver creates a driver.
func NewDriver(config Config, log *logger.Logger) *Driver {
	return &Driver{config: config, log: log}
}

// Run executes the backtest over the series. Single bad periods are skipped
// and logged; the run itself fails only on misconfiguration.
func (d *Driver) Run(ctx context.Context, series *dataset.Series, screen ScreenFunc) (*contracts.BacktestResult, error) {
	if screen == nil {
		return nil, fmt.Errorf("screening function is required")
	}
	if d.config.MaxPositions <= 0 {
		return nil, fmt.Errorf("max positions must be positive, got %d", d.config.MaxPositions)
	}
	if d.config.StartYear > d.config.EndYear {
		return nil, fmt.Errorf("start year %d after end year %d", d.config.StartYear, d.config.EndYear)
	}

	result := &contracts.BacktestResult{
		RunID:      uuid.NewString(),
		Strategy:   d.config.Strategy,
		StartYear:  d.config.StartYear,
		EndYear:    d.config.EndYear,
		Cumulative: []float64{1.0},
	}

	d.log.WithFields(map[string]interface{}{
		"run_id":        result.RunID,
		"strategy":      d.config.Strategy,
		"start_year":    d.config.StartYear,
		"end_year":      d.config.EndYear,
		"max_positions": d.config.MaxPositions,
	}).Info("backtest started")

	started := time.Now()

	// The last year has no following period to realize against, so the
	// selection loop stops one year short.
	for year := d.config.StartYear; year < d.config.EndYear; year++ {
		period, ok := series.Period(year)
		if !ok {
			d.skip(result, year, "no dataset")
			continue
		}

		holdings, err := d.selectHoldings(period, screen)
		if err != nil {
			d.skip(result, year, err.Error())
			continue
		}
		if len(holdings) == 0 {
			d.skip(result, year, "empty selection")
			continue
		}

		next, ok := series.Period(year + 1)
		if !ok {
			d.skip(result, year, "no next-period dataset")
			continue
		}

		periodReturn := d.realize(year, holdings, next)

		result.Periods = append(result.Periods, contracts.BacktestPeriod{
			Year:     year,
			Seq:      len(result.Periods),
			Holdings: holdings,
			Return:   periodReturn,
		})
		last := result.Cumulative[len(result.Cumulative)-1]
		result.Cumulative = append(result.Cumulative, last*(1+periodReturn))
	}

	computeMetrics(result)

	d.log.WithFields(map[string]interface{}{
		"run_id":       result.RunID,
		"periods":      len(result.Periods),
		"skipped":      len(result.Skipped),
		"total_return": fmt.Sprintf("%.2f%%", result.TotalReturn*100),
		"sharpe":       fmt.Sprintf("%.2f", result.SharpeRatio),
		"mdd":          fmt.Sprintf("%.2f%%", result.MaxDrawdown*100),
		"duration":     time.Since(started).String(),
	}).Info("backtest completed")

	return result, nil
}

// selectHoldings invokes the opaque screening function and caps the result.
// A panicking screener is treated like a failing one: that period is skipped,
// not the run.
func (d *Driver) selectHoldings(period *dataset.PeriodData, screen ScreenFunc) (holdings []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			holdings, err = nil, fmt.Errorf("screening panic: %v", r)
		}
	}()

	selected, err := screen(period)
	if err != nil {
		return nil, fmt.Errorf("screening: %w", err)
	}
	if len(selected) > d.config.MaxPositions {
		selected = selected[:d.config.MaxPositions]
	}
	return selected, nil
}

// realize computes the equal-weighted arithmetic mean of the holdings'
// next-period returns. A holding missing from the next period contributes no
// return: excluded from the averaging, not counted as zero.
func (d *Driver) realize(year int, holdings []string, next *dataset.PeriodData) float64 {
	sum, count := 0.0, 0
	for _, code := range holdings {
		r, ok := next.Returns[code]
		if !ok {
			d.log.WithFields(map[string]interface{}{
				"year": year,
				"code": code,
			}).Debug("holding missing in next period, excluded from averaging")
			continue
		}
		sum += r
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func (d *Driver) skip(result *contracts.BacktestResult, year int, reason string) {
	result.Skipped = append(result.Skipped, year)
	d.log.WithFields(map[string]interface{}{
		"year":   year,
		"reason": reason,
	}).Warn("period skipped")
}
