package dataset

import (
	"time"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/internal/pit"
	"github.com/pollmap/kr-stock-screener/internal/universe"
	"github.com/pollmap/kr-stock-screener/internal/valuation"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

// BuilderConfig sets the annual evaluation point. The default is April 1:
// by then the previous fiscal year's 사업보고서 is public under the
// conservative 90-day rule, so selection never reads unannounced data.
type BuilderConfig struct {
	RebalanceMonth time.Month
	RebalanceDay   int
}

// DefaultBuilderConfig returns the April 1 evaluation point.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{RebalanceMonth: time.April, RebalanceDay: 1}
}

// Builder folds the point-in-time view, the listing tracker and the adjusted
// price table into per-year period datasets.
type Builder struct {
	snap    *Snapshot
	view    *pit.View
	tracker *universe.Tracker
	config  BuilderConfig
	log     *logger.Logger
}

// NewBuilder indexes the snapshot. The snapshot is treated as immutable from
// here on.
func NewBuilder(snap *Snapshot, config BuilderConfig, log *logger.Logger) *Builder {
	tracker := universe.NewTracker(log)
	for _, interval := range snap.Intervals {
		tracker.AddInterval(interval)
	}
	return &Builder{
		snap:    snap,
		view:    pit.NewView(snap.Financials, log),
		tracker: tracker,
		config:  config,
		log:     log,
	}
}

// View exposes the point-in-time view built over the snapshot.
func (b *Builder) View() *pit.View {
	return b.view
}

// Tracker exposes the listing tracker built over the snapshot.
func (b *Builder) Tracker() *universe.Tracker {
	return b.tracker
}

// Build produces the period series for [startYear, endYear]. Years with no
// universe or no prices simply yield no period; the driver logs and skips
// them.
func (b *Builder) Build(startYear, endYear int) *Series {
	periods := make([]*PeriodData, 0, endYear-startYear+1)
	for year := startYear; year <= endYear; year++ {
		period := b.buildPeriod(year)
		if period == nil {
			b.log.WithField("year", year).Warn("no dataset for period")
			continue
		}
		periods = append(periods, period)
	}
	return NewSeries(periods...)
}

func (b *Builder) buildPeriod(year int) *PeriodData {
	evalDate := time.Date(year, b.config.RebalanceMonth, b.config.RebalanceDay, 0, 0, 0, 0, time.UTC)
	prevEval := evalDate.AddDate(-1, 0, 0)

	univ := b.tracker.UniverseAt(evalDate, b.snap.Securities)
	if len(univ) == 0 {
		return nil
	}

	period := &PeriodData{
		Year:     year,
		EvalDate: evalDate,
		Returns:  make(map[string]float64),
	}

	for _, sec := range univ {
		adjClose, hasPrice := b.snap.closeAsOf(sec.Code, evalDate)

		// Realized return over the year ending at this eval date. Built for
		// every universe member with prices, record or not, so realization is
		// filtered by the same universe as selection.
		if hasPrice {
			if prevClose, ok := b.snap.closeAsOf(sec.Code, prevEval); ok {
				period.Returns[sec.Code] = (adjClose - prevClose) / prevClose
			}
		}

		rec, ok := b.view.LatestAvailableAsOf(sec.Code, evalDate)
		if !ok || !hasPrice {
			continue
		}
		if !pit.ValidateNoLookahead(evalDate, rec.PeriodEnd(), &rec.AnnouncedAt) {
			// Advisory only, but a violation here means the view itself is
			// broken; drop the row rather than trade on it.
			b.log.WithFields(map[string]interface{}{
				"code":       sec.Code,
				"eval_date":  evalDate.Format("2006-01-02"),
				"period_end": rec.PeriodEnd().Format("2006-01-02"),
			}).Warn("look-ahead violation, row dropped")
			continue
		}

		period.Rows = append(period.Rows, b.buildRow(sec, rec, adjClose, evalDate))
	}

	if len(period.Rows) == 0 && len(period.Returns) == 0 {
		return nil
	}
	b.log.WithFields(map[string]interface{}{
		"year":    year,
		"rows":    len(period.Rows),
		"returns": len(period.Returns),
	}).Debug("period dataset built")
	return period
}

func (b *Builder) buildRow(sec *contracts.Security, rec *contracts.FinancialRecord,
	adjClose float64, evalDate time.Time) Row {

	marketCap := 0.0
	if shares, ok := rec.Account(contracts.AccountShares); ok && shares > 0 {
		marketCap = adjClose * shares
	}

	ratios := valuation.ComputeRatios(rec.Accounts, marketCap)

	// YoY 매출성장률: 직전 연도 같은 기간 레코드가 공표되어 있을 때만.
	if revenue, ok := rec.Account(contracts.AccountRevenue); ok {
		if prior := b.priorRecord(rec, evalDate); prior != nil {
			if priorRevenue, ok := prior.Account(contracts.AccountRevenue); ok {
				ratios.RevenueGrowth = valuation.GrowthRate(revenue, priorRevenue)
			}
		}
	}

	return Row{
		Code:       sec.Code,
		Name:       sec.Name,
		Market:     sec.Market,
		Sector:     sec.Sector,
		RatioSet:   ratios,
		AdjClose:   adjClose,
		MarketCap:  marketCap,
		FiscalYear: rec.FiscalYear,
	}
}

// priorRecord finds the prior-year record with the same fiscal period among
// those already announced at evalDate.
func (b *Builder) priorRecord(rec *contracts.FinancialRecord, evalDate time.Time) *contracts.FinancialRecord {
	for _, candidate := range b.view.RecordsAvailableAsOf(rec.Code, evalDate) {
		if candidate.FiscalYear == rec.FiscalYear-1 && candidate.Period == rec.Period {
			return candidate
		}
	}
	return nil
}
