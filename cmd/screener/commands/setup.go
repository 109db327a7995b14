package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/pollmap/kr-stock-screener/internal/dataset"
	"github.com/pollmap/kr-stock-screener/internal/screening"
	"github.com/pollmap/kr-stock-screener/internal/store"
	"github.com/pollmap/kr-stock-screener/pkg/config"
	"github.com/pollmap/kr-stock-screener/pkg/database"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

// appContext bundles the dependencies every data-bearing command needs.
type appContext struct {
	cfg        *config.Config
	log        *logger.Logger
	db         *database.DB
	snap       *dataset.Snapshot
	series     *dataset.Series
	thresholds screening.Thresholds
}

func (a *appContext) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// initApp loads config, connects to the database, pulls the snapshot and
// builds the per-year dataset series. Commands share this to keep wiring
// in one place.
func initApp(ctx context.Context) (*appContext, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Load snapshot (securities, listing intervals, financials, adjusted prices)
	loader := store.NewSnapshotLoader(db.Pool, log)
	snap, err := loader.Load(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	// 5. Build the per-year evaluation series
	builder := dataset.NewBuilder(snap, dataset.DefaultBuilderConfig(), log)
	series := builder.Build(cfg.Backtest.StartYear, cfg.Backtest.EndYear)

	// 6. Screening thresholds (YAML 파일이 없으면 기본값)
	thresholds := screening.DefaultThresholds()
	if path := cfg.Backtest.StrategyPath; path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			loaded, loadErr := screening.LoadThresholds(path)
			if loadErr != nil {
				db.Close()
				return nil, fmt.Errorf("load thresholds %s: %w", path, loadErr)
			}
			thresholds = *loaded
		} else {
			log.WithField("path", path).Warn("Strategy file not found, using defaults")
		}
	}

	return &appContext{
		cfg:        cfg,
		log:        log,
		db:         db,
		snap:       snap,
		series:     series,
		thresholds: thresholds,
	}, nil
}
