package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pollmap/kr-stock-screener/internal/backtest"
	"github.com/pollmap/kr-stock-screener/internal/screening"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "백테스팅 프레임워크",
	Long: `연 단위 리밸런싱 백테스트를 실행합니다.

각 평가일마다 당시 상장 종목만으로 유니버스를 구성하고,
당시 공시된 재무제표만으로 스크리닝한 뒤 (look-ahead 차단),
다음 평가일까지의 수정주가 수익률로 실현합니다.

Example:
  go run ./cmd/screener backtest run --from-year 2015 --to-year 2024
  go run ./cmd/screener backtest run --strategy quality --max-positions 10`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "백테스트 실행",
		Long: `지정된 연도 구간 동안 백테스트를 실행합니다.

Flags:
  --strategy       전략 (value|quality|growth, 기본: value)
  --from-year      시작 연도 (기본: 설정값)
  --to-year        종료 연도 (기본: 설정값)
  --max-positions  최대 보유 종목 수 (기본: 설정값)

Example:
  go run ./cmd/screener backtest run --from-year 2015 --to-year 2024
  go run ./cmd/screener backtest run --strategy growth --max-positions 15`,
		RunE: runBacktest,
	}

	// Flags
	backtestStrategy     string
	backtestFromYear     int
	backtestToYear       int
	backtestMaxPositions int
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	// Flags
	backtestRunCmd.Flags().StringVar(&backtestStrategy, "strategy", "value", "전략 (value|quality|growth)")
	backtestRunCmd.Flags().IntVar(&backtestFromYear, "from-year", 0, "시작 연도")
	backtestRunCmd.Flags().IntVar(&backtestToYear, "to-year", 0, "종료 연도")
	backtestRunCmd.Flags().IntVar(&backtestMaxPositions, "max-positions", 0, "최대 보유 종목 수")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== KR Stock Screener Backtest ===")

	app, err := initApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.close()

	registry := screening.Registry(app.thresholds)
	strat, ok := registry[backtestStrategy]
	if !ok {
		return fmt.Errorf("unknown strategy %q (available: %s)", backtestStrategy, strategyKeys(registry))
	}

	cfg := backtest.Config{
		Strategy:     backtestStrategy,
		StartYear:    backtestFromYear,
		EndYear:      backtestToYear,
		MaxPositions: backtestMaxPositions,
	}
	if cfg.StartYear == 0 {
		cfg.StartYear = app.cfg.Backtest.StartYear
	}
	if cfg.EndYear == 0 {
		cfg.EndYear = app.cfg.Backtest.EndYear
	}
	if cfg.MaxPositions == 0 {
		cfg.MaxPositions = app.cfg.Backtest.MaxPositions
	}

	fmt.Printf("\n📅 Period: %d ~ %d (매년 4월 1일 리밸런싱)\n", cfg.StartYear, cfg.EndYear)
	fmt.Printf("🎯 Strategy: %s (%s)\n", backtestStrategy, strat.Name)
	fmt.Printf("📦 Max positions: %d\n\n", cfg.MaxPositions)
	fmt.Println("🚀 Starting backtest...")

	driver := backtest.NewDriver(cfg, app.log)
	result, err := driver.Run(cmd.Context(), app.series, strat.Screen)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	// Period table
	fmt.Printf("\n%-6s %-10s %10s %10s %8s\n", "연도", "보유기간", "종목수", "수익률", "누적")
	fmt.Println(strings.Repeat("-", 50))
	for i, p := range result.Periods {
		fmt.Printf("%-6d %d.04~%d.04 %10d %9.2f%% %8.3f\n",
			p.Year, p.Year, p.Year+1, len(p.Holdings), p.Return*100, result.Cumulative[i+1])
	}
	if len(result.Skipped) > 0 {
		fmt.Printf("\n⚠️  Skipped years: %v\n", result.Skipped)
	}

	// Summary metrics
	fmt.Println("\n================ 결과 요약 ================")
	fmt.Printf("Run ID:            %s\n", result.RunID)
	fmt.Printf("Total Return:      %.2f%%\n", result.TotalReturn*100)
	fmt.Printf("Annualized Return: %.2f%%\n", result.AnnualizedReturn*100)
	fmt.Printf("Volatility:        %.2f%%\n", result.Volatility*100)
	fmt.Printf("Sharpe Ratio:      %.2f\n", result.SharpeRatio)
	fmt.Printf("Max Drawdown:      %.2f%%\n", result.MaxDrawdown*100)
	fmt.Printf("Win Rate:          %.2f%%\n", result.WinRate*100)
	fmt.Println("==========================================")

	return nil
}
