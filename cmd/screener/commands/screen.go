package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pollmap/kr-stock-screener/internal/dataset"
	"github.com/pollmap/kr-stock-screener/internal/screening"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "스크리닝 전략 실행",
	Long: `지정 연도의 평가일 데이터셋에 스크리닝 전략을 실행합니다.

전략:
  value    가치투자 (저PER + 저PBR 복합 랭킹)
  quality  우량주 (고ROE)
  growth   성장주 (매출 성장률)

Example:
  go run ./cmd/screener screen --strategy value --year 2023
  go run ./cmd/screener screen --strategy quality --year 2023 --limit 30`,
	RunE: runScreen,
}

var (
	screenStrategy string
	screenYear     int
	screenLimit    int
)

func init() {
	rootCmd.AddCommand(screenCmd)

	// Flags
	screenCmd.Flags().StringVar(&screenStrategy, "strategy", "value", "전략 (value|quality|growth)")
	screenCmd.Flags().IntVar(&screenYear, "year", 0, "평가 연도 (기본: 데이터셋 마지막 연도)")
	screenCmd.Flags().IntVar(&screenLimit, "limit", 20, "출력 종목 수")
}

func runScreen(cmd *cobra.Command, args []string) error {
	fmt.Println("=== KR Stock Screener ===")

	app, err := initApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.close()

	registry := screening.Registry(app.thresholds)
	strat, ok := registry[screenStrategy]
	if !ok {
		return fmt.Errorf("unknown strategy %q (available: %s)", screenStrategy, strategyKeys(registry))
	}

	years := app.series.Years()
	if len(years) == 0 {
		return fmt.Errorf("dataset is empty: no evaluation periods built")
	}
	year := screenYear
	if year == 0 {
		year = years[len(years)-1]
	}

	period, ok := app.series.Period(year)
	if !ok {
		return fmt.Errorf("no dataset for year %d (available: %v)", year, years)
	}

	codes, err := strat.Screen(period)
	if err != nil {
		return fmt.Errorf("screen %s/%d: %w", screenStrategy, year, err)
	}
	if screenLimit > 0 && len(codes) > screenLimit {
		codes = codes[:screenLimit]
	}

	rows := make(map[string]dataset.Row, len(period.Rows))
	for _, row := range period.Rows {
		rows[row.Code] = row
	}

	fmt.Printf("\n📊 %s — %d년 %s 기준 (%d종목 중 %d 선정)\n\n",
		strat.Name, year, period.EvalDate.Format("2006-01-02"), len(period.Rows), len(codes))
	fmt.Printf("%-4s %-8s %-20s %8s %8s %8s %10s\n",
		"순위", "종목코드", "종목명", "PER", "PBR", "ROE(%)", "시가총액(억)")
	fmt.Println(strings.Repeat("-", 76))

	for i, code := range codes {
		row, ok := rows[code]
		if !ok {
			continue
		}
		fmt.Printf("%-4d %-8s %-20s %8.2f %8.2f %8.2f %10.0f\n",
			i+1, row.Code, truncateName(row.Name, 20),
			row.PER, row.PBR, row.ROE, row.MarketCap/1e8)
	}

	return nil
}

func strategyKeys(registry map[string]screening.Strategy) string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-1]) + "…"
}
