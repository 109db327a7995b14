package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "편향 없는 한국 주식 스크리닝/백테스팅 엔진",
	Long: `KR Stock Screener CLI

Point-in-Time 재무 뷰 + 상장 구간 추적 + 수정주가 엔진 위에서
스크리닝 전략을 실행하고 백테스트합니다.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener api
  go run ./cmd/screener screen --strategy value --year 2023
  go run ./cmd/screener backtest run --from-year 2015 --to-year 2024
  go run ./cmd/screener status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
