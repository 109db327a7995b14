package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pollmap/kr-stock-screener/pkg/config"
	"github.com/pollmap/kr-stock-screener/pkg/database"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "데이터베이스 연결 및 데이터 현황 확인",
	Long: `데이터베이스 연결 상태와 적재된 데이터 현황을 확인합니다.

Example:
  go run ./cmd/screener status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== KR Stock Screener Status ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	health, err := db.HealthCheck(cmd.Context())
	if err != nil {
		fmt.Printf("\n❌ Database: unhealthy (%s)\n", health.Error)
		return err
	}
	fmt.Printf("\n✅ Database: healthy (ping %s, conns %d/%d)\n",
		health.ResponseTime, health.IdleConns, health.TotalConns)

	// Table row counts
	tables := []string{
		"data.securities",
		"data.listing_intervals",
		"data.financials",
		"data.daily_prices",
		"data.corporate_actions",
	}
	fmt.Println("\n📦 Data:")
	for _, table := range tables {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := db.Pool.QueryRow(cmd.Context(), query).Scan(&count); err != nil {
			log.WithError(err).WithField("table", table).Warn("Count query failed")
			fmt.Printf("  %-26s ?\n", table)
			continue
		}
		fmt.Printf("  %-26s %d rows\n", table, count)
	}

	return nil
}
