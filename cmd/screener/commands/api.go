package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pollmap/kr-stock-screener/internal/api"
	"github.com/pollmap/kr-stock-screener/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 스냅샷을 메모리에 적재하고 연도별 데이터셋을 구성
- 스크리닝/백테스트/종목 조회 엔드포인트 제공

Endpoints:
  GET  /health
  GET  /api/v1/screen/strategies
  POST /api/v1/screen/run
  POST /api/v1/backtest/run
  GET  /api/v1/stocks/{code}/prices
  GET  /api/v1/stocks/{code}/valuation

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== KR Stock Screener API Server ===")

	app, err := initApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.close()

	// Override port if flag is set
	if apiPort != "" {
		app.cfg.Port = apiPort
	}

	log := app.log
	log.WithFields(map[string]interface{}{
		"port":  app.cfg.Port,
		"env":   app.cfg.Env,
		"years": len(app.series.Years()),
	}).Info("Initializing API server")

	// Handlers
	screenH := handlers.NewScreenHandler(app.series, app.thresholds, app.cfg.API.CacheTTL, log)
	backtestH := handlers.NewBacktestHandler(app.series, app.thresholds, app.cfg.Backtest, log)
	stockH := handlers.NewStockHandler(app.snap, log)

	// Router + server
	router := api.NewRouter(app.cfg, screenH, backtestH, stockH, log)
	server := api.New(app.cfg, log, router)

	// Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", app.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/v1/screen/strategies")
	fmt.Println("  POST /api/v1/screen/run")
	fmt.Println("  POST /api/v1/backtest/run")
	fmt.Println("  GET  /api/v1/stocks/{code}/prices")
	fmt.Println("  GET  /api/v1/stocks/{code}/valuation")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
