package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Backtest defaults
	Backtest BacktestConfig

	// API façade
	API APIConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// BacktestConfig holds default backtest parameters
type BacktestConfig struct {
	MaxPositions int // 최대 보유 종목수
	StartYear    int
	EndYear      int
	StrategyPath string // 스크리닝 임계값 YAML 경로
}

// APIConfig holds settings for the REST façade
type APIConfig struct {
	RateLimitRPS   float64       // 토큰버킷 초당 보충량
	RateLimitBurst int           // 버스트 허용량
	CacheTTL       time.Duration // 스크리닝 결과 캐시 TTL
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "kr_screener"),
			User:            getEnv("DB_USER", "kr_screener"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Backtest: BacktestConfig{
			MaxPositions: getEnvAsInt("BACKTEST_MAX_POSITIONS", 20),
			StartYear:    getEnvAsInt("BACKTEST_START_YEAR", 2015),
			EndYear:      getEnvAsInt("BACKTEST_END_YEAR", time.Now().Year()),
			StrategyPath: getEnv("STRATEGY_CONFIG", "config/strategy/default.yaml"),
		},

		API: APIConfig{
			RateLimitRPS:   getEnvAsFloat("API_RATE_LIMIT_RPS", 10),
			RateLimitBurst: getEnvAsInt("API_RATE_LIMIT_BURST", 20),
			CacheTTL:       getEnvAsDuration("API_CACHE_TTL", "5m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// DATABASE_URL 없으면 개별 항목으로 조립
	if cfg.Database.URL == "" {
		cfg.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Database.User, cfg.Database.Password,
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Name,
		)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Backtest.MaxPositions <= 0 {
		return fmt.Errorf("BACKTEST_MAX_POSITIONS must be positive, got %d", c.Backtest.MaxPositions)
	}
	if c.Backtest.StartYear > c.Backtest.EndYear {
		return fmt.Errorf("BACKTEST_START_YEAR %d after BACKTEST_END_YEAR %d",
			c.Backtest.StartYear, c.Backtest.EndYear)
	}
	return nil
}

// loadEnvFile tries a few well-known locations for a .env file.
// 파일이 없어도 에러 아님 (환경변수 직접 주입 허용).
func loadEnvFile() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
		filepath.Join("..", "..", ".env"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvAsDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}
