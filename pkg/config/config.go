package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process configuration. Strategy parameters (weights,
// caps, watch-list) live in the YAML strategy file, not here.
type Config struct {
	Env string // development, staging, production

	// Database
	Database DatabaseConfig

	// Market data source
	MarketData MarketDataConfig

	// Telegram delivery
	Telegram TelegramConfig

	// Strategy file
	StrategyPath string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// MarketDataConfig holds the daily-quote endpoint configuration.
type MarketDataConfig struct {
	BaseURL string
	Timeout time.Duration

	// Requests per second against the quote endpoint, with burst.
	RateLimit float64
	RateBurst int
}

// TelegramConfig holds the report delivery endpoint.
type TelegramConfig struct {
	BaseURL string
	Token   string
	ChatID  string
	Enabled bool
}

// Load reads configuration from environment variables. This is the only
// function that calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		MarketData: MarketDataConfig{
			BaseURL:   getEnv("MARKET_DATA_BASE_URL", "https://stooq.com"),
			Timeout:   getEnvAsDuration("MARKET_DATA_TIMEOUT", "15s"),
			RateLimit: getEnvAsFloat("MARKET_DATA_RATE_LIMIT", 1),
			RateBurst: getEnvAsInt("MARKET_DATA_RATE_BURST", 1),
		},

		Telegram: TelegramConfig{
			BaseURL: getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"),
			Token:   getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:  getEnv("TELEGRAM_CHAT_ID", ""),
			Enabled: getEnvAsBool("TELEGRAM_ENABLED", false),
		},

		StrategyPath: getEnv("STRATEGY_PATH", "config/strategy.yaml"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required when TELEGRAM_ENABLED=true")
	}

	if c.MarketData.RateLimit <= 0 {
		return fmt.Errorf("MARKET_DATA_RATE_LIMIT must be > 0")
	}

	return nil
}

// loadEnvFile tries to load .env from several locations.
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
