package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port          string
	LogMode       string
	JWTSecret     string
	Timezone      string
	Database      DatabaseConfig
	Layouts       LayoutConfig
	AutoReconcile time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	SQLitePath string
	Host       string
	Port       string
	Username   string
	Password   string
	Database   string
	Alter      bool
}

// LayoutConfig names the grouping tags that have a structured unit master
// and where each master CSV lives.
type LayoutConfig struct {
	Sources  map[string]string
	CacheTTL time.Duration
}

// DefaultLayouts is used when LEDGER_LAYOUTS is not set.
const DefaultLayouts = "봉담자이 프라이드시티=./자이.csv;힐스테이트봉담프라이드시티=./힐스.csv"

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	rawLayouts, ok := os.LookupEnv("LEDGER_LAYOUTS")
	if !ok {
		rawLayouts = DefaultLayouts
	}
	layouts, err := ParseLayouts(rawLayouts)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := time.ParseDuration(getEnv("LAYOUT_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LAYOUT_CACHE_TTL: %w", err)
	}

	interval, err := time.ParseDuration(getEnv("AUTO_RECONCILE_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_RECONCILE_INTERVAL: %w", err)
	}

	tz := getEnv("LEDGER_TZ", "Asia/Seoul")
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid LEDGER_TZ %q: %w", tz, err)
	}

	return &Config{
		Port:      getEnv("PORT", "8000"),
		LogMode:   getEnv("LOG_MODE", "development"),
		JWTSecret: os.Getenv("API_JWT_SECRET"),
		Timezone:  tz,
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			SQLitePath: getEnv("SQLITE_PATH", "./ledger.db"),
			Host:       getEnv("PG_HOST", "localhost"),
			Port:       getEnv("PG_PORT", "5432"),
			Username:   getEnv("PG_USERNAME", "postgres"),
			Password:   os.Getenv("PG_PASSWORD"),
			Database:   getEnv("PG_DATABASE", "ledger"),
			Alter:      getEnv("DB_ALTER", "false") == "true",
		},
		Layouts: LayoutConfig{
			Sources:  layouts,
			CacheTTL: cacheTTL,
		},
		AutoReconcile: interval,
	}, nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseLayouts parses "tag=path;tag=path" pairs.
func ParseLayouts(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		tag, path, ok := strings.Cut(pair, "=")
		tag, path = strings.TrimSpace(tag), strings.TrimSpace(path)
		if !ok || tag == "" {
			return nil, fmt.Errorf("invalid LEDGER_LAYOUTS entry %q", pair)
		}
		out[tag] = path
	}
	return out, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
