// Package config loads the notifier configuration from environment variables.
//
// Environment Variables:
//
// Tender API:
//   - TENDER_API_URL: API base URL (default: https://tenderplan.ru/api)
//   - TENDER_API_TOKEN: bearer token (required)
//   - TENDER_API_INSECURE: skip TLS verification (default: true)
//   - HTTP_TIMEOUT: per-request timeout (default: 30s)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: call budget (default: 250 per 10s)
//   - PAGE_SIZE: listing page size (default: 50)
//   - FETCH_ATTEMPTS / FETCH_BACKOFF_STEP: detail retries (default: 5, 1s linear)
//   - REPORT_WORKERS / EXPORT_WORKERS: detail fan-out (default: 5 / 10)
//
// Delivery:
//   - NOTIFIER: "telegram" or "log" (default: telegram)
//   - BOT_TOKEN: Telegram bot token (required for telegram)
//   - DELIVERY_DELAY: pause between messages (default: 100ms)
//   - SYNC_INTERVAL / SYNC_FIRST_RUN: sync schedule (default: 1800s / 10s)
//   - TIMEZONE: zone used to render dates (default: Europe/Moscow)
//
// Storage:
//   - DATABASE_TYPE: "sqlite" or "postgres" (default: sqlite)
//   - DATABASE_PATH: SQLite file (default: ./bot_database.sqlite3)
//   - DATABASE_URL: PostgreSQL DSN (required for postgres)
//
// Redis (optional, enables the shared rate limit and cycle lock):
//   - REDIS_ADDRESS, REDIS_PASSWORD, REDIS_DB (0-15), REDIS_POOL_SIZE
//
// Reports and admin API:
//   - REPORTS_DIR (default: ./reports), REPORT_TEMPLATE (optional xlsx)
//   - PORT: admin HTTP port, empty disables the server (default: 8080)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"tender-notifier/internal/common/utils"
)

// Config holds all configuration values. Numeric and duration settings are
// kept as the raw environment strings; use the accessor methods after
// Validate has accepted them.
type Config struct {
	Port     string
	LogLevel string

	TenderAPIURL      string
	TenderAPIToken    string
	TenderAPIInsecure bool
	HTTPTimeout       string

	RateLimitRequests string
	RateLimitWindow   string
	PageSize          string
	FetchAttempts     string
	FetchBackoffStep  string
	ReportWorkers     string
	ExportWorkers     string

	Notifier      string
	BotToken      string
	DeliveryDelay string
	SyncInterval  string
	SyncFirstRun  string
	Timezone      string

	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	RedisAddress  string
	RedisPassword string
	RedisDB       string
	RedisPoolSize string

	ReportsDir     string
	ReportTemplate string
}

// Load creates a Config from environment variables, applying defaults.
// It does not validate.
func Load() *Config {
	return &Config{
		Port:     getPort(),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		TenderAPIURL:      getEnv("TENDER_API_URL", "https://tenderplan.ru/api"),
		TenderAPIToken:    getEnv("TENDER_API_TOKEN", ""),
		TenderAPIInsecure: getBoolEnv("TENDER_API_INSECURE", true),
		HTTPTimeout:       getEnv("HTTP_TIMEOUT", "30s"),

		RateLimitRequests: getEnv("RATE_LIMIT_REQUESTS", "250"),
		RateLimitWindow:   getEnv("RATE_LIMIT_WINDOW", "10s"),
		PageSize:          getEnv("PAGE_SIZE", "50"),
		FetchAttempts:     getEnv("FETCH_ATTEMPTS", "5"),
		FetchBackoffStep:  getEnv("FETCH_BACKOFF_STEP", "1s"),
		ReportWorkers:     getEnv("REPORT_WORKERS", "5"),
		ExportWorkers:     getEnv("EXPORT_WORKERS", "10"),

		Notifier:      getEnv("NOTIFIER", "telegram"),
		BotToken:      getEnv("BOT_TOKEN", ""),
		DeliveryDelay: getEnv("DELIVERY_DELAY", "100ms"),
		SyncInterval:  getEnv("SYNC_INTERVAL", "1800s"),
		SyncFirstRun:  getEnv("SYNC_FIRST_RUN", "10s"),
		Timezone:      getEnv("TIMEZONE", "Europe/Moscow"),

		DatabaseType: getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath: getEnv("DATABASE_PATH", "./bot_database.sqlite3"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),

		ReportsDir:     getEnv("REPORTS_DIR", "./reports"),
		ReportTemplate: getEnv("REPORT_TEMPLATE", ""),
	}
}

// getPort defaults to 8080 only when PORT is unset; PORT="" disables the server.
func getPort() string {
	if value, set := os.LookupEnv("PORT"); set {
		return value
	}
	return "8080"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv accepts strconv.ParseBool spellings and falls back to defaultValue.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks required values, numeric ranges and duration formats.
func (c *Config) Validate() error {
	if c.TenderAPIToken == "" {
		return fmt.Errorf("TENDER_API_TOKEN environment variable is required")
	}
	if c.TenderAPIURL == "" {
		return fmt.Errorf("TENDER_API_URL must not be empty")
	}

	switch c.Notifier {
	case "telegram":
		if c.BotToken == "" {
			return fmt.Errorf("BOT_TOKEN is required when NOTIFIER is telegram")
		}
	case "log":
	default:
		return fmt.Errorf("NOTIFIER must be 'telegram' or 'log'")
	}

	if c.Port != "" {
		if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
		}
	}

	switch c.DatabaseType {
	case "sqlite":
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required when using SQLite")
		}
	case "postgres", "postgresql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when using PostgreSQL")
		}
	default:
		return fmt.Errorf("DATABASE_TYPE must be 'sqlite' or 'postgres'")
	}

	if c.RedisAddress != "" {
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
	}

	positive := map[string]string{
		"RATE_LIMIT_REQUESTS": c.RateLimitRequests,
		"PAGE_SIZE":           c.PageSize,
		"FETCH_ATTEMPTS":      c.FetchAttempts,
		"REPORT_WORKERS":      c.ReportWorkers,
		"EXPORT_WORKERS":      c.ExportWorkers,
	}
	for name, value := range positive {
		if n, err := strconv.Atoi(value); err != nil || n < 1 {
			return fmt.Errorf("%s must be a positive number", name)
		}
	}

	durations := []struct {
		name     string
		value    string
		positive bool
	}{
		{"RATE_LIMIT_WINDOW", c.RateLimitWindow, true},
		{"HTTP_TIMEOUT", c.HTTPTimeout, true},
		{"FETCH_BACKOFF_STEP", c.FetchBackoffStep, false},
		{"DELIVERY_DELAY", c.DeliveryDelay, false},
		{"SYNC_INTERVAL", c.SyncInterval, true},
		{"SYNC_FIRST_RUN", c.SyncFirstRun, false},
	}
	for _, d := range durations {
		parsed, err := utils.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%s must be a valid duration (e.g. '10s', '1800')", d.name)
		}
		if parsed < 0 || (d.positive && parsed == 0) {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is not a known time zone", c.Timezone)
	}

	return nil
}

func atoi(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}

func duration(s string, fallback time.Duration) time.Duration {
	if d, err := utils.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

func (c *Config) RateLimit() (int, time.Duration) {
	return atoi(c.RateLimitRequests, 250), duration(c.RateLimitWindow, 10*time.Second)
}

func (c *Config) Timeout() time.Duration     { return duration(c.HTTPTimeout, 30*time.Second) }
func (c *Config) PageSizeInt() int           { return atoi(c.PageSize, 50) }
func (c *Config) Attempts() int              { return atoi(c.FetchAttempts, 5) }
func (c *Config) BackoffStep() time.Duration { return duration(c.FetchBackoffStep, time.Second) }
func (c *Config) ReportWorkerCount() int     { return atoi(c.ReportWorkers, 5) }
func (c *Config) ExportWorkerCount() int     { return atoi(c.ExportWorkers, 10) }
func (c *Config) Delay() time.Duration       { return duration(c.DeliveryDelay, 100*time.Millisecond) }
func (c *Config) Interval() time.Duration    { return duration(c.SyncInterval, 30*time.Minute) }
func (c *Config) FirstRun() time.Duration    { return duration(c.SyncFirstRun, 10*time.Second) }
func (c *Config) RedisDBInt() int            { return atoi(c.RedisDB, 0) }
func (c *Config) RedisPoolSizeInt() int      { return atoi(c.RedisPoolSize, 10) }

// Location returns the presentation time zone.
func (c *Config) Location() *time.Location {
	return utils.LoadLocation(c.Timezone)
}
