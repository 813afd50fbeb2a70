package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// BaseCurrency is the currency all journal amounts are posted in.
	BaseCurrency string

	// GraceDays is the window, in days, within which a posting may be
	// deleted outright instead of reversed. The boundary is inclusive.
	GraceDays int

	// RetryMaxAttempts and RetryBaseDelay tune the transient-conflict retry
	// loop around posting transactions.
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	// PostingRulesFile optionally points at a JSON file of posting rule
	// overrides, merged over the built-in defaults at startup.
	PostingRulesFile string

	// RateLimit is an ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string

	MigrationsPath string
}

// GracePeriod returns the deletion window as a duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GraceDays) * 24 * time.Hour
}

// LoadConfig reads configuration from the environment, with a .env file as
// an optional local override source.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("BASE_CURRENCY", "USD")
	v.SetDefault("GRACE_DAYS", 30)
	v.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	v.SetDefault("RETRY_BASE_DELAY", "100ms")
	v.SetDefault("POSTING_RULES_FILE", "")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	cfg := &Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		Port:             v.GetString("PORT"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		BaseCurrency:     v.GetString("BASE_CURRENCY"),
		GraceDays:        v.GetInt("GRACE_DAYS"),
		RetryMaxAttempts: v.GetInt("RETRY_MAX_ATTEMPTS"),
		RetryBaseDelay:   v.GetDuration("RETRY_BASE_DELAY"),
		PostingRulesFile: v.GetString("POSTING_RULES_FILE"),
		RateLimit:        v.GetString("RATE_LIMIT"),
		MigrationsPath:   v.GetString("MIGRATIONS_PATH"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GraceDays < 0 {
		return nil, fmt.Errorf("GRACE_DAYS must not be negative")
	}
	if len(cfg.BaseCurrency) != 3 {
		return nil, fmt.Errorf("BASE_CURRENCY must be a 3-letter code, got %q", cfg.BaseCurrency)
	}

	return cfg, nil
}
