// Package config loads assetmix settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"assetmix/internal/log"
)

type Config struct {
	// HTTP Server
	Port string `env:"PORT, default=8081"`

	// Remote asset service
	AssetAPIURL     string        `env:"ASSET_API_URL, default=http://localhost:8080/api"`
	AssetAPITimeout time.Duration `env:"ASSET_API_TIMEOUT, default=10s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogFormat string `env:"LOG_FORMAT, default=text"`

	// Sessions
	SessionTTL             time.Duration `env:"SESSION_TTL, default=30m"`
	SessionMax             int           `env:"SESSION_MAX, default=1000"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL, default=1m"`

	// Page
	CurrencyUnit string `env:"CURRENCY_UNIT, default=元"`
	ChartWidth   int    `env:"CHART_WIDTH, default=480"`
	ChartHeight  int    `env:"CHART_HEIGHT, default=320"`

	// Rate limiting of POST routes, per client IP
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE, default=60"`
}

// LoadEnvFile loads a .env file into the process environment. A missing
// default file is not an error; an explicitly named one must exist.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

// LoadFrom reads the configuration through lookuper. Tests use it with
// envconfig.MapLookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.AssetAPIURL == "" {
		errs = append(errs, "asset API URL cannot be empty")
	} else if u, err := url.Parse(c.AssetAPIURL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid asset API URL '%s': %v", c.AssetAPIURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid asset API URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	} else if u.Host == "" {
		errs = append(errs, fmt.Sprintf("invalid asset API URL '%s': missing host", c.AssetAPIURL))
	}

	if c.AssetAPITimeout <= 0 {
		errs = append(errs, "asset API timeout must be positive")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, "session TTL must be positive")
	}
	if c.SessionMax < 1 {
		errs = append(errs, fmt.Sprintf("invalid session max %d: must be at least 1", c.SessionMax))
	}
	if c.SessionCleanupInterval <= 0 {
		errs = append(errs, "session cleanup interval must be positive")
	}

	if c.ChartWidth < 100 || c.ChartHeight < 100 {
		errs = append(errs, fmt.Sprintf("invalid chart size %dx%d: both sides must be at least 100", c.ChartWidth, c.ChartHeight))
	}

	if c.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %d: cannot be negative", c.RateLimitPerMinute))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// LoggerConfig maps the logging settings onto a log.Config.
func (c *Config) LoggerConfig() log.Config {
	lc := log.DefaultConfig()
	if level, err := log.ParseLevel(c.LogLevel); err == nil {
		lc.Level = level
	}
	lc.Format = c.LogFormat
	return lc
}
