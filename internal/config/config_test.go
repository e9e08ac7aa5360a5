package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func validConfig() Config {
	return Config{
		Port:                   "8081",
		AssetAPIURL:            "http://localhost:8080/api",
		AssetAPITimeout:        10 * time.Second,
		LogLevel:               "info",
		LogFormat:              "text",
		SessionTTL:             30 * time.Minute,
		SessionMax:             1000,
		SessionCleanupInterval: time.Minute,
		CurrencyUnit:           "元",
		ChartWidth:             480,
		ChartHeight:            320,
		RateLimitPerMinute:     60,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := validConfig()
	if *cfg != want {
		t.Fatalf("defaults mismatch:\n got %+v\nwant %+v", *cfg, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":              "9090",
		"ASSET_API_URL":     "https://assets.example.com/api",
		"ASSET_API_TIMEOUT": "3s",
		"LOG_LEVEL":         "debug",
		"LOG_FORMAT":        "json",
		"SESSION_MAX":       "5",
		"CURRENCY_UNIT":     "€",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.AssetAPIURL != "https://assets.example.com/api" {
		t.Fatalf("unexpected %+v", cfg)
	}
	if cfg.AssetAPITimeout != 3*time.Second || cfg.SessionMax != 5 || cfg.CurrencyUnit != "€" {
		t.Fatalf("unexpected %+v", cfg)
	}
	lc := cfg.LoggerConfig()
	if lc.Level != slog.LevelDebug || lc.Format != "json" {
		t.Fatalf("logger config %+v", lc)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_TTL": "soon",
	}))
	if err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "asset api scheme",
			mutate:      func(c *Config) { c.AssetAPIURL = "ftp://host/api" },
			errorString: "invalid asset API URL scheme 'ftp'",
		},
		{
			name:        "asset api host",
			mutate:      func(c *Config) { c.AssetAPIURL = "http:///api" },
			errorString: "missing host",
		},
		{
			name:        "empty asset api",
			mutate:      func(c *Config) { c.AssetAPIURL = "" },
			errorString: "asset API URL cannot be empty",
		},
		{
			name:        "log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			errorString: "invalid log level 'loud'",
		},
		{
			name:        "log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			errorString: "invalid log format 'xml'",
		},
		{
			name:        "session max",
			mutate:      func(c *Config) { c.SessionMax = 0 },
			errorString: "invalid session max 0",
		},
		{
			name:        "chart size",
			mutate:      func(c *Config) { c.ChartWidth = 10 },
			errorString: "invalid chart size 10x320",
		},
		{
			name:        "negative rate limit",
			mutate:      func(c *Config) { c.RateLimitPerMinute = -1 },
			errorString: "invalid rate limit -1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.errorString)
			}
			if !strings.Contains(err.Error(), tt.errorString) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.errorString)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.LogFormat = "xml"
	cfg.SessionTTL = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := strings.Count(err.Error(), "\n- "); got != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", got, err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("ASSETMIX_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ASSETMIX_TEST_VALUE", "")
	os.Unsetenv("ASSETMIX_TEST_VALUE")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	if got := os.Getenv("ASSETMIX_TEST_VALUE"); got != "from-file" {
		t.Fatalf("got %q", got)
	}

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err == nil {
		t.Fatalf("expected error for missing explicit file")
	}
}
