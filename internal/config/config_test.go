package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.Address != "localhost" {
		t.Errorf("Expected default address localhost, got %q", cfg.Server.Address)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("Expected default user agent %q, got %q", DefaultUserAgent, cfg.UserAgent)
	}
	if cfg.Index.BaseURL != "https://rest.opensubtitles.org" {
		t.Errorf("Unexpected index base URL %q", cfg.Index.BaseURL)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Expected sqlite3 driver, got %q", cfg.Database.Driver)
	}
	if cfg.Cache.Provider != "memory" || cfg.Cache.Size != 100 {
		t.Errorf("Unexpected cache defaults: provider=%q size=%d", cfg.Cache.Provider, cfg.Cache.Size)
	}
	if cfg.Download.MaxSize != 10<<20 {
		t.Errorf("Expected 10MiB max download size, got %d", cfg.Download.MaxSize)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != 9090 {
		t.Errorf("Unexpected metrics defaults: enabled=%v port=%d", cfg.Metrics.Enabled, cfg.Metrics.Port)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
server:
  port: 9000
database:
  driver: postgres
  dsn: "postgres://localhost/subs"
download:
  allowed_hosts:
    - www.opensubtitles.org
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("APP_SERVER_ADDRESS", "0.0.0.0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_SENTRY_DSN", "https://key@o1.ingest.sentry.io/1")
	t.Setenv("APP_SENTRY_ENVIRONMENT", "prod")
	t.Setenv("APP_CACHE_REDIS_PASSWORD", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port from file 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Address != "0.0.0.0" {
		t.Errorf("Expected address from env, got %q", cfg.Server.Address)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %q", cfg.LogLevel)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://localhost/subs" {
		t.Errorf("Unexpected database config: %+v", cfg.Database)
	}
	if len(cfg.Download.AllowedHosts) != 1 || cfg.Download.AllowedHosts[0] != "www.opensubtitles.org" {
		t.Errorf("Unexpected allowed hosts: %v", cfg.Download.AllowedHosts)
	}
	if cfg.Sentry.DSN != "https://key@o1.ingest.sentry.io/1" || cfg.Sentry.Environment != "prod" {
		t.Errorf("Expected sentry settings from env, got %+v", cfg.Sentry)
	}
	if cfg.Cache.Redis.Password != "secret" {
		t.Errorf("Expected redis password from env, got %q", cfg.Cache.Redis.Password)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "empty", value: "", expected: time.Minute},
		{name: "valid", value: "15s", expected: 15 * time.Second},
		{name: "invalid", value: "soon", expected: time.Minute},
		{name: "negative", value: "-5s", expected: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDuration(tt.value, time.Minute); got != tt.expected {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}
