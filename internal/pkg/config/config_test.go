package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
providers:
  enabled: [sportsio]
  sportsio:
    base_url: "https://api.example.test"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Providers.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want default 30s", cfg.Providers.Timeout)
	}
	if cfg.Sync.InterSourceDelay != 2*time.Second {
		t.Errorf("inter_source_delay = %v, want default 2s", cfg.Sync.InterSourceDelay)
	}
	if cfg.Sync.LiveInterval != 5*time.Minute {
		t.Errorf("live_interval = %v, want default 5m", cfg.Sync.LiveInterval)
	}
	if cfg.Sync.UpcomingDays != 7 {
		t.Errorf("upcoming_days = %d, want default 7", cfg.Sync.UpcomingDays)
	}
	if len(cfg.Sync.Sports) != 1 || cfg.Sync.Sports[0] != "football" {
		t.Errorf("sports = %v, want default [football]", cfg.Sync.Sports)
	}
}

func TestLoadParsesDurationsAndLists(t *testing.T) {
	path := writeConfig(t, `
providers:
  enabled: [sportsio, sportsdb]
  timeout: 10s
  sportsio:
    base_url: "https://api.example.test"
    requests_per_minute: 30
    daily_limit: 100
sync:
  enabled: true
  sports: [football, basketball]
  live_interval: 1m
  upcoming_days: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Providers.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.Providers.Timeout)
	}
	if cfg.Providers.SportsIO.DailyLimit != 100 {
		t.Errorf("daily_limit = %d", cfg.Providers.SportsIO.DailyLimit)
	}
	if cfg.Sync.LiveInterval != time.Minute {
		t.Errorf("live_interval = %v, want 1m", cfg.Sync.LiveInterval)
	}
	if !cfg.Sync.Enabled || len(cfg.Sync.Sports) != 2 {
		t.Errorf("sync = %+v", cfg.Sync)
	}
}

func TestEnvOverridesWinOverYAML(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://env/db")
	t.Setenv("SPORTSIO_API_KEY", "env-key")

	path := writeConfig(t, `
postgres:
  dsn: "postgres://yaml/db"
providers:
  sportsio:
    base_url: "https://api.example.test"
    api_key: "yaml-key"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Postgres.DSN != "postgres://env/db" {
		t.Errorf("dsn = %q, want env value", cfg.Postgres.DSN)
	}
	if cfg.Providers.SportsIO.APIKey != "env-key" {
		t.Errorf("api_key = %q, want env value", cfg.Providers.SportsIO.APIKey)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
