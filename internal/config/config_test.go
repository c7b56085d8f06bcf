package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("defaults when no file or env is present", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Port != "8080" {
			t.Fatalf("unexpected port %q", cfg.Port)
		}
		if cfg.Sync.HorizonDays != 365 || cfg.Sync.IntervalMinutes != 30 {
			t.Fatalf("unexpected sync defaults %+v", cfg.Sync)
		}
		if cfg.PMS.RequestsPerSecond != 10 || cfg.PMS.Burst != 1 {
			t.Fatalf("unexpected pms defaults %+v", cfg.PMS)
		}
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "syncd.toml")
		content := `
port = "9000"
database_url = "postgres://app:app@db:5432/app"
cors_origins = ["https://app.example.com"]

[pms]
base_url = "https://pms.example.com"
api_key = "k-123"
requests_per_second = 4.0
burst = 2

[sync]
horizon_days = 120
interval_minutes = 15
property_pause_ms = 250
cache_ttl_minutes = 10
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Port != "9000" || cfg.DatabaseURL != "postgres://app:app@db:5432/app" {
			t.Fatalf("unexpected config %+v", cfg)
		}
		if cfg.PMS.APIKey != "k-123" || cfg.PMS.RequestsPerSecond != 4.0 || cfg.PMS.Burst != 2 {
			t.Fatalf("unexpected pms %+v", cfg.PMS)
		}
		if cfg.Sync.HorizonDays != 120 || cfg.Sync.CacheTTLMinutes != 10 {
			t.Fatalf("unexpected sync %+v", cfg.Sync)
		}
		if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://app.example.com" {
			t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
		}
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "syncd.toml")
		if err := os.WriteFile(path, []byte(`port = "9000"`), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("PORT", "7070")
		t.Setenv("PMS_API_KEY", "env-key")
		t.Setenv("SYNC_HORIZON_DAYS", "90")
		t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Port != "7070" {
			t.Fatalf("expected env port, got %q", cfg.Port)
		}
		if cfg.PMS.APIKey != "env-key" {
			t.Fatalf("expected env api key, got %q", cfg.PMS.APIKey)
		}
		if cfg.Sync.HorizonDays != 90 {
			t.Fatalf("expected env horizon, got %d", cfg.Sync.HorizonDays)
		}
		if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
			t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "syncd.toml")
		if err := os.WriteFile(path, []byte(`port = `), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Fatal("expected a parse error")
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		t.Setenv("SYNC_HORIZON_DAYS", "0")
		if _, err := Load(""); err == nil {
			t.Fatal("expected a validation error")
		}
	})
}
