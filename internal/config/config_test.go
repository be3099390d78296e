package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q, want 0.0.0.0:8080", cfg.App.Addr())
	}
	if cfg.App.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want 30s", cfg.App.RequestTimeout())
	}
	if cfg.AccessCode.CodeTTL() != 7*24*time.Hour {
		t.Errorf("CodeTTL() = %v, want 168h", cfg.AccessCode.CodeTTL())
	}
	if cfg.AccessCode.AttemptWindow() != 15*time.Minute {
		t.Errorf("AttemptWindow() = %v, want 15m", cfg.AccessCode.AttemptWindow())
	}
	if !cfg.Postgres.RunMigrations {
		t.Error("RunMigrations default should be true")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ACCESS_CODE_TTL_DAYS", "3")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9090", cfg.App.Addr())
	}
	if cfg.AccessCode.CodeTTL() != 3*24*time.Hour {
		t.Errorf("CodeTTL() = %v, want 72h", cfg.AccessCode.CodeTTL())
	}
	if cfg.Postgres.RunMigrations {
		t.Error("RunMigrations should be overridden to false")
	}
	if cfg.Redis.DB != 2 {
		t.Errorf("Redis.DB = %d, want 2", cfg.Redis.DB)
	}
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail on invalid REDIS_DB")
	}
}

func TestCodeTTLGuardsNonPositive(t *testing.T) {
	c := AccessCodeConfig{TTLDays: 0}
	if c.CodeTTL() != 7*24*time.Hour {
		t.Errorf("CodeTTL() = %v, want default 168h", c.CodeTTL())
	}

	c = AccessCodeConfig{AttemptWindowMinutes: -1}
	if c.AttemptWindow() != 15*time.Minute {
		t.Errorf("AttemptWindow() = %v, want default 15m", c.AttemptWindow())
	}
}
