package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Gate.PositionTimeout != 10*time.Second {
		t.Errorf("position timeout = %s", cfg.Gate.PositionTimeout)
	}
	if cfg.Gate.PassTTL != 12*time.Hour {
		t.Errorf("pass ttl = %s", cfg.Gate.PassTTL)
	}
	if cfg.Gate.CacheTTL != 5*time.Minute {
		t.Errorf("cache ttl = %s", cfg.Gate.CacheTTL)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q", cfg.Log.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPSGATE_HTTP_ADDR", ":9090")
	t.Setenv("OPSGATE_DB_DSN", "postgres://x@db/opsgate")
	t.Setenv("OPSGATE_GATE_PASS_TTL", "30m")
	t.Setenv("OPSGATE_FIREBASE_PROJECT_ID", "ops-prod")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	if cfg.DB.DSN != "postgres://x@db/opsgate" {
		t.Errorf("db dsn = %q", cfg.DB.DSN)
	}
	if cfg.Gate.PassTTL != 30*time.Minute {
		t.Errorf("pass ttl = %s", cfg.Gate.PassTTL)
	}
	if cfg.Firebase.ProjectID != "ops-prod" {
		t.Errorf("firebase project = %q", cfg.Firebase.ProjectID)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opsgate.yaml")
	content := []byte(`
http:
  addr: ":7070"
maps:
  region: "us"
gate:
  position_timeout: 5s
log:
  level: debug
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OPSGATE_LOG_LEVEL", "warn")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" || cfg.Maps.Region != "us" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Gate.PositionTimeout != 5*time.Second {
		t.Errorf("position timeout = %s", cfg.Gate.PositionTimeout)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("env should win over file, got %q", cfg.Log.Level)
	}
}

func TestLoadRejectsBadGateSettings(t *testing.T) {
	t.Setenv("OPSGATE_GATE_POSITION_TIMEOUT", "0s")
	if _, err := LoadFile(""); err == nil {
		t.Fatalf("expected error for zero position timeout")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}
