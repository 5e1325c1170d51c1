package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadMissingSupabase(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_KEY", "")

	if _, err := Load(); !errors.Is(err, ErrMissingSupabase) {
		t.Errorf("error = %v, want ErrMissingSupabase", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "key")
	t.Setenv("ENV", "")
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("SOURCE_TIMEOUT", "")
	t.Setenv("MONITOR_INTERVAL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerAddr != ":5000" {
		t.Errorf("ServerAddr = %q, want :5000", cfg.ServerAddr)
	}
	if cfg.SourceTimeout != 10*time.Second {
		t.Errorf("SourceTimeout = %v, want 10s", cfg.SourceTimeout)
	}
	if cfg.MonitorInterval != 10*time.Minute {
		t.Errorf("MonitorInterval = %v, want 10m", cfg.MonitorInterval)
	}
	if cfg.CORSOrigins != "*" {
		t.Errorf("CORSOrigins = %q, want *", cfg.CORSOrigins)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "key")
	t.Setenv("ENV", "production")
	t.Setenv("SOURCE_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.IsDev() {
		t.Error("production env reported as dev")
	}
	if cfg.SourceTimeout != 3*time.Second {
		t.Errorf("SourceTimeout = %v, want 3s", cfg.SourceTimeout)
	}
}

func TestLoadMalformedDuration(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "key")
	t.Setenv("SOURCE_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SourceTimeout != 10*time.Second {
		t.Errorf("SourceTimeout = %v, want fallback 10s", cfg.SourceTimeout)
	}
}
