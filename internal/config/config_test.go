package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/caarlos0/env/v11"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("IRONDOC_API_URL", "")
	t.Setenv("IRONDOC_STATE_BACKEND", "")
	t.Setenv("IRONDOC_STATE_PATH", "")
	t.Setenv("MEILI_URL", "")
	t.Setenv("IRONDOC_AVATAR_S3_ENDPOINT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != "http://localhost:5000/api" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.StateBackend != "file" || cfg.StatePrefix != "irondoc:" {
		t.Fatalf("unexpected state defaults %+v", cfg)
	}
	if filepath.Base(cfg.StatePath) != "state.json" {
		t.Fatalf("StatePath = %q", cfg.StatePath)
	}
	if cfg.SearchEnabled() || cfg.AvatarStorageEnabled() {
		t.Fatal("optional services must be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("IRONDOC_API_URL", "https://docs.example.com/api")
	t.Setenv("IRONDOC_STATE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("MEILI_URL", "http://meili:7700")
	t.Setenv("IRONDOC_AVATAR_S3_ENDPOINT", "minio:9000")
	t.Setenv("IRONDOC_CONFIRM_RESTORE", "true")
	t.Setenv("IRONDOC_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != "https://docs.example.com/api" || cfg.StateBackend != "redis" || cfg.RedisURL != "redis://cache:6379/2" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.SearchEnabled() || !cfg.AvatarStorageEnabled() || !cfg.ConfirmRestore {
		t.Fatalf("expected optional services enabled: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadRejectsMalformedValue(t *testing.T) {
	t.Setenv("IRONDOC_CONFIRM_RESTORE", "yes")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for malformed IRONDOC_CONFIRM_RESTORE")
	}
	var parseErr env.ParseError
	if !errors.As(err, &parseErr) || parseErr.Name != "ConfirmRestore" {
		t.Fatalf("expected parse error on ConfirmRestore, got %v", err)
	}
}
