package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if cfg.Provider != "gemini" || cfg.Store != "memory" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.MaxRetries != 3 || cfg.RetryDefaultWait != 15*time.Second || cfg.RetryMaxWait != 60*time.Second {
		t.Fatalf("retry defaults wrong: %+v", cfg)
	}
	if cfg.HTTPAddr != ":8080" || cfg.LogLevel != "info" {
		t.Fatalf("service defaults wrong: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datalens.yaml")
	body := "provider: openai\nmodel: gpt-4o\nstore: postgres\npostgres_url: postgres://localhost/datalens\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != "openai" || cfg.Model != "gpt-4o" {
		t.Fatalf("file values not read: %+v", cfg)
	}
	if cfg.Store != "postgres" || cfg.PostgresURL != "postgres://localhost/datalens" {
		t.Fatalf("store settings not read: %+v", cfg)
	}
	// Unset fields still get defaults.
	if cfg.MaxRetries != 3 {
		t.Fatalf("defaults should fill unset fields: %+v", cfg)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATALENS_PROVIDER", "anthropic")
	t.Setenv("DATALENS_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Fatalf("env override not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("env override not applied: %+v", cfg)
	}
}
