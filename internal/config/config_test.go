package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SIGCR_CONFIG", "SIGCR_LOG_LEVEL", "SIGCR_AUTO_LOGIN", "SIGCR_TICK_INTERVAL",
		"SIGCR_KV_BACKEND", "SIGCR_DATA_DIR", "SIGCR_REDIS_ADDR",
		"SIGCR_DYNAMO_MODE", "SIGCR_DYNAMO_ENDPOINT", "SIGCR_DYNAMO_REGION", "SIGCR_DYNAMO_TABLE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("logLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.TickInterval != 5*time.Second {
		t.Errorf("tickInterval = %s, want 5s", cfg.TickInterval)
	}
	if cfg.KV.Backend != "file" {
		t.Errorf("kv backend = %q, want file", cfg.KV.Backend)
	}
	if cfg.KV.DataDir != ".sigcr" {
		t.Errorf("kv dataDir = %q, want .sigcr", cfg.KV.DataDir)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "sigcr.yaml")
	raw := []byte("logLevel: debug\ntickInterval: 2s\nkv:\n  backend: redis\n  redisAddr: redis:6380\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SIGCR_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("logLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.TickInterval != 2*time.Second {
		t.Errorf("tickInterval = %s, want 2s", cfg.TickInterval)
	}
	if cfg.KV.Backend != "redis" || cfg.KV.RedisAddr != "redis:6380" {
		t.Errorf("kv = %+v, want redis backend at redis:6380", cfg.KV)
	}
	// fields the file omits keep their defaults
	if cfg.KV.Dynamo.Table != "sigcr-blobs" {
		t.Errorf("dynamo table = %q, want sigcr-blobs", cfg.KV.Dynamo.Table)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "sigcr.yaml")
	if err := os.WriteFile(path, []byte("logLevel: debug\nkv:\n  backend: redis\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SIGCR_CONFIG", path)
	t.Setenv("SIGCR_LOG_LEVEL", "warn")
	t.Setenv("SIGCR_KV_BACKEND", "memory")
	t.Setenv("SIGCR_TICK_INTERVAL", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("logLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.KV.Backend != "memory" {
		t.Errorf("kv backend = %q, want memory", cfg.KV.Backend)
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("tickInterval = %s, want 250ms", cfg.TickInterval)
	}
}

func TestLoadBadFile(t *testing.T) {
	clearEnv(t)

	t.Setenv("SIGCR_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("logLevel: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SIGCR_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestKVStoreConversion(t *testing.T) {
	cfg := Defaults()
	cfg.KV.Backend = "dynamo"
	cfg.KV.Dynamo.Mode = "aws"
	cfg.KV.Dynamo.Table = "ops"

	kvCfg := cfg.KVStore()
	if string(kvCfg.Backend) != "dynamo" {
		t.Errorf("backend = %q, want dynamo", kvCfg.Backend)
	}
	if string(kvCfg.Dynamo.Mode) != "aws" || kvCfg.Dynamo.Table != "ops" {
		t.Errorf("dynamo = %+v, want aws mode with table ops", kvCfg.Dynamo)
	}
}
