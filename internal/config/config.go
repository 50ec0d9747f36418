// Package config assembles runtime configuration from three layers:
// built-in defaults, an optional YAML file named by SIGCR_CONFIG, and
// SIGCR_* environment variables. Later layers win, so an env var always
// overrides the file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Dasparmv/FORTELV2/internal/kv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration
type Config struct {
	LogLevel     string        `yaml:"logLevel"`
	TickInterval time.Duration `yaml:"tickInterval"`
	AutoLogin    string        `yaml:"autoLogin"` // demo email to log in at startup, empty to skip
	KV           KVConfig      `yaml:"kv"`
}

// KVConfig mirrors kv.Config in YAML-friendly form
type KVConfig struct {
	Backend   string `yaml:"backend"`
	DataDir   string `yaml:"dataDir"`
	RedisAddr string `yaml:"redisAddr"`
	Dynamo    struct {
		Mode     string `yaml:"mode"`
		Endpoint string `yaml:"endpoint"`
		Region   string `yaml:"region"`
		Table    string `yaml:"table"`
	} `yaml:"dynamo"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	cfg := Config{
		LogLevel:     "info",
		TickInterval: 5 * time.Second,
	}
	cfg.KV.Backend = "file"
	cfg.KV.DataDir = ".sigcr"
	cfg.KV.RedisAddr = "localhost:6379"
	cfg.KV.Dynamo.Mode = "local"
	cfg.KV.Dynamo.Endpoint = "http://localhost:8000"
	cfg.KV.Dynamo.Region = "eu-central-1"
	cfg.KV.Dynamo.Table = "sigcr-blobs"
	return cfg
}

// Load builds the configuration. A missing .env file is fine; a config
// file named by SIGCR_CONFIG that cannot be read or parsed is an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	if path := os.Getenv("SIGCR_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.TickInterval <= 0 {
		return Config{}, fmt.Errorf("tick interval must be positive, got %s", cfg.TickInterval)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.LogLevel, "SIGCR_LOG_LEVEL")
	setString(&cfg.AutoLogin, "SIGCR_AUTO_LOGIN")
	if v, ok := os.LookupEnv("SIGCR_TICK_INTERVAL"); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TickInterval = d
		}
	}

	setString(&cfg.KV.Backend, "SIGCR_KV_BACKEND")
	setString(&cfg.KV.DataDir, "SIGCR_DATA_DIR")
	setString(&cfg.KV.RedisAddr, "SIGCR_REDIS_ADDR")
	setString(&cfg.KV.Dynamo.Mode, "SIGCR_DYNAMO_MODE")
	setString(&cfg.KV.Dynamo.Endpoint, "SIGCR_DYNAMO_ENDPOINT")
	setString(&cfg.KV.Dynamo.Region, "SIGCR_DYNAMO_REGION")
	setString(&cfg.KV.Dynamo.Table, "SIGCR_DYNAMO_TABLE")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// KVStore converts the YAML-friendly KV section into kv.Config
func (c Config) KVStore() kv.Config {
	return kv.Config{
		Backend:   kv.Backend(c.KV.Backend),
		DataDir:   c.KV.DataDir,
		RedisAddr: c.KV.RedisAddr,
		Dynamo: kv.DynamoConfig{
			Mode:     kv.DynamoMode(c.KV.Dynamo.Mode),
			Endpoint: c.KV.Dynamo.Endpoint,
			Region:   c.KV.Dynamo.Region,
			Table:    c.KV.Dynamo.Table,
		},
	}
}
