package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
environment: test
server:
  port: 9090
  shutdown_timeout: 5s
backend:
  type: clickhouse
  batch_size: 100
  batch_timeout: 2s
kafka:
  brokers: ["localhost:9092"]
  topic: daily_bars
clickhouse:
  host: localhost
  port: 9000
  database: stockcast
  candle_table: daily_candles
finnhub:
  api_key: test-key
  base_url: https://finnhub.io/api/v1
  symbols: ["AAPL", "MSFT"]
predictor:
  lookback_years: 5
  training_timeout: 30s
  cache_ttl: 5m
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Environment != "test" {
		t.Fatalf("environment = %q", cfg.Environment)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Backend.Type != "clickhouse" {
		t.Fatalf("backend = %q", cfg.Backend.Type)
	}
	if len(cfg.Finnhub.Symbols) != 2 {
		t.Fatalf("symbols = %v", cfg.Finnhub.Symbols)
	}
	if cfg.Predictor.TrainingTimeout != 30*time.Second {
		t.Fatalf("training_timeout = %v", cfg.Predictor.TrainingTimeout)
	}
	if cfg.Predictor.CacheTTL != 5*time.Minute {
		t.Fatalf("cache_ttl = %v", cfg.Predictor.CacheTTL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateBadBackend(t *testing.T) {
	bad := `
environment: test
backend:
  type: postgres
finnhub:
  api_key: test-key
  symbols: ["AAPL"]
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected backend type validation error")
	}
}

func TestValidateMissingAPIKey(t *testing.T) {
	bad := `
environment: test
backend:
  type: kafka
finnhub:
  symbols: ["AAPL"]
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected api key validation error")
	}
}

func TestLoadWithEnvSuppliesMissingAPIKey(t *testing.T) {
	// The shipped config.yaml leaves finnhub.api_key blank so the secret
	// can come from the environment. Validation must only run after the
	// overrides are applied, otherwise startup fails on a blank key that
	// the environment provides.
	noKey := `
environment: test
backend:
  type: clickhouse
finnhub:
  api_key: ""
  symbols: ["AAPL"]
`
	path := writeConfig(t, noKey)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected plain Load to reject the blank api key")
	}

	t.Setenv("FINNHUB_API_KEY", "env-only-key")
	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Finnhub.APIKey != "env-only-key" {
		t.Fatalf("api key = %q", cfg.Finnhub.APIKey)
	}
}

func TestLoadWithEnvStillValidates(t *testing.T) {
	noKey := `
environment: test
backend:
  type: clickhouse
finnhub:
  api_key: ""
  symbols: ["AAPL"]
`
	t.Setenv("FINNHUB_API_KEY", "")
	if _, err := LoadWithEnv(writeConfig(t, noKey)); err == nil {
		t.Fatalf("expected validation error with no key in file or environment")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "env-key")
	t.Setenv("SYMBOLS", "TSLA,NVDA")
	t.Setenv("BACKEND", "kafka")

	cfg, err := LoadWithEnv(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Finnhub.APIKey != "env-key" {
		t.Fatalf("api key = %q", cfg.Finnhub.APIKey)
	}
	if len(cfg.Finnhub.Symbols) != 2 || cfg.Finnhub.Symbols[0] != "TSLA" {
		t.Fatalf("symbols = %v", cfg.Finnhub.Symbols)
	}
	if cfg.Backend.Type != "kafka" {
		t.Fatalf("backend = %q", cfg.Backend.Type)
	}
}
