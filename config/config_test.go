package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaults tests the values applied with no file and no environment.
func TestDefaults(t *testing.T) {
	cfg := &Config{}
	applyEnvOverrides(cfg)

	if cfg.DataSourceConfig.BaseURL != "https://api.binance.com" {
		t.Errorf("BaseURL = %q", cfg.DataSourceConfig.BaseURL)
	}
	if cfg.DataSourceConfig.BarLimit != 200 {
		t.Errorf("BarLimit = %d, want 200", cfg.DataSourceConfig.BarLimit)
	}
	if !cfg.ScannerConfig.Enabled {
		t.Error("scanner should be enabled by default")
	}
	if cfg.ScannerConfig.WorkerCount != 10 {
		t.Errorf("WorkerCount = %d, want 10", cfg.ScannerConfig.WorkerCount)
	}
	if len(cfg.ScannerConfig.Timeframes) != 1 || cfg.ScannerConfig.Timeframes[0] != "1d" {
		t.Errorf("Timeframes = %v, want [1d]", cfg.ScannerConfig.Timeframes)
	}
	if cfg.DetectionConfig.Threshold != 55 {
		t.Errorf("Threshold = %v, want 55", cfg.DetectionConfig.Threshold)
	}
	if cfg.ServerConfig.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.ServerConfig.Port)
	}
	if cfg.AuthConfig.Enabled {
		t.Error("auth should be disabled by default")
	}
	if cfg.AuthConfig.AccessTokenDuration != 15*time.Minute {
		t.Errorf("AccessTokenDuration = %v, want 15m", cfg.AuthConfig.AccessTokenDuration)
	}
	if cfg.DatabaseConfig.Enabled {
		t.Error("database should be disabled without a URL")
	}
}

// TestEnvOverrides tests that environment variables win over zero values.
func TestEnvOverrides(t *testing.T) {
	t.Setenv("DETECTION_THRESHOLD", "45")
	t.Setenv("SCANNER_WORKER_COUNT", "4")
	t.Setenv("SCANNER_ENABLED", "false")
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("AUTH_ACCESS_TOKEN_DURATION", "30m")
	t.Setenv("DATABASE_URL", "postgres://localhost/scanner")

	cfg := &Config{}
	applyEnvOverrides(cfg)

	if cfg.DetectionConfig.Threshold != 45 {
		t.Errorf("Threshold = %v, want 45", cfg.DetectionConfig.Threshold)
	}
	if cfg.ScannerConfig.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d, want 4", cfg.ScannerConfig.WorkerCount)
	}
	if cfg.ScannerConfig.Enabled {
		t.Error("SCANNER_ENABLED=false should disable the scanner")
	}
	if cfg.ServerConfig.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.ServerConfig.Port)
	}
	if cfg.AuthConfig.AccessTokenDuration != 30*time.Minute {
		t.Errorf("AccessTokenDuration = %v, want 30m", cfg.AuthConfig.AccessTokenDuration)
	}
	if !cfg.DatabaseConfig.Enabled {
		t.Error("a DATABASE_URL should enable the database")
	}
}

// TestEnvOverridesFileValues tests precedence of environment over file values.
func TestEnvOverridesFileValues(t *testing.T) {
	t.Setenv("RISK_ACCOUNT_SIZE", "50000")

	cfg := &Config{RiskConfig: RiskConfig{AccountSize: 10000, RiskPerTradePct: 1.0}}
	applyEnvOverrides(cfg)

	if cfg.RiskConfig.AccountSize != 50000 {
		t.Errorf("AccountSize = %v, environment should win", cfg.RiskConfig.AccountSize)
	}
	if cfg.RiskConfig.RiskPerTradePct != 1.0 {
		t.Errorf("RiskPerTradePct = %v, file value should survive", cfg.RiskConfig.RiskPerTradePct)
	}
}

// TestBadEnvValuesFallBack tests that unparsable values keep the defaults.
func TestBadEnvValuesFallBack(t *testing.T) {
	t.Setenv("SCANNER_WORKER_COUNT", "lots")
	t.Setenv("DETECTION_THRESHOLD", "high")
	t.Setenv("AUTH_ACCESS_TOKEN_DURATION", "soon")

	cfg := &Config{}
	applyEnvOverrides(cfg)

	if cfg.ScannerConfig.WorkerCount != 10 {
		t.Errorf("WorkerCount = %d, want the default 10", cfg.ScannerConfig.WorkerCount)
	}
	if cfg.DetectionConfig.Threshold != 55 {
		t.Errorf("Threshold = %v, want the default 55", cfg.DetectionConfig.Threshold)
	}
	if cfg.AuthConfig.AccessTokenDuration != 15*time.Minute {
		t.Errorf("AccessTokenDuration = %v, want the default 15m", cfg.AuthConfig.AccessTokenDuration)
	}
}

// TestGenerateSampleConfig tests that the generated file round-trips.
func TestGenerateSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := GenerateSampleConfig(path); err != nil {
		t.Fatalf("GenerateSampleConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading sample config failed: %v", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config is not valid JSON: %v", err)
	}
	if cfg.ScannerConfig.ScanInterval != 300 {
		t.Errorf("ScanInterval = %d, want 300", cfg.ScannerConfig.ScanInterval)
	}
	if cfg.DetectionConfig.Threshold != 55 {
		t.Errorf("Threshold = %v, want 55", cfg.DetectionConfig.Threshold)
	}
}
