package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DataSourceConfig DataSourceConfig `json:"datasource"`
	ScannerConfig    ScannerConfig    `json:"scanner"`
	DetectionConfig  DetectionConfig  `json:"detection"`
	RiskConfig       RiskConfig       `json:"risk"`
	LoggingConfig    LoggingConfig    `json:"logging"`
	ServerConfig     ServerConfig     `json:"server"`
	AuthConfig       AuthConfig       `json:"auth"`
	DatabaseConfig   DatabaseConfig   `json:"database"`
	RedisConfig      RedisConfig      `json:"redis"`
	VaultConfig      VaultConfig      `json:"vault"`
}

// DataSourceConfig selects where price series come from.
type DataSourceConfig struct {
	BaseURL  string `json:"base_url"`
	MockMode bool   `json:"mock_mode"` // Use deterministic synthetic data
	MockSeed int64  `json:"mock_seed"`
	BarLimit int    `json:"bar_limit"` // Bars fetched per series
}

// ScannerConfig drives the background scan loop.
type ScannerConfig struct {
	Enabled      bool     `json:"enabled"`
	ScanInterval int      `json:"scan_interval"` // Seconds between scans
	WorkerCount  int      `json:"worker_count"`
	MaxSymbols   int      `json:"max_symbols"`
	Symbols      []string `json:"symbols"`       // Empty = full exchange universe
	Timeframes   []string `json:"timeframes"`    // "1d", "1w", "4h"
	CacheTTL     int      `json:"cache_ttl"`     // Seconds
	CronSchedule string   `json:"cron_schedule"` // Optional cron expression for scheduled scans
}

// DetectionConfig tunes the pattern engine.
type DetectionConfig struct {
	Threshold      float64 `json:"threshold"`       // Minimum confidence to report
	Aggressive     bool    `json:"aggressive"`      // Lower threshold preset (45)
	TimingEnabled  bool    `json:"timing_enabled"`  // Apply market-calendar adjustments
	MinDataQuality int     `json:"min_data_quality"`
}

type RiskConfig struct {
	AccountSize        float64 `json:"account_size"`
	RiskPerTradePct    float64 `json:"risk_per_trade_pct"`
	VolatilityStopMult float64 `json:"volatility_stop_mult"`
	MinRRTarget1       float64 `json:"min_rr_target1"`
	MinRRTarget2       float64 `json:"min_rr_target2"`
}

type LoggingConfig struct {
	Level       string `json:"level"`        // DEBUG, INFO, WARN, ERROR
	Output      string `json:"output"`       // stdout, stderr, or file path
	JSONFormat  bool   `json:"json_format"`  // Output as JSON
	IncludeFile bool   `json:"include_file"` // Include file and line number
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int    `json:"port"`
	Host            string `json:"host"`
	AllowedOrigins  string `json:"allowed_origins"` // CORS allowed origins
	ReadTimeout     int    `json:"read_timeout"`    // Seconds
	WriteTimeout    int    `json:"write_timeout"`   // Seconds
	ShutdownTimeout int    `json:"shutdown_timeout"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Enabled              bool          `json:"enabled"`
	JWTSecret            string        `json:"jwt_secret"`
	AccessTokenDuration  time.Duration `json:"access_token_duration"`
	RefreshTokenDuration time.Duration `json:"refresh_token_duration"`
	MinPasswordLength    int           `json:"min_password_length"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

// RedisConfig holds Redis configuration for result caching
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// VaultConfig holds HashiCorp Vault configuration
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	MountPath  string `json:"mount_path"`
	SecretPath string `json:"secret_path"`
}

func Load() (*Config, error) {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := loadFromFile("config.json")
	if err != nil {
		cfg = &Config{}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment values take precedence over config.json.
func applyEnvOverrides(cfg *Config) {
	cfg.DataSourceConfig.BaseURL = getEnvOrDefault("DATASOURCE_BASE_URL", cfg.DataSourceConfig.BaseURL)
	if cfg.DataSourceConfig.BaseURL == "" {
		cfg.DataSourceConfig.BaseURL = "https://api.binance.com"
	}
	cfg.DataSourceConfig.MockMode = getEnvOrDefault("MOCK_MODE", boolStr(cfg.DataSourceConfig.MockMode)) == "true"
	cfg.DataSourceConfig.MockSeed = int64(getEnvIntOrDefault("MOCK_SEED", int(orInt64(cfg.DataSourceConfig.MockSeed, 42))))
	cfg.DataSourceConfig.BarLimit = getEnvIntOrDefault("DATASOURCE_BAR_LIMIT", orInt(cfg.DataSourceConfig.BarLimit, 200))

	cfg.ScannerConfig.Enabled = getEnvOrDefault("SCANNER_ENABLED", "true") == "true"
	cfg.ScannerConfig.ScanInterval = getEnvIntOrDefault("SCANNER_SCAN_INTERVAL", orInt(cfg.ScannerConfig.ScanInterval, 300))
	cfg.ScannerConfig.WorkerCount = getEnvIntOrDefault("SCANNER_WORKER_COUNT", orInt(cfg.ScannerConfig.WorkerCount, 10))
	cfg.ScannerConfig.MaxSymbols = getEnvIntOrDefault("SCANNER_MAX_SYMBOLS", orInt(cfg.ScannerConfig.MaxSymbols, 50))
	cfg.ScannerConfig.CacheTTL = getEnvIntOrDefault("SCANNER_CACHE_TTL", orInt(cfg.ScannerConfig.CacheTTL, 60))
	cfg.ScannerConfig.CronSchedule = getEnvOrDefault("SCANNER_CRON_SCHEDULE", cfg.ScannerConfig.CronSchedule)
	if len(cfg.ScannerConfig.Timeframes) == 0 {
		cfg.ScannerConfig.Timeframes = []string{"1d"}
	}

	cfg.DetectionConfig.Threshold = getEnvFloatOrDefault("DETECTION_THRESHOLD", orFloat(cfg.DetectionConfig.Threshold, 55))
	cfg.DetectionConfig.Aggressive = getEnvOrDefault("DETECTION_AGGRESSIVE", boolStr(cfg.DetectionConfig.Aggressive)) == "true"
	cfg.DetectionConfig.TimingEnabled = getEnvOrDefault("DETECTION_TIMING_ENABLED", "true") == "true"

	cfg.RiskConfig.AccountSize = getEnvFloatOrDefault("RISK_ACCOUNT_SIZE", orFloat(cfg.RiskConfig.AccountSize, 10000))
	cfg.RiskConfig.RiskPerTradePct = getEnvFloatOrDefault("RISK_PER_TRADE_PCT", orFloat(cfg.RiskConfig.RiskPerTradePct, 2.0))
	cfg.RiskConfig.VolatilityStopMult = getEnvFloatOrDefault("RISK_VOLATILITY_STOP_MULT", orFloat(cfg.RiskConfig.VolatilityStopMult, 1.5))
	cfg.RiskConfig.MinRRTarget1 = getEnvFloatOrDefault("RISK_MIN_RR_TARGET1", orFloat(cfg.RiskConfig.MinRRTarget1, 1.5))
	cfg.RiskConfig.MinRRTarget2 = getEnvFloatOrDefault("RISK_MIN_RR_TARGET2", orFloat(cfg.RiskConfig.MinRRTarget2, 2.5))

	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", "INFO")
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", "stdout")
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", "true") == "true"
	cfg.LoggingConfig.IncludeFile = getEnvOrDefault("LOG_INCLUDE_FILE", "false") == "true"

	cfg.ServerConfig.Port = getEnvIntOrDefault("WEB_PORT", orInt(cfg.ServerConfig.Port, 8080))
	cfg.ServerConfig.Host = getEnvOrDefault("WEB_HOST", "0.0.0.0")
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", "*")
	cfg.ServerConfig.ReadTimeout = getEnvIntOrDefault("SERVER_READ_TIMEOUT", 30)
	cfg.ServerConfig.WriteTimeout = getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 30)
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10)

	cfg.AuthConfig.Enabled = getEnvOrDefault("AUTH_ENABLED", "false") == "true"
	cfg.AuthConfig.JWTSecret = getEnvOrDefault("AUTH_JWT_SECRET", cfg.AuthConfig.JWTSecret)
	cfg.AuthConfig.AccessTokenDuration = getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_DURATION", 15*time.Minute)
	cfg.AuthConfig.RefreshTokenDuration = getEnvDurationOrDefault("AUTH_REFRESH_TOKEN_DURATION", 7*24*time.Hour)
	cfg.AuthConfig.MinPasswordLength = getEnvIntOrDefault("AUTH_MIN_PASSWORD_LENGTH", 8)

	cfg.DatabaseConfig.URL = getEnvOrDefault("DATABASE_URL", cfg.DatabaseConfig.URL)
	cfg.DatabaseConfig.Enabled = cfg.DatabaseConfig.URL != "" &&
		getEnvOrDefault("DATABASE_ENABLED", "true") == "true"

	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", boolStr(cfg.RedisConfig.Enabled)) == "true"
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDRESS", orStr(cfg.RedisConfig.Address, "localhost:6379"))
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", orInt(cfg.RedisConfig.PoolSize, 10))

	cfg.VaultConfig.Enabled = getEnvOrDefault("VAULT_ENABLED", "false") == "true"
	cfg.VaultConfig.Address = getEnvOrDefault("VAULT_ADDR", "http://localhost:8200")
	cfg.VaultConfig.Token = getEnvOrDefault("VAULT_TOKEN", cfg.VaultConfig.Token)
	cfg.VaultConfig.MountPath = getEnvOrDefault("VAULT_MOUNT_PATH", "secret")
	cfg.VaultConfig.SecretPath = getEnvOrDefault("VAULT_SECRET_PATH", "pattern-scanner/credentials")
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func orInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func orInt64(v, fallback int64) int64 {
	if v != 0 {
		return v
	}
	return fallback
}

func orFloat(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}

func orStr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// GenerateSampleConfig creates a sample configuration file.
func GenerateSampleConfig(filename string) error {
	config := Config{
		DataSourceConfig: DataSourceConfig{
			BaseURL:  "https://api.binance.com",
			MockMode: true,
			MockSeed: 42,
			BarLimit: 200,
		},
		ScannerConfig: ScannerConfig{
			Enabled:      true,
			ScanInterval: 300,
			WorkerCount:  10,
			MaxSymbols:   50,
			Timeframes:   []string{"1d", "1w"},
			CacheTTL:     60,
		},
		DetectionConfig: DetectionConfig{
			Threshold:     55,
			TimingEnabled: true,
		},
		RiskConfig: RiskConfig{
			AccountSize:        10000,
			RiskPerTradePct:    2.0,
			VolatilityStopMult: 1.5,
			MinRRTarget1:       1.5,
			MinRRTarget2:       2.5,
		},
		LoggingConfig: LoggingConfig{
			Level:      "INFO",
			Output:     "stdout",
			JSONFormat: true,
		},
		ServerConfig: ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			AllowedOrigins: "*",
		},
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
