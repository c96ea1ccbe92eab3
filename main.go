package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pattern-scanner/config"
	"pattern-scanner/internal/api"
	"pattern-scanner/internal/auth"
	"pattern-scanner/internal/cache"
	"pattern-scanner/internal/database"
	"pattern-scanner/internal/datasource"
	"pattern-scanner/internal/logging"
	"pattern-scanner/internal/market"
	"pattern-scanner/internal/patterns"
	"pattern-scanner/internal/risk"
	"pattern-scanner/internal/scanner"
	"pattern-scanner/internal/scheduler"
	"pattern-scanner/internal/vault"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(&logging.Config{
		Level:       cfg.LoggingConfig.Level,
		Output:      cfg.LoggingConfig.Output,
		JSONFormat:  cfg.LoggingConfig.JSONFormat,
		IncludeFile: cfg.LoggingConfig.IncludeFile,
		Component:   "main",
	})
	logging.SetDefault(logger)
	logger.Info("Structured logging initialized")

	// Data source: live exchange REST or deterministic synthetic series
	var source datasource.Source
	if cfg.DataSourceConfig.MockMode {
		source = datasource.NewSynthetic(cfg.DataSourceConfig.MockSeed)
		logger.Info("Using synthetic data source", "seed", cfg.DataSourceConfig.MockSeed)
	} else {
		source = datasource.NewClient(cfg.DataSourceConfig.BaseURL)
		logger.Info("Using live data source", "base_url", cfg.DataSourceConfig.BaseURL)
	}

	// Pattern engine
	patternCfg := patterns.DefaultConfig()
	if cfg.DetectionConfig.Aggressive {
		patternCfg = patterns.AggressiveConfig()
	}
	if cfg.DetectionConfig.Threshold > 0 {
		patternCfg.DetectionThreshold = cfg.DetectionConfig.Threshold
	}
	engine := patterns.NewEngine(patternCfg)

	// Risk calculator
	riskCfg := risk.DefaultConfig()
	if cfg.RiskConfig.VolatilityStopMult > 0 {
		riskCfg.VolatilityStopMult = cfg.RiskConfig.VolatilityStopMult
	}
	if cfg.RiskConfig.MinRRTarget1 > 0 {
		riskCfg.MinRR1 = cfg.RiskConfig.MinRRTarget1
	}
	if cfg.RiskConfig.MinRRTarget2 > 0 {
		riskCfg.MinRR2 = cfg.RiskConfig.MinRRTarget2
	}
	calculator := risk.NewCalculator(riskCfg, patternCfg)

	// Optional PostgreSQL persistence
	var repo *database.Repository
	var db *database.DB
	if cfg.DatabaseConfig.Enabled {
		db, err = database.NewDB(cfg.DatabaseConfig.URL)
		if err != nil {
			logger.Error("Failed to connect to database, persistence disabled", "error", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := db.RunMigrations(ctx); err != nil {
				logger.Error("Failed to run migrations", "error", err)
			}
			cancel()
			repo = database.NewRepository(db)
			defer db.Close()
			logger.Info("Database connected")
		}
	}

	// Optional redis result cache
	var cacheSvc *cache.Service
	if cfg.RedisConfig.Enabled {
		ttl := time.Duration(cfg.ScannerConfig.CacheTTL) * time.Second
		cacheSvc, err = cache.NewService(cfg.RedisConfig, ttl)
		if err != nil {
			logger.Error("Failed to initialize cache", "error", err)
		} else {
			defer cacheSvc.Close()
		}
	}

	// Vault for exchange credentials. Disabled mode keeps them in memory.
	vaultClient, err := vault.NewClient(cfg.VaultConfig)
	if err != nil {
		logger.Warn("Vault unavailable, credential storage disabled", "error", err)
		vaultClient = nil
	}

	// Optional JWT authentication
	var authService *auth.Service
	if cfg.AuthConfig.Enabled {
		if cfg.AuthConfig.JWTSecret == "" {
			log.Fatal("AUTH_JWT_SECRET must be set when auth is enabled")
		}
		authService = auth.NewService(cfg.AuthConfig)
		if email := os.Getenv("AUTH_ADMIN_EMAIL"); email != "" {
			if err := authService.SeedAdmin(email, os.Getenv("AUTH_ADMIN_PASSWORD")); err != nil {
				logger.Error("Failed to seed admin account", "error", err)
			}
		}
		logger.Info("Authentication enabled")
	}

	// Scanner with its worker pool
	timeframes := make([]market.Timeframe, 0, len(cfg.ScannerConfig.Timeframes))
	for _, tf := range cfg.ScannerConfig.Timeframes {
		timeframes = append(timeframes, market.ParseTimeframe(tf))
	}
	if len(timeframes) == 0 {
		timeframes = []market.Timeframe{market.Daily}
	}

	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()
	sc := scanner.NewScanner(
		source,
		engine,
		calculator,
		storeOrNil(repo),
		cacheOrNil(cacheSvc),
		scanner.Config{
			Enabled:       cfg.ScannerConfig.Enabled,
			ScanInterval:  time.Duration(cfg.ScannerConfig.ScanInterval) * time.Second,
			WorkerCount:   cfg.ScannerConfig.WorkerCount,
			MaxSymbols:    cfg.ScannerConfig.MaxSymbols,
			Symbols:       cfg.ScannerConfig.Symbols,
			Timeframes:    timeframes,
			BarLimit:      cfg.DataSourceConfig.BarLimit,
			TimingEnabled: cfg.DetectionConfig.TimingEnabled,
			AccountSize:   cfg.RiskConfig.AccountSize,
			RiskPerTrade:  cfg.RiskConfig.RiskPerTradePct,
		},
		zlog,
	)
	sc.Start()
	defer sc.Stop()

	// Optional cron-scheduled scans alongside the interval loop
	if cfg.ScannerConfig.CronSchedule != "" {
		sched := scheduler.New(sc)
		if err := sched.RegisterScan(cfg.ScannerConfig.CronSchedule); err != nil {
			logger.Error("Invalid cron schedule", "error", err)
		} else {
			sched.Start()
			defer sched.Stop()
		}
	}

	// HTTP and WebSocket API
	server := api.NewServer(
		cfg.ServerConfig,
		source,
		engine,
		calculator,
		sc,
		repo,
		cacheSvc,
		authService,
		vaultClient,
		cfg.DetectionConfig.TimingEnabled,
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutting down", "signal", sig.String())
	case err := <-errChan:
		if err != nil {
			logger.Error("Server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Shutdown complete")
}

// storeOrNil avoids a typed-nil interface when the database is disabled.
func storeOrNil(repo *database.Repository) scanner.DetectionStore {
	if repo == nil {
		return nil
	}
	return repo
}

func cacheOrNil(svc *cache.Service) scanner.ResultCache {
	if svc == nil {
		return nil
	}
	return svc
}
