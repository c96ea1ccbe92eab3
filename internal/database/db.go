// Package database persists scans and detections in PostgreSQL.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pattern-scanner/internal/logging"
)

// DB wraps the PostgreSQL connection pool.
type DB struct {
	Pool   *pgxpool.Pool
	logger *logging.Logger
}

// NewDB creates a connection pool from a DSN and verifies connectivity.
func NewDB(url string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger := logging.WithComponent("database")
	logger.Info("connected to PostgreSQL")
	return &DB{Pool: pool, logger: logger}, nil
}

// Close closes the database connection.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.logger.Info("database connection closed")
	}
}

// RunMigrations creates the scan and detection tables.
func (db *DB) RunMigrations(ctx context.Context) error {
	db.logger.Info("running database migrations")

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id UUID PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			duration_ms BIGINT NOT NULL,
			symbols_scanned INT NOT NULL,
			errors INT NOT NULL DEFAULT 0,
			gap_risk TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS detections (
			id BIGSERIAL PRIMARY KEY,
			scan_id UUID NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
			symbol TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			pattern TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			entry DOUBLE PRECISION,
			stop_loss DOUBLE PRECISION,
			target1 DOUBLE PRECISION,
			target2 DOUBLE PRECISION,
			target3 DOUBLE PRECISION,
			levels_valid BOOLEAN NOT NULL DEFAULT TRUE,
			info JSONB,
			detected_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_scan_id ON detections(scan_id)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_symbol ON detections(symbol, pattern)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_detected_at ON detections(detected_at DESC)`,
	}

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	db.logger.Info("database migrations completed")
	return nil
}
