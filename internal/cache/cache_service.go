// Package cache provides Redis-based caching for scan results with
// graceful degradation: when Redis is unavailable the scanner keeps working
// and API reads fall back to the in-memory last result.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"pattern-scanner/config"
	"pattern-scanner/internal/logging"
	"pattern-scanner/internal/scanner"
)

// Cache keys.
const (
	KeyLastScan    = "scan:last"
	KeySeriesCache = "series:%s:%s" // symbol, timeframe
)

// Service wraps a Redis client with health tracking. A degraded service
// silently skips writes and misses reads.
type Service struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger

	mu           sync.RWMutex
	healthy      bool
	failureCount int
	maxFailures  int
}

// NewService connects to Redis. A failed initial connection returns the
// service in degraded mode rather than an error.
func NewService(cfg config.RedisConfig, ttl time.Duration) (*Service, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is not enabled in configuration")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	s := &Service{
		client:      client,
		ttl:         ttl,
		logger:      logging.WithComponent("cache"),
		maxFailures: 3,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		s.logger.Warn("initial redis connection failed, running degraded", "error", err)
		return s, nil
	}

	s.healthy = true
	s.logger.Info("redis connected", "address", cfg.Address)
	return s, nil
}

// IsHealthy reports whether Redis is currently usable.
func (s *Service) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthy
}

func (s *Service) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failureCount++
	if s.failureCount >= s.maxFailures && s.healthy {
		s.healthy = false
		s.logger.Warn("redis marked unhealthy", "failures", s.failureCount, "error", err)
	}
}

func (s *Service) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failureCount = 0
	if !s.healthy {
		s.healthy = true
		s.logger.Info("redis recovered")
	}
}

// SetScan stores the latest scan result.
func (s *Service) SetScan(ctx context.Context, result *scanner.ScanResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, KeyLastScan, data, s.ttl).Err(); err != nil {
		s.recordFailure(err)
		return
	}
	s.recordSuccess()
}

// GetScanJSON retrieves the latest cached scan result as raw JSON, ready to
// serve. Pattern info is polymorphic, so cached scans are never decoded back
// into structs.
func (s *Service) GetScanJSON(ctx context.Context) ([]byte, bool) {
	data, err := s.client.Get(ctx, KeyLastScan).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.recordFailure(err)
		}
		return nil, false
	}
	s.recordSuccess()
	return data, true
}

// Close releases the Redis connection.
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Interface check against the scanner's cache seam.
var _ scanner.ResultCache = (*Service)(nil)
