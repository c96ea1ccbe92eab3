// Package api exposes scan results, on-demand detection and market timing
// over HTTP and WebSocket.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pattern-scanner/config"
	"pattern-scanner/internal/auth"
	"pattern-scanner/internal/cache"
	"pattern-scanner/internal/database"
	"pattern-scanner/internal/datasource"
	"pattern-scanner/internal/logging"
	"pattern-scanner/internal/patterns"
	"pattern-scanner/internal/risk"
	"pattern-scanner/internal/scanner"
	"pattern-scanner/internal/vault"
)

// RateLimiter provides simple in-memory rate limiting per client IP.
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int           // max requests
	window   time.Duration // time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request is allowed for the given key
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-r.window)

	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// Server represents the HTTP API server
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      config.ServerConfig
	source      datasource.Source
	engine      *patterns.Engine
	calculator  *risk.Calculator
	scanner     *scanner.Scanner
	repo        *database.Repository // nil when the database is disabled
	cache       *cache.Service       // nil when redis is disabled
	authService *auth.Service        // nil when auth is disabled
	vault       *vault.Client        // nil when credential storage is disabled
	rateLimiter *RateLimiter
	hub         *WSHub
	logger      *logging.Logger

	timingEnabled bool
}

// NewServer creates a new API server. repo, cacheSvc, authService and
// vaultClient may be nil when the corresponding subsystem is disabled.
func NewServer(
	cfg config.ServerConfig,
	source datasource.Source,
	engine *patterns.Engine,
	calculator *risk.Calculator,
	sc *scanner.Scanner,
	repo *database.Repository,
	cacheSvc *cache.Service,
	authService *auth.Service,
	vaultClient *vault.Client,
	timingEnabled bool,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.AllowedOrigins == "" || cfg.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.AllowedOrigins, ",")
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:        router,
		config:        cfg,
		source:        source,
		engine:        engine,
		calculator:    calculator,
		scanner:       sc,
		repo:          repo,
		cache:         cacheSvc,
		authService:   authService,
		vault:         vaultClient,
		rateLimiter:   NewRateLimiter(120, time.Minute),
		hub:           NewWSHub(),
		logger:        logging.WithComponent("api"),
		timingEnabled: timingEnabled,
	}

	server.setupRoutes()

	go server.hub.Run()
	sc.Subscribe(server.hub.BroadcastScan)

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	api := s.router.Group("/api")
	api.Use(s.rateLimitMiddleware())

	if s.authService != nil {
		auth.NewHandlers(s.authService).RegisterRoutes(api.Group("/auth"))
		api.Use(auth.Middleware(s.authService.JWT()))

		// Per-user exchange credentials need an authenticated identity.
		if s.vault != nil {
			api.POST("/credentials", s.handleStoreCredentials)
			api.GET("/credentials/:exchange", s.handleGetCredentials)
			api.DELETE("/credentials/:exchange", s.handleDeleteCredentials)
		}
	}

	api.GET("/scan/latest", s.handleLatestScan)
	api.POST("/scan", s.handleTriggerScan)
	api.GET("/detections", s.handleRecentDetections)
	api.GET("/detections/:symbol", s.handleSymbolDetections)
	api.GET("/symbols", s.handleSymbols)
	api.GET("/symbols/:symbol/patterns", s.handleDetectSymbol)
	api.GET("/market/timing", s.handleMarketTiming)
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.rateLimiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
	}

	s.logger.Info("API server listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
