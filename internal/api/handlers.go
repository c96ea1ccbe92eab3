package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pattern-scanner/internal/market"
	"pattern-scanner/internal/risk"
	"pattern-scanner/internal/scanner"
	"pattern-scanner/internal/timing"
)

// handleHealth reports liveness plus subsystem status
// GET /health
func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
		"websocket": gin.H{"clients": s.hub.GetClientCount()},
	}
	if s.cache != nil {
		status["cache"] = gin.H{"healthy": s.cache.IsHealthy()}
	}
	if last := s.scanner.GetLastResult(); last != nil {
		status["last_scan"] = gin.H{
			"scan_id":    last.ScanID,
			"end_time":   last.EndTime,
			"detections": len(last.Detections),
		}
	}
	c.JSON(http.StatusOK, status)
}

// handleLatestScan returns the most recent scan result
// GET /api/scan/latest
func (s *Server) handleLatestScan(c *gin.Context) {
	if last := s.scanner.GetLastResult(); last != nil {
		c.JSON(http.StatusOK, last)
		return
	}

	// Fall back to redis after a restart, before the first scan completes.
	if s.cache != nil {
		if raw, ok := s.cache.GetScanJSON(c.Request.Context()); ok {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "no scan completed yet"})
}

// handleTriggerScan runs a scan cycle synchronously and returns its result
// POST /api/scan
func (s *Server) handleTriggerScan(c *gin.Context) {
	result := s.scanner.Scan()
	c.JSON(http.StatusOK, result)
}

// handleRecentDetections returns persisted detections, newest first
// GET /api/detections?limit=50
func (s *Server) handleRecentDetections(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database disabled"})
		return
	}

	limit := queryInt(c, "limit", 50)
	records, err := s.repo.GetRecentDetections(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"detections": records, "count": len(records)})
}

// handleSymbolDetections returns persisted detections for one symbol
// GET /api/detections/:symbol?limit=50
func (s *Server) handleSymbolDetections(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database disabled"})
		return
	}

	symbol := c.Param("symbol")
	limit := queryInt(c, "limit", 50)
	records, err := s.repo.GetDetectionsBySymbol(c.Request.Context(), symbol, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "detections": records, "count": len(records)})
}

// handleSymbols lists the tradable symbol universe
// GET /api/symbols
func (s *Server) handleSymbols(c *gin.Context) {
	symbols, err := s.source.GetAllSymbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols, "count": len(symbols)})
}

// handleDetectSymbol runs detection on demand for a single symbol
// GET /api/symbols/:symbol/patterns?timeframe=daily&limit=200
func (s *Server) handleDetectSymbol(c *gin.Context) {
	symbol := c.Param("symbol")
	tf := market.ParseTimeframe(c.DefaultQuery("timeframe", "daily"))
	limit := queryInt(c, "limit", 200)

	series, err := s.source.GetSeries(c.Request.Context(), symbol, tf, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	marketCtx := timing.NewMarketContext(time.Now())
	var detections []scanner.Detection
	for _, res := range s.engine.DetectAll(series) {
		if !res.Detected {
			continue
		}
		if s.timingEnabled {
			timing.AdjustConfidence(&res, marketCtx)
		}

		levels := s.calculator.Calculate(series, res)
		res.Levels = levels
		detections = append(detections, scanner.Detection{
			Result:          res,
			Levels:          levels,
			Validation:      risk.ValidateLevels(levels),
			Recommendations: timing.Recommendations(&res, marketCtx),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":     symbol,
		"timeframe":  tf,
		"bars":       series.Len(),
		"detections": detections,
		"context":    marketCtx,
	})
}

// handleMarketTiming returns the current market timing context and gap risk
// GET /api/market/timing
func (s *Server) handleMarketTiming(c *gin.Context) {
	ctx := timing.NewMarketContext(time.Now())
	c.JSON(http.StatusOK, gin.H{
		"context":  ctx,
		"gap_risk": timing.AssessGapRisk(ctx),
	})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
