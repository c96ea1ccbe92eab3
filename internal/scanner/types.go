package scanner

import (
	"context"
	"time"

	"pattern-scanner/internal/market"
	"pattern-scanner/internal/patterns"
	"pattern-scanner/internal/risk"
	"pattern-scanner/internal/timing"
)

// Config controls the background scan loop.
type Config struct {
	Enabled       bool
	ScanInterval  time.Duration
	WorkerCount   int
	MaxSymbols    int
	Symbols       []string // Empty = full source universe
	Timeframes    []market.Timeframe
	BarLimit      int
	TimingEnabled bool
	AccountSize   float64
	RiskPerTrade  float64
}

// Detection is one detected pattern with its derived trade plan.
type Detection struct {
	Result          patterns.Result    `json:"result"`
	Levels          *patterns.Levels   `json:"levels,omitempty"`
	Validation      risk.Validation    `json:"validation"`
	Position        *risk.PositionSize `json:"position,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// ScanResult is the outcome of one full scan cycle.
type ScanResult struct {
	ScanID         string               `json:"scan_id"`
	StartTime      time.Time            `json:"start_time"`
	EndTime        time.Time            `json:"end_time"`
	Duration       time.Duration        `json:"duration"`
	SymbolsScanned int                  `json:"symbols_scanned"`
	Errors         int                  `json:"errors"`
	Context        timing.MarketContext `json:"market_context"`
	Detections     []Detection          `json:"detections"`
}

// DetectionStore persists completed scans. Implemented by the database
// repository; nil stores are skipped.
type DetectionStore interface {
	SaveScan(ctx context.Context, result *ScanResult) error
}

// ResultCache keeps the latest scan hot for API reads. Implemented by the
// redis cache service; nil caches are skipped.
type ResultCache interface {
	SetScan(ctx context.Context, result *ScanResult)
}
