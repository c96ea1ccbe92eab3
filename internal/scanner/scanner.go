// Package scanner runs the detection engine across a symbol universe on a
// schedule, fanning symbols out to a worker pool and assembling ranked
// detections with trade levels.
package scanner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pattern-scanner/internal/datasource"
	"pattern-scanner/internal/patterns"
	"pattern-scanner/internal/risk"
	"pattern-scanner/internal/timing"
)

// Scanner orchestrates pattern detection across multiple symbols.
type Scanner struct {
	source     datasource.Source
	engine     *patterns.Engine
	calculator *risk.Calculator
	store      DetectionStore
	cache      ResultCache
	config     Config
	logger     zerolog.Logger

	stopChan    chan struct{}
	wg          sync.WaitGroup
	mu          sync.RWMutex
	lastResult  *ScanResult
	subscribers []func(*ScanResult)
}

// NewScanner creates a scanner. store and cache may be nil.
func NewScanner(
	source datasource.Source,
	engine *patterns.Engine,
	calculator *risk.Calculator,
	store DetectionStore,
	cache ResultCache,
	config Config,
	logger zerolog.Logger,
) *Scanner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 10
	}
	if config.BarLimit <= 0 {
		config.BarLimit = 200
	}
	return &Scanner{
		source:     source,
		engine:     engine,
		calculator: calculator,
		store:      store,
		cache:      cache,
		config:     config,
		logger:     logger.With().Str("component", "scanner").Logger(),
		stopChan:   make(chan struct{}),
	}
}

// Start begins the background scan loop.
func (sc *Scanner) Start() {
	if !sc.config.Enabled {
		sc.logger.Info().Msg("scanner disabled")
		return
	}
	sc.wg.Add(1)
	go sc.runScanLoop()
	sc.logger.Info().
		Dur("interval", sc.config.ScanInterval).
		Int("workers", sc.config.WorkerCount).
		Msg("scanner started")
}

func (sc *Scanner) runScanLoop() {
	defer sc.wg.Done()

	ticker := time.NewTicker(sc.config.ScanInterval)
	defer ticker.Stop()

	sc.scan()

	for {
		select {
		case <-ticker.C:
			sc.scan()
		case <-sc.stopChan:
			sc.logger.Info().Msg("scanner stopped")
			return
		}
	}
}

// Scan executes a single scan cycle and returns its result.
func (sc *Scanner) Scan() *ScanResult {
	return sc.scan()
}

func (sc *Scanner) scan() *ScanResult {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	startTime := time.Now()
	scanID := uuid.NewString()
	marketCtx := timing.NewMarketContext(startTime)

	symbols := sc.symbolsToScan(ctx)
	sc.logger.Info().Str("scan_id", scanID).Int("symbols", len(symbols)).Msg("starting scan")

	type symbolOutcome struct {
		detections []Detection
		err        error
	}

	symbolChan := make(chan string, len(symbols))
	outcomeChan := make(chan symbolOutcome, len(symbols))
	var wg sync.WaitGroup

	for i := 0; i < sc.config.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range symbolChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				dets, err := sc.scanSymbol(ctx, symbol, marketCtx)
				outcomeChan <- symbolOutcome{detections: dets, err: err}
			}
		}()
	}

	go func() {
		for _, symbol := range symbols {
			select {
			case symbolChan <- symbol:
			case <-ctx.Done():
			}
		}
		close(symbolChan)
	}()

	go func() {
		wg.Wait()
		close(outcomeChan)
	}()

	var detections []Detection
	errCount := 0
	for out := range outcomeChan {
		if out.err != nil {
			errCount++
			continue
		}
		detections = append(detections, out.detections...)
	}

	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Result.Confidence > detections[j].Result.Confidence
	})
	if sc.config.MaxSymbols > 0 && len(detections) > sc.config.MaxSymbols {
		detections = detections[:sc.config.MaxSymbols]
	}

	result := &ScanResult{
		ScanID:         scanID,
		StartTime:      startTime,
		EndTime:        time.Now(),
		Duration:       time.Since(startTime),
		SymbolsScanned: len(symbols),
		Errors:         errCount,
		Context:        marketCtx,
		Detections:     detections,
	}

	sc.mu.Lock()
	sc.lastResult = result
	subscribers := make([]func(*ScanResult), len(sc.subscribers))
	copy(subscribers, sc.subscribers)
	sc.mu.Unlock()

	for _, fn := range subscribers {
		go fn(result)
	}

	if sc.cache != nil {
		sc.cache.SetScan(ctx, result)
	}
	if sc.store != nil {
		if err := sc.store.SaveScan(ctx, result); err != nil {
			sc.logger.Warn().Err(err).Msg("failed to persist scan")
		}
	}

	sc.logger.Info().
		Str("scan_id", scanID).
		Dur("duration", result.Duration).
		Int("detections", len(detections)).
		Int("errors", errCount).
		Msg("scan completed")
	return result
}

// scanSymbol runs every detector on each configured timeframe for a symbol.
func (sc *Scanner) scanSymbol(ctx context.Context, symbol string, marketCtx timing.MarketContext) ([]Detection, error) {
	var detections []Detection
	for _, tf := range sc.config.Timeframes {
		series, err := sc.source.GetSeries(ctx, symbol, tf, sc.config.BarLimit)
		if err != nil {
			return detections, err
		}

		for _, res := range sc.engine.DetectAll(series) {
			if !res.Detected {
				continue
			}
			if sc.config.TimingEnabled {
				timing.AdjustConfidence(&res, marketCtx)
			}

			levels := sc.calculator.Calculate(series, res)
			res.Levels = levels
			det := Detection{
				Result:     res,
				Levels:     levels,
				Validation: risk.ValidateLevels(levels),
			}
			if sc.config.AccountSize > 0 {
				det.Position = risk.CalculatePositionSize(levels, sc.config.AccountSize, sc.config.RiskPerTrade)
			}
			det.Recommendations = timing.Recommendations(&res, marketCtx)
			detections = append(detections, det)
		}
	}
	return detections, nil
}

func (sc *Scanner) symbolsToScan(ctx context.Context) []string {
	if len(sc.config.Symbols) > 0 {
		return sc.config.Symbols
	}
	symbols, err := sc.source.GetAllSymbols(ctx)
	if err != nil {
		sc.logger.Warn().Err(err).Msg("failed to list symbols")
		return nil
	}
	if sc.config.MaxSymbols > 0 && len(symbols) > sc.config.MaxSymbols {
		symbols = symbols[:sc.config.MaxSymbols]
	}
	return symbols
}

// Subscribe registers a callback invoked after every completed scan. Each
// callback runs on its own goroutine and must not mutate the result.
func (sc *Scanner) Subscribe(fn func(*ScanResult)) {
	sc.mu.Lock()
	sc.subscribers = append(sc.subscribers, fn)
	sc.mu.Unlock()
}

// GetLastResult returns the most recent scan result, or nil before the
// first scan completes.
func (sc *Scanner) GetLastResult() *ScanResult {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.lastResult
}

// Stop gracefully shuts down the scanner.
func (sc *Scanner) Stop() {
	close(sc.stopChan)
	sc.wg.Wait()
}
