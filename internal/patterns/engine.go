package patterns

import (
	"time"

	"pattern-scanner/internal/indicators"
	"pattern-scanner/internal/logging"
	"pattern-scanner/internal/market"
)

// Engine runs the pattern detectors over a bar series with shared indicator
// computation. Engines are safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *logging.Logger
}

// NewEngine creates a detection engine with the given thresholds.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logging.WithComponent("pattern_engine"),
	}
}

// Config returns the engine's active thresholds.
func (e *Engine) Config() Config { return e.cfg }

// Detect runs a single detector against the series. Series shorter than the
// pipeline minimum produce an undetected zero-confidence result.
func (e *Engine) Detect(s *market.Series, pattern PatternType) Result {
	res := Result{
		Symbol:    s.Symbol,
		Timeframe: s.Timeframe,
		Pattern:   pattern,
		ScannedAt: time.Now().UTC(),
	}
	if err := market.Validate(s); err != nil {
		e.logger.Debug("series failed validation", "symbol", s.Symbol, "error", err)
		return res
	}

	ind := indicators.Compute(s)
	return e.detectWith(s, ind, pattern, res)
}

// DetectAll runs every detector over the series, computing indicators once.
func (e *Engine) DetectAll(s *market.Series) []Result {
	results := make([]Result, 0, len(AllPatterns))
	if err := market.Validate(s); err != nil {
		e.logger.Debug("series failed validation", "symbol", s.Symbol, "error", err)
		for _, p := range AllPatterns {
			results = append(results, Result{
				Symbol:    s.Symbol,
				Timeframe: s.Timeframe,
				Pattern:   p,
				ScannedAt: time.Now().UTC(),
			})
		}
		return results
	}

	ind := indicators.Compute(s)
	for _, p := range AllPatterns {
		res := Result{
			Symbol:    s.Symbol,
			Timeframe: s.Timeframe,
			Pattern:   p,
			ScannedAt: time.Now().UTC(),
		}
		results = append(results, e.detectWith(s, ind, p, res))
	}
	return results
}

func (e *Engine) detectWith(s *market.Series, ind *indicators.Set, pattern PatternType, res Result) Result {
	var conf float64
	var info Info

	switch pattern {
	case InsideBar:
		c, i := detectInsideBar(s, ind, e.cfg)
		conf = c
		if i != nil {
			info = i
		}
	case FlatTopBreakout:
		c, i := detectFlatTop(s, ind, e.cfg)
		conf = c
		if i != nil {
			info = i
		}
	case BullFlag:
		c, i := detectBullFlag(s, ind, e.cfg)
		conf = clamp(c * e.cfg.BullFlagBoost)
		if i != nil {
			info = i
		}
	case CupHandle:
		c, i := detectCupHandle(s, ind, e.cfg)
		conf = clamp(c * e.cfg.CupHandleBoost)
		if i != nil {
			info = i
		}
	case InverseHeadShoulders:
		c, i := detectInverseHS(s, ind, e.cfg)
		conf = c
		if i != nil {
			info = i
		}
	case ConsolidationBreakout:
		c, i := detectConsolidation(s, ind, e.cfg)
		conf = c
		if i != nil {
			info = i
		}
	default:
		return res
	}

	conf = clamp(conf)
	res.Confidence = conf
	res.Detected = conf >= e.cfg.DetectionThreshold
	res.Info = info
	res.MACDSeries = ind.MACD
	res.SignalSeries = ind.Signal
	res.HistogramSeries = ind.Histogram

	if info != nil {
		common := info.Common()
		n := len(ind.MACD)
		if n > 0 {
			common.MACD = ind.MACD[n-1]
			common.Signal = ind.Signal[n-1]
			common.Histogram = ind.Histogram[n-1]
		}
	}

	if res.Detected {
		e.logger.Debug("pattern detected",
			"symbol", s.Symbol,
			"pattern", string(pattern),
			"confidence", conf)
	}
	return res
}
