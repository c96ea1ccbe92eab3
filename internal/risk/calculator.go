// Package risk derives entry, stop, and measured-move targets from detected
// patterns and validates the resulting level sets.
package risk

import (
	"pattern-scanner/internal/logging"
	"pattern-scanner/internal/market"
	"pattern-scanner/internal/patterns"
)

// Config holds the risk management parameters.
type Config struct {
	// VolatilityStopMult scales the 20-bar average range into a
	// volatility stop distance.
	VolatilityStopMult float64 `json:"volatility_stop_mult"`

	// MinRR1 and MinRR2 are the minimum risk/reward ratios enforced on
	// the standard two-target path. Targets are pushed out to meet them.
	MinRR1 float64 `json:"min_rr_target1"`
	MinRR2 float64 `json:"min_rr_target2"`
}

// DefaultConfig returns the standard risk parameters.
func DefaultConfig() Config {
	return Config{
		VolatilityStopMult: 1.5,
		MinRR1:             1.5,
		MinRR2:             2.5,
	}
}

// Calculator computes trading levels for detected patterns.
type Calculator struct {
	cfg    Config
	pcfg   patterns.Config
	logger *logging.Logger
}

// NewCalculator builds a calculator sharing the detection engine's pattern
// thresholds for stop distances and level multipliers.
func NewCalculator(cfg Config, pcfg patterns.Config) *Calculator {
	return &Calculator{
		cfg:    cfg,
		pcfg:   pcfg,
		logger: logging.WithComponent("risk"),
	}
}

// Calculate derives levels for the result's pattern. Unknown or missing
// pattern info falls back to volatility-based defaults around the current
// close.
func (c *Calculator) Calculate(s *market.Series, res patterns.Result) *patterns.Levels {
	current := s.Last().Close
	volStop := market.MeanRange(market.LastN(s.Bars, 20)) * c.cfg.VolatilityStopMult

	switch info := res.Info.(type) {
	case *patterns.InsideBarInfo:
		return c.insideBarLevels(info, current)
	case *patterns.FlatTopInfo:
		return c.flatTopLevels(s, info, current, volStop)
	case *patterns.BullFlagInfo:
		return c.bullFlagLevels(s, info, current, volStop)
	case *patterns.CupHandleInfo:
		return c.cupHandleLevels(s, info, current, volStop)
	case *patterns.InverseHSInfo:
		return c.inverseHSLevels(info, current, volStop)
	case *patterns.ConsolidationInfo:
		return c.consolidationLevels(info, current, volStop)
	default:
		return c.defaultLevels(current)
	}
}

// insideBarLevels uses fixed multipliers off the formation itself, with no
// minimum risk/reward enforcement.
func (c *Calculator) insideBarLevels(info *patterns.InsideBarInfo, current float64) *patterns.Levels {
	ib := c.pcfg.InsideBarLevels

	insideHigh := orDefault(info.InsideHigh, current)
	insideLow := orDefault(info.InsideLow, current*0.95)
	motherHigh := orDefault(info.MotherHigh, current*1.05)

	entry := insideHigh * ib.EntryBuffer
	stop := insideLow * ib.StopBuffer
	target1 := motherHigh
	target2 := motherHigh * ib.Target2Mult
	target3 := motherHigh * ib.Target3Mult

	lv := &patterns.Levels{
		Entry:        entry,
		Stop:         stop,
		Target1:      target1,
		Target2:      target2,
		Target3:      target3,
		HasTarget3:   true,
		TargetMethod: "Inside Bar Fixed Targets",
		MeasuredMove: true,
	}
	lv.RiskAmount = entry - stop
	lv.Reward1 = target1 - entry
	lv.Reward2 = target2 - entry
	lv.Reward3 = target3 - entry
	if lv.RiskAmount > 0 {
		lv.RR1 = lv.Reward1 / lv.RiskAmount
		lv.RR2 = lv.Reward2 / lv.RiskAmount
		lv.RR3 = lv.Reward3 / lv.RiskAmount
	}
	return lv
}

func (c *Calculator) inverseHSLevels(info *patterns.InverseHSInfo, current, volStop float64) *patterns.Levels {
	neckline := orDefault(info.Neckline, current*1.01)
	entry := neckline * 1.005

	rightShoulder := orDefault(info.RightShoulder, current*0.95)
	head := orDefault(info.HeadPrice, current*0.90)
	techStop := rightShoulder
	if head < techStop {
		techStop = head
	}
	stop := maxF(entry-volStop, techStop*0.98)
	stop = c.enforceMinStop(patterns.InverseHeadShoulders, entry, stop)

	var target1, target2 float64
	method := "Head Depth Projection"
	if info.HeadDepth > 0 {
		depth := maxF(neckline*info.HeadDepth, entry*0.08)
		target1 = entry + depth
		target2 = entry + depth*1.618
	} else {
		risk := entry - stop
		target1 = entry + risk*2.0
		target2 = entry + risk*3.5
		method = "Risk-Based Targets"
	}
	return c.standardLevels(entry, stop, target1, target2, method)
}

func (c *Calculator) flatTopLevels(s *market.Series, info *patterns.FlatTopInfo, current, volStop float64) *patterns.Levels {
	entry := orDefault(info.Resistance, current*1.01)
	recentLow := market.LowestLow(market.LastN(s.Bars, 15))
	stop := maxF(entry-volStop, recentLow*0.98)
	stop = c.enforceMinStop(patterns.FlatTopBreakout, entry, stop)

	var target1, target2 float64
	if info.Resistance > 0 {
		// Highest of the recent lows approximates the rising support
		// line of the triangle.
		support := 0.0
		for _, b := range market.LastN(s.Bars, 20) {
			if b.Low > support {
				support = b.Low
			}
		}
		height := maxF(entry-support, entry*0.05)
		target1 = entry + height
		target2 = entry + height*1.618
	} else {
		risk := entry - stop
		target1 = entry + risk*2.0
		target2 = entry + risk*3.5
	}
	return c.standardLevels(entry, stop, target1, target2, "Triangle Height Projection")
}

func (c *Calculator) bullFlagLevels(s *market.Series, info *patterns.BullFlagInfo, current, volStop float64) *patterns.Levels {
	flagHigh := market.HighestHigh(market.LastN(s.Bars, 15))
	entry := flagHigh * 1.005
	flagLow := market.LowestLow(market.LastN(s.Bars, 12))
	stop := maxF(entry-volStop, flagLow*0.98)
	stop = c.enforceMinStop(patterns.BullFlag, entry, stop)

	var target1, target2 float64
	if info.FlagpoleGain > 0 {
		poleStart := entry / (1 + info.FlagpoleGain)
		height := maxF(entry-poleStart, entry*0.08)
		target1 = entry + height
		target2 = entry + height*1.382
	} else {
		risk := entry - stop
		target1 = entry + risk*2.5
		target2 = entry + risk*4.0
	}
	return c.standardLevels(entry, stop, target1, target2, "Flagpole Height Projection")
}

func (c *Calculator) cupHandleLevels(s *market.Series, info *patterns.CupHandleInfo, current, volStop float64) *patterns.Levels {
	var entry float64
	if info.CupDepth > 0 {
		estimatedRim := current / (1 - info.CupDepth*0.3)
		entry = estimatedRim * 1.005
	} else {
		entry = current * 1.02
	}

	handleLow := market.LowestLow(market.LastN(s.Bars, 15))
	stop := maxF(entry-volStop, handleLow*0.97)
	stop = c.enforceMinStop(patterns.CupHandle, entry, stop)

	var target1, target2 float64
	if info.CupDepth > 0 {
		depth := maxF(entry*info.CupDepth, entry*0.10)
		target1 = entry + depth
		target2 = entry + depth*1.618
	} else {
		risk := entry - stop
		target1 = entry + risk*2.0
		target2 = entry + risk*3.0
	}
	return c.standardLevels(entry, stop, target1, target2, "Cup Depth Projection")
}

// consolidationLevels projects the box height above the breakout level.
func (c *Calculator) consolidationLevels(info *patterns.ConsolidationInfo, current, volStop float64) *patterns.Levels {
	if info.BoxHigh <= 0 || info.BoxLow <= 0 {
		return c.defaultLevels(current)
	}
	entry := info.BoxHigh * 1.005
	stop := maxF(entry-volStop, info.BoxLow*0.98)
	if stop >= entry {
		stop = entry * 0.97
	}
	height := maxF(info.BoxHigh-info.BoxLow, entry*0.05)
	target1 := entry + height
	target2 := entry + height*1.618
	return c.standardLevels(entry, stop, target1, target2, "Box Height Projection")
}

func (c *Calculator) defaultLevels(current float64) *patterns.Levels {
	entry := current * 1.01
	stop := current * 0.95
	risk := entry - stop
	return c.standardLevels(entry, stop, entry+risk*2.0, entry+risk*3.0, "Traditional 2:1 & 3:1")
}

// enforceMinStop widens the stop to the pattern's minimum distance when the
// computed stop crowds or inverts the entry.
func (c *Calculator) enforceMinStop(p patterns.PatternType, entry, stop float64) float64 {
	minDist := entry * c.pcfg.MinStopDistance[p]
	if minDist <= 0 {
		minDist = entry * 0.03
	}
	if stop >= entry || entry-stop < minDist {
		return entry - minDist
	}
	return stop
}

// standardLevels finalizes the common two-target shape, enforcing minimum
// risk/reward by pushing targets out, with an emergency rebuild when the
// risk is non-positive.
func (c *Calculator) standardLevels(entry, stop, target1, target2 float64, method string) *patterns.Levels {
	risk := entry - stop
	if risk > 0 {
		if (target1-entry)/risk < c.cfg.MinRR1 {
			target1 = entry + risk*c.cfg.MinRR1
		}
		if (target2-entry)/risk < c.cfg.MinRR2 {
			target2 = entry + risk*c.cfg.MinRR2
		}
	} else {
		risk = entry * 0.05
		stop = entry - risk
		target1 = entry + risk*2.0
		target2 = entry + risk*3.0
	}

	lv := &patterns.Levels{
		Entry:              entry,
		Stop:               stop,
		Target1:            target1,
		Target2:            target2,
		RiskAmount:         risk,
		Reward1:            target1 - entry,
		Reward2:            target2 - entry,
		TargetMethod:       method,
		MeasuredMove:       true,
		VolatilityAdjusted: true,
	}
	if risk > 0 {
		lv.RR1 = lv.Reward1 / risk
		lv.RR2 = lv.Reward2 / risk
	}
	return lv
}

func orDefault(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
