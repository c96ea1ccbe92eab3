package patterns

import (
	"pattern-scanner/internal/indicators"
	"pattern-scanner/internal/market"
)

// detectBullFlag looks for a sharp flagpole advance followed by a shallow
// drifting flag that holds above the pole.
func detectBullFlag(s *market.Series, ind *indicators.Set, cfg Config) (float64, *BullFlagInfo) {
	bars := s.Bars
	if len(bars) < 30 {
		return 0, nil
	}

	flagpoleStart := min(25, len(bars)-10)
	const flagpoleEnd = 15

	startPrice := s.At(flagpoleStart).Close
	pole := market.TailSlice(bars, flagpoleStart, flagpoleEnd)
	peak := market.HighestHigh(pole)
	if startPrice <= 0 {
		return 0, nil
	}
	gain := (peak - startPrice) / startPrice
	bf := cfg.Flag
	if gain < bf.MinFlagpoleGain {
		return 0, nil
	}

	info := &BullFlagInfo{FlagpoleGain: gain}
	conf := 25.0

	flag := market.LastN(bars, 15)
	flagStart := s.At(flagpoleEnd).Close
	current := s.Last().Close

	pullback := (current - flagStart) / flagStart
	info.Pullback = pullback
	if pullback >= bf.PullbackMin && pullback <= bf.PullbackMax {
		conf += 20
		info.HealthyPullback = true
	}

	flagLow := market.LowestLow(flag)
	info.FlagLow = flagLow
	if current < flagLow*bf.FlagTolerance {
		broken := &BullFlagInfo{}
		broken.PatternBroken = true
		broken.BreakReason = "Below flag support"
		return 0, broken
	}
	if current < startPrice {
		broken := &BullFlagInfo{}
		broken.PatternBroken = true
		broken.BreakReason = "Below flagpole start"
		return 0, broken
	}

	flagHigh := market.HighestHigh(flag)
	info.FlagHigh = flagHigh
	daysOld := 11
	for i := 1; i <= 10 && i <= len(bars); i++ {
		if s.At(i).High == flagHigh {
			daysOld = i
			break
		}
	}
	if daysOld > cfg.MaxAge(BullFlag, s.Timeframe) {
		conf *= 0.5
		info.PatternStale = true
		info.BarsOld = daysOld
		return clamp(conf), info
	}
	info.BarsOld = daysOld

	if ind.MACDBullish() {
		conf += 15
		info.MACDBullish = true
	}
	if ind.MomentumImproving() {
		conf += 10
		info.MomentumImproving = true
	}

	volScore, vi := scoreVolume(bars, BullFlag, cfg)
	conf += volScore
	info.Volume = vi

	if current >= flagHigh*bf.FlagTolerance {
		conf += 10
		info.NearBreakout = true
	}

	conf = applyVolumeCap(conf, &vi, &info.CommonInfo, cfg)
	return clamp(conf), info
}
