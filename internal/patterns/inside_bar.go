package patterns

import (
	"pattern-scanner/internal/indicators"
	"pattern-scanner/internal/market"
)

// isInside reports whether bar is strictly contained within mother's range.
func isInside(bar, mother market.Bar) bool {
	return bar.High < mother.High && bar.Low > mother.Low
}

// detectInsideBar finds the most recent inside bar formation within the
// lookback window. Multi-bar chains count as double inside bars, with the
// mother bar sitting at the far end of the chain.
func detectInsideBar(s *market.Series, ind *indicators.Set, cfg Config) (float64, *InsideBarInfo) {
	if s.Len() < 5 {
		return 0, nil
	}

	ib := cfg.InsideBars
	lookback, agingOffset, base := 4, 6, 30.0
	tight, good, moderate := ib.TightDaily, ib.GoodDaily, ib.ModerateDaily
	agingFactor := 0.8
	if s.Timeframe == market.Weekly {
		lookback, agingOffset, base = 6, 8, 35.0
		tight, good, moderate = ib.TightWeekly, ib.GoodWeekly, ib.ModerateWeekly
		agingFactor = 0.7
	}

	// Most recent qualifying pair wins; older formations in the window
	// are still found but pay the aging penalty below. A green mother and
	// a red inside bar are required, not merely preferred.
	insideOffset := 0
	for o := 1; o <= lookback && o+1 <= s.Len(); o++ {
		if isInside(s.At(o), s.At(o+1)) && s.At(o+1).IsGreen() && s.At(o).IsRed() {
			insideOffset = o
			break
		}
	}
	if insideOffset == 0 {
		return 0, nil
	}

	// Chain length: consecutive contained bars share one mother, capped
	// so stale multi-bar nests do not keep extending the formation.
	count := 1
	for count < ib.MaxInsideBars && insideOffset+count+1 <= s.Len() && isInside(s.At(insideOffset+count), s.At(insideOffset+count+1)) {
		count++
	}
	motherOffset := insideOffset + count
	inside := s.At(insideOffset)
	mother := s.At(motherOffset)

	info := &InsideBarInfo{
		MotherHigh:      mother.High,
		MotherLow:       mother.Low,
		InsideHigh:      inside.High,
		InsideLow:       inside.Low,
		InsideBarCount:  count,
		MotherBarOffset: motherOffset,
	}

	// The scan already required the color combination.
	conf := base + 15
	info.ProperColors = true

	if count == 1 {
		conf += 15
	} else {
		conf += 10
	}

	motherRange := mother.Range()
	if motherRange > 0 {
		ratio := inside.Range() / motherRange
		info.SizeRatio = ratio
		switch {
		case ratio < tight:
			conf += 20
		case ratio < good:
			conf += 15
		case ratio < moderate:
			conf += 10
		default:
			conf += 5
		}
	}

	if ind.MACDBullish() {
		conf += 15
		info.MACDBullish = true
	}
	if ind.MomentumImproving() {
		conf += 10
		info.MomentumImproving = true
	}

	if s.Last().Close >= inside.Low*0.98 {
		conf += 10
		info.HoldingSupport = true
	}

	volScore, vi := scoreVolume(s.Bars, InsideBar, cfg)
	conf += volScore
	info.Volume = vi
	conf = applyVolumeCap(conf, &vi, &info.CommonInfo, cfg)

	if motherOffset >= agingOffset {
		conf *= agingFactor
		info.PatternAging = true
		info.AgeBars = motherOffset
	}

	return clamp(conf), info
}
