package patterns

import (
	"math"

	"pattern-scanner/internal/indicators"
	"pattern-scanner/internal/market"
)

// Quietness criteria names recorded on the result.
const (
	critLowATR      = "low_atr_percentile"
	critTightBB     = "tight_bollinger_width"
	critNarrowRange = "narrow_range_cluster"
	critTightBox    = "tight_box"
	critMAPinch     = "ma_pinch"
	critVolumeDryUp = "volume_dry_up"
)

// detectConsolidation looks for a quiet trailing box (excluding the current
// bar, which may be the breakout) and grades any breakout from it.
func detectConsolidation(s *market.Series, ind *indicators.Set, cfg Config) (float64, *ConsolidationInfo) {
	bars := s.Bars
	if len(bars) < 30 {
		return 0, nil
	}
	cc := cfg.Consolidation

	window := cc.BoxWindowDaily
	if s.Timeframe == market.Weekly {
		window = cc.BoxWindowWeekly
	}
	if len(bars) < window+1 {
		return 0, nil
	}

	// The box ends at the bar before the current one so a breakout bar
	// cannot stretch its own box.
	box := bars[len(bars)-1-window : len(bars)-1]
	boxEnd := len(bars) - 2

	boxHigh := market.HighestHigh(box)
	boxLow := market.LowestLow(box)
	mid := (boxHigh + boxLow) / 2
	if mid <= 0 {
		return 0, nil
	}
	boxWidth := (boxHigh - boxLow) / mid

	info := &ConsolidationInfo{
		BoxHigh:     boxHigh,
		BoxLow:      boxLow,
		BoxMidpoint: mid,
		BoxWidth:    boxWidth,
		BoxBars:     window,
		Criteria:    []string{},
	}

	// Quietness criteria, each independent.
	atrRank := indicators.PercentileRank(ind.ATRPercent, cc.PercentileWindow)
	if !math.IsNaN(atrRank[boxEnd]) && atrRank[boxEnd] <= cc.ATRPercentile {
		info.Criteria = append(info.Criteria, critLowATR)
	}
	bbRank := indicators.PercentileRank(ind.BollingerWidth, cc.PercentileWindow)
	if !math.IsNaN(bbRank[boxEnd]) && bbRank[boxEnd] <= cc.BBWidthPercentile {
		info.Criteria = append(info.Criteria, critTightBB)
	}

	nrCount := 0
	for i := boxEnd - 4; i <= boxEnd; i++ {
		if i >= 0 && (ind.NR4[i] || ind.NR7[i]) {
			nrCount++
		}
	}
	if nrCount >= 2 {
		info.Criteria = append(info.Criteria, critNarrowRange)
	}

	if boxWidth <= cc.TightBoxWidth {
		info.Criteria = append(info.Criteria, critTightBox)
	}

	if !math.IsNaN(ind.MAPinch[boxEnd]) && ind.MAPinch[boxEnd] <= cc.MAPinchThreshold {
		info.Criteria = append(info.Criteria, critMAPinch)
	}

	if !math.IsNaN(ind.VolumeSMA50[boxEnd]) && ind.VolumeSMA50[boxEnd] > 0 {
		recentVol := market.MeanVolume(market.LastN(box, 5))
		if recentVol/ind.VolumeSMA50[boxEnd] < cc.VolumeDryUpRatio {
			info.Criteria = append(info.Criteria, critVolumeDryUp)
		}
	}

	// No quietness at all means no consolidation to break out of.
	if len(info.Criteria) == 0 {
		return 0, info
	}

	conf := cc.BaseConfidence + float64(len(info.Criteria))*cc.CriterionBonus

	// Breakout evaluation on the current bar. Range expansion compares
	// against the previous bar's 20-average so the breakout bar does not
	// dilute its own baseline.
	cur := s.Last()
	curIdx := len(bars) - 1
	priceBreak := cur.Close > boxHigh

	rangeExpansion := false
	if prevATR := ind.ATR[curIdx-1]; !math.IsNaN(prevATR) && prevATR > 0 {
		rangeExpansion = ind.TrueRange[curIdx] >= prevATR*cc.RangeExpansionMult
	}

	volumeExpansion := false
	if v50 := ind.VolumeSMA50[curIdx]; !math.IsNaN(v50) && v50 > 0 {
		volumeExpansion = cur.Volume >= v50*cc.BreakoutVolumeMult
	}

	if priceBreak {
		info.BreakoutConfirmed = true
		switch {
		case rangeExpansion && volumeExpansion:
			conf += cc.BreakoutBonus
			info.BreakoutQuality = "full confirmation"
		case rangeExpansion || volumeExpansion:
			conf += cc.BreakoutBonus * 0.7
			info.BreakoutQuality = "partial"
		default:
			conf += cc.BreakoutBonus * 0.4
			info.BreakoutQuality = "price only"
		}

		// Count closes already above the box; a breakout chased late
		// is worth much less.
		age := 0
		for i := curIdx - 1; i >= 0 && bars[i].Close > boxHigh; i-- {
			age++
		}
		info.BreakoutAge = age
		if age > cc.MaxBreakoutAge {
			conf *= 0.5
			info.PatternStale = true
			info.BarsOld = age
		}
	} else {
		// Not broken out yet: reward coiling near the box high.
		if cur.Close >= boxHigh*0.995 || cur.Close > mid {
			conf += cc.ProximityBonus
			info.NearBoxHigh = true
		}
		// A box whose high has not been touched in a while is drifting.
		lastTouch := window + 1
		for i := 1; i <= window; i++ {
			if s.At(i).High >= boxHigh*0.995 {
				lastTouch = i
				break
			}
		}
		if lastTouch > window/2 {
			conf *= 0.9
			info.PatternAging = true
			info.AgeBars = lastTouch
		}
	}

	avgDollar := 0.0
	for i := curIdx - min(20, curIdx); i <= curIdx; i++ {
		avgDollar += ind.DollarVolume[i]
	}
	avgDollar /= float64(min(20, curIdx) + 1)
	if avgDollar < cc.MinDollarVolume {
		conf *= 0.9
		info.LowLiquidity = true
	}

	if boxWidth > cc.MaxBoxWidth {
		conf *= 0.85
	}

	if ind.MACDBullish() {
		conf += 10
		info.MACDBullish = true
	}
	if ind.MomentumImproving() {
		conf += 10
		info.MomentumImproving = true
	}

	volScore, vi := scoreVolume(bars, ConsolidationBreakout, cfg)
	conf += volScore
	info.Volume = vi
	conf = applyVolumeCap(conf, &vi, &info.CommonInfo, cfg)

	return clamp(conf), info
}
