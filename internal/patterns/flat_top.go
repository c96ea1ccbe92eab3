package patterns

import (
	"pattern-scanner/internal/indicators"
	"pattern-scanner/internal/market"
)

// rolling3Max returns the centered 3-bar rolling maximum of highs, dropping
// the edge positions that lack a full window.
func rolling3Max(bars []market.Bar) []float64 {
	if len(bars) < 3 {
		return nil
	}
	out := make([]float64, 0, len(bars)-2)
	for i := 1; i < len(bars)-1; i++ {
		m := bars[i-1].High
		if bars[i].High > m {
			m = bars[i].High
		}
		if bars[i+1].High > m {
			m = bars[i+1].High
		}
		out = append(out, m)
	}
	return out
}

// rolling3Min is the centered 3-bar rolling minimum of lows.
func rolling3Min(bars []market.Bar) []float64 {
	if len(bars) < 3 {
		return nil
	}
	out := make([]float64, 0, len(bars)-2)
	for i := 1; i < len(bars)-1; i++ {
		m := bars[i-1].Low
		if bars[i].Low < m {
			m = bars[i].Low
		}
		if bars[i+1].Low < m {
			m = bars[i+1].Low
		}
		out = append(out, m)
	}
	return out
}

// detectFlatTop looks for an ascent into a horizontal resistance shelf with
// a contracting pullback underneath it.
func detectFlatTop(s *market.Series, ind *indicators.Set, cfg Config) (float64, *FlatTopInfo) {
	bars := s.Bars
	if len(bars) < 50 {
		return 0, nil
	}

	ascentStart := min(45, len(bars)-15)
	const ascentEnd = 25

	startPrice := s.At(ascentStart).Close
	ascent := market.TailSlice(bars, ascentStart, ascentEnd)
	peak := market.HighestHigh(ascent)
	if startPrice <= 0 {
		return 0, nil
	}
	gain := (peak - startPrice) / startPrice
	ft := cfg.FlatTop
	if gain < ft.MinAscentGain {
		return 0, nil
	}

	info := &FlatTopInfo{Resistance: peak, AscentGain: gain}
	conf := 25.0

	descent := market.TailSlice(bars, ascentEnd, 10)
	descentLow := market.LowestLow(descent)
	pullback := (peak - descentLow) / peak
	info.Pullback = pullback
	if pullback < ft.MinPullback {
		return clamp(conf), info
	}

	if highs := rolling3Max(descent); len(highs) >= 2 {
		if highs[len(highs)-1] < highs[0]*ft.DescentTolerance {
			conf += 20
			info.DescendingHighs = true
		}
	}

	if lows := rolling3Min(market.LastN(bars, 15)); len(lows) >= 3 {
		if lows[len(lows)-1] > lows[0]*1.01 {
			conf += 25
			info.HigherLows = true
		}
	}

	touches := 0
	for _, b := range market.LastN(bars, 20) {
		if b.High >= peak*ft.ResistanceTolerance {
			touches++
		}
	}
	if touches >= 2 {
		conf += 15
		info.ResistanceHits = touches
	}

	info.SupportLow = descentLow
	current := s.Last().Close

	daysOld := 11
	for i := 1; i <= 10 && i <= len(bars); i++ {
		if s.At(i).High >= peak*ft.ResistanceTolerance {
			daysOld = i
			break
		}
	}
	if daysOld > cfg.MaxAge(FlatTopBreakout, s.Timeframe) {
		conf *= 0.5
		info.PatternStale = true
		info.BarsOld = daysOld
		return clamp(conf), info
	}

	if current < descentLow*0.95 {
		broken := &FlatTopInfo{}
		broken.PatternBroken = true
		broken.BreakReason = "Below support"
		return 0, broken
	}

	if ind.MACDBullish() {
		conf += 10
		info.MACDBullish = true
	}

	volScore, vi := scoreVolume(bars, FlatTopBreakout, cfg)
	conf += volScore
	info.Volume = vi
	conf = applyVolumeCap(conf, &vi, &info.CommonInfo, cfg)

	return clamp(conf), info
}
