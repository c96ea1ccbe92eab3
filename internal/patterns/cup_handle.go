package patterns

import (
	"pattern-scanner/internal/indicators"
	"pattern-scanner/internal/market"
)

// detectCupHandle looks for a rounded base with a shallow handle pulling
// back from the right rim.
func detectCupHandle(s *market.Series, ind *indicators.Set, cfg Config) (float64, *CupHandleInfo) {
	bars := s.Bars
	if len(bars) < 30 {
		return 0, nil
	}

	maxLookback := min(100, len(bars)-3)
	handleDays := min(30, maxLookback/3)

	var cup, handle []market.Bar
	if handleDays > 0 {
		cup = market.TailSlice(bars, maxLookback, handleDays)
		handle = market.LastN(bars, handleDays)
	} else {
		cup = market.LastN(bars, maxLookback)
		handle = market.LastN(bars, 5)
	}
	if len(cup) < 15 {
		return 0, nil
	}

	cupStart := cup[0].Close
	cupBottom := market.LowestLow(cup)
	cupRight := cup[len(cup)-1].Close
	rim := cupStart
	if cupRight > rim {
		rim = cupRight
	}
	if rim <= 0 {
		return 0, nil
	}
	ch := cfg.Cup
	cupDepth := (rim - cupBottom) / rim
	if cupDepth < ch.MinCupDepth || cupDepth > ch.MaxCupDepth {
		return 0, nil
	}
	// The right side must have recovered most of the left rim.
	if cupRight < cupStart*ch.MinRimRecovery {
		return 0, nil
	}

	info := &CupHandleInfo{CupDepth: cupDepth, RimLevel: rim, HandleDays: handleDays}
	conf := 25.0
	current := s.Last().Close

	if handleDays > 0 {
		handleLow := market.LowestLow(handle)
		info.HandleLow = handleLow
		handleDepth := (cupRight - handleLow) / cupRight
		info.HandleDepth = handleDepth
		switch {
		case handleDepth > ch.MaxHandleDepth:
			conf += 10
			info.HandleRating = "deep"
		case handleDepth <= 0.08:
			conf += 20
			info.HandleRating = "perfect"
		case handleDepth <= 0.15:
			conf += 15
			info.HandleRating = "good"
		default:
			conf += 10
			info.HandleRating = "acceptable"
		}

		switch {
		case handleDays > 25:
			conf *= 0.8
		case handleDays <= 10:
			conf += 10
		case handleDays <= 20:
			conf += 5
		}
	} else {
		conf += 10
		info.HandleRating = "forming"
	}

	if current < rim*0.70 {
		conf *= 0.7
	} else {
		conf += 5
		info.NearRim = true
	}

	if handleDays > 0 && current < info.HandleLow*0.90 {
		conf *= 0.8
	}

	if ind.MACDBullish() {
		conf += 10
		info.MACDBullish = true
	}

	volScore, vi := scoreVolume(bars, CupHandle, cfg)
	conf += volScore
	info.Volume = vi

	// Weak bases are reported uncapped so callers can see the raw score.
	if conf < 35 {
		return clamp(conf), info
	}

	conf = applyVolumeCap(conf, &vi, &info.CommonInfo, cfg)
	return clamp(conf), info
}
