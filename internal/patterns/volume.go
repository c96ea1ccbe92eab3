package patterns

import "pattern-scanner/internal/market"

// Volume status labels, from strongest to weakest tier.
const (
	VolumeExceptional = "Exceptional Volume"
	VolumeStrong      = "Strong Volume"
	VolumeGood        = "Good Volume"
	VolumeWeak        = "Weak Volume"
)

// capNote is the annotation recorded when the no-confirmation cap fires.
const capNote = "No volume confirmation"

// scoreVolume grades the current bar's volume against its 20-bar average
// and adds pattern-specific behavior bonuses. Returns the total score and
// the annotations to attach to the result.
func scoreVolume(bars []market.Bar, pattern PatternType, cfg Config) (float64, VolumeInfo) {
	vi := VolumeInfo{Status: VolumeWeak}
	if len(bars) == 0 {
		return 0, vi
	}

	avg := market.MeanVolume(market.LastN(bars, 20))
	if avg <= 0 {
		return 0, vi
	}
	mult := bars[len(bars)-1].Volume / avg
	vi.Multiplier = mult

	var score float64
	tiers := cfg.VolumeTiers
	switch {
	case mult >= tiers.ExceptionalMult:
		score = tiers.ExceptionalScore
		vi.Status = VolumeExceptional
	case mult >= tiers.StrongMult:
		score = tiers.StrongScore
		vi.Status = VolumeStrong
	case mult >= tiers.GoodMult:
		score = tiers.GoodScore
		vi.Status = VolumeGood
	}
	vi.Confirmed = score > 0

	bonus := cfg.VolumeBonus[pattern]
	switch pattern {
	case BullFlag:
		// The flagpole should carry more volume than the flag.
		flagpoleStart := min(25, len(bars)-10)
		if flagpoleStart > 15 {
			flagpoleVol := market.MeanVolume(market.TailSlice(bars, flagpoleStart, 15))
			flagVol := market.MeanVolume(market.LastN(bars, 15))
			if flagVol > 0 {
				switch ratio := flagpoleVol / flagVol; {
				case ratio > 1.2:
					score += bonus
					vi.FlagVolumeDecline = true
				case ratio > 1.1:
					score += bonus * 0.5
					vi.FlagVolumeDecline = true
				}
			}
		}

	case CupHandle:
		// Handle volume should dry up versus the cup body.
		handleDays := min(30, len(bars)/3)
		if handleDays > 5 && len(bars)-handleDays > 10 {
			handleVol := market.MeanVolume(market.LastN(bars, handleDays))
			cupVol := market.MeanVolume(bars[:len(bars)-handleDays])
			if cupVol > 0 {
				switch {
				case handleVol < cupVol*0.80:
					score += bonus
					vi.HandleVolumeDryUp = true
				case handleVol < cupVol*0.90:
					score += bonus * 0.75
					vi.HandleVolumeDryUp = true
				}
			}
		}

	case FlatTopBreakout:
		switch {
		case mult > 1.4:
			score += bonus
			vi.BreakoutSurge = true
		case mult > 1.2:
			score += bonus * 0.75
			vi.BreakoutSurge = true
		}

	case ConsolidationBreakout:
		// Compare the breakout bar against the consolidation body, not
		// the 20-bar average that already includes the surge.
		if len(bars) > 21 {
			body := bars[len(bars)-21 : len(bars)-1]
			consolAvg := market.MeanVolume(body)
			recentAvg := market.MeanVolume(market.LastN(body, 5))
			if consolAvg > 0 {
				if recentAvg/consolAvg < 0.8 {
					score += bonus * 0.5
					vi.ConsolidationVolume = true
				}
				switch ratio := bars[len(bars)-1].Volume / consolAvg; {
				case ratio >= 2.0:
					score += bonus
					vi.BreakoutExpansion = true
					// Extra credit scales with the surge, capped.
					extra := (ratio - 2.0) * 5
					if extra > 10 {
						extra = 10
					}
					score += extra
				case ratio >= 1.8:
					score += bonus
					vi.BreakoutExpansion = true
				case ratio >= 1.5:
					score += bonus * 0.8
					vi.BreakoutExpansion = true
				}
			}
		}

	case InsideBar:
		// Quiet consolidation is the healthy shape here.
		switch {
		case mult < 0.8:
			score += bonus
			vi.ConsolidationVolume = true
		case mult < 1.0:
			score += bonus * 2.0 / 3.0
			vi.ConsolidationVolume = true
		}
		if mult >= 1.5 {
			score += bonus
			vi.BreakoutExpansion = true
		}
	}

	// Recent trend versus the broader average.
	shortAvg := market.MeanVolume(market.LastN(bars, 5))
	if avg > 0 {
		switch trend := shortAvg / avg; {
		case trend > 1.1:
			score += 5
			vi.TrendIncreasing = true
		case trend < 0.9:
			score += 5
			vi.TrendDecreasing = true
		}
	}

	vi.Score = score
	return score, vi
}

// applyVolumeCap limits confidence when volume never confirmed the move.
// The annotation is recorded whenever confirmation is missing, even when
// the score already sits under the cap.
func applyVolumeCap(conf float64, vi *VolumeInfo, common *CommonInfo, cfg Config) float64 {
	if vi.Confirmed {
		return conf
	}
	common.ConfidenceCapped = capNote
	if conf > cfg.MaxConfidenceWithoutVolume {
		conf = cfg.MaxConfidenceWithoutVolume
	}
	return conf
}
