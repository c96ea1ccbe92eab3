package patterns

import (
	"math"

	"pattern-scanner/internal/indicators"
	"pattern-scanner/internal/market"
)

// shoulderCandidate is a local low that sits above the head.
type shoulderCandidate struct {
	idx   int
	price float64
}

// localLows finds bars whose low is the minimum of the surrounding five-bar
// window and above the head price. Indexes are relative to the window slice
// plus the given base offset.
func localLows(window []market.Bar, base int, headPrice float64) []shoulderCandidate {
	var out []shoulderCandidate
	for i := 2; i < len(window)-2; i++ {
		price := window[i].Low
		isMin := true
		for j := i - 2; j <= i+2; j++ {
			if window[j].Low < price {
				isMin = false
				break
			}
		}
		if isMin && price > headPrice {
			out = append(out, shoulderCandidate{idx: base + i, price: price})
		}
	}
	return out
}

func lowestCandidate(cands []shoulderCandidate) shoulderCandidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.price < best.price {
			best = c
		}
	}
	return best
}

// detectInverseHS finds a three-low base: a head at the global low flanked
// by two shallower shoulder lows, with a neckline across the rally highs.
func detectInverseHS(s *market.Series, ind *indicators.Set, cfg Config) (float64, *InverseHSInfo) {
	bars := s.Bars
	if len(bars) < 30 {
		return 0, nil
	}

	lookback := min(60, len(bars))
	recent := market.LastN(bars, lookback)
	if len(recent) < 20 {
		return 0, nil
	}

	headIdx := 0
	headPrice := recent[0].Low
	for i, b := range recent {
		if b.Low < headPrice {
			headPrice = b.Low
			headIdx = i
		}
	}
	// The head needs room on both sides for shoulders to form.
	if headIdx < 5 || headIdx > len(recent)-5 {
		return 0, nil
	}

	leftCands := localLows(recent[:headIdx], 0, headPrice)
	if len(leftCands) == 0 {
		return 0, nil
	}
	left := lowestCandidate(leftCands)

	rightCands := localLows(recent[headIdx:], headIdx, headPrice)
	if len(rightCands) == 0 {
		return 0, nil
	}
	right := lowestCandidate(rightCands)

	leftNeck := recent[left.idx:headIdx]
	rightNeck := recent[headIdx:right.idx]
	if len(leftNeck) < 2 || len(rightNeck) < 2 {
		return 0, nil
	}
	leftNeckPrice := market.HighestHigh(leftNeck)
	rightNeckPrice := market.HighestHigh(rightNeck)

	avgShoulder := (left.price + right.price) / 2
	headDepth := (avgShoulder - headPrice) / avgShoulder
	width := right.idx - left.idx
	hs := cfg.InverseHS
	if headDepth < hs.MinHeadDepth || width < hs.MinWidth || width > hs.MaxWidth {
		return 0, nil
	}

	info := &InverseHSInfo{
		HeadPrice:     headPrice,
		LeftShoulder:  left.price,
		RightShoulder: right.price,
		Neckline:      (leftNeckPrice + rightNeckPrice) / 2,
		HeadDepth:     headDepth,
		PatternWidth:  width,
	}
	conf := 50.0

	if headDepth >= 0.05 {
		conf += 15
		if headDepth >= 0.10 {
			conf += 10
		}
	}

	current := s.Last().Close
	distToNeckline := math.Abs(info.Neckline-current) / current
	switch {
	case distToNeckline < 0.05:
		conf += 15
		info.NearBreakout = true
	case distToNeckline < 0.10:
		conf += 10
		info.Approaching = true
	}

	if ind.MACDBullish() {
		conf += 10
		info.MACDBullish = true
	}
	if ind.MomentumImproving() {
		conf += 10
		info.MomentumImproving = true
	}

	volScore, vi := scoreVolume(bars, InverseHeadShoulders, cfg)
	conf += volScore
	info.Volume = vi
	conf = applyVolumeCap(conf, &vi, &info.CommonInfo, cfg)

	barsSince := len(recent) - right.idx
	if barsSince > cfg.MaxAge(InverseHeadShoulders, s.Timeframe) {
		conf *= 0.8
		info.PatternAging = true
		info.AgeBars = barsSince
	}

	if current < headPrice*0.97 {
		conf *= 0.6
		info.BelowHead = true
	}

	return clamp(conf), info
}
