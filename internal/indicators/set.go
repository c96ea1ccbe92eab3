package indicators

import "pattern-scanner/internal/market"

// Set bundles every indicator series the detectors share, computed once per
// scanned symbol so six detectors never recompute the same MACD.
type Set struct {
	Closes  []float64
	Volumes []float64

	RSI        []float64
	MACD       []float64
	Signal     []float64
	Histogram  []float64
	TrueRange  []float64
	ATR        []float64
	ATRPercent []float64

	BollingerUpper []float64
	BollingerLower []float64
	BollingerWidth []float64

	MAPinch []float64
	NR4     []bool
	NR7     []bool

	VolumeSMA20  []float64
	VolumeSMA50  []float64
	DollarVolume []float64
}

// Compute evaluates the full indicator set for the series. Positions without
// enough history hold NaN.
func Compute(s *market.Series) *Set {
	bars := s.Bars
	closes := closesOf(bars)
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		volumes[i] = b.Volume
	}

	set := &Set{Closes: closes, Volumes: volumes}
	set.RSI = RSI(bars, RSIPeriod)
	set.MACD, set.Signal, set.Histogram = MACD(closes, MACDFast, MACDSlow, MACDSignal)
	set.TrueRange = TrueRange(bars)
	set.ATR = ATR(bars, ATRPeriod)
	set.ATRPercent = ATRPercent(bars, ATRPeriod)
	set.BollingerUpper, set.BollingerLower, set.BollingerWidth = Bollinger(closes, BollingerSpan, BollingerStdDev)
	set.MAPinch = MAPinch(bars)
	set.NR4 = NarrowRange(bars, 4)
	set.NR7 = NarrowRange(bars, 7)
	set.VolumeSMA20 = SMA(volumes, VolumeSMAShort)
	set.VolumeSMA50 = SMA(volumes, VolumeSMALong)
	set.DollarVolume = DollarVolume(bars)
	return set
}

// MACDBullish reports whether the latest MACD value is above its signal line.
func (s *Set) MACDBullish() bool {
	n := len(s.MACD)
	if n == 0 {
		return false
	}
	return s.MACD[n-1] > s.Signal[n-1]
}

// MomentumImproving reports whether the histogram has risen versus three
// bars ago.
func (s *Set) MomentumImproving() bool {
	n := len(s.Histogram)
	if n < 3 {
		return false
	}
	return s.Histogram[n-1] > s.Histogram[n-3]
}
