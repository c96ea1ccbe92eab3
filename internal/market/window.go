package market

// Windowing helpers. All offsets count back from the end of the series so
// detector code reads the same way the patterns are described: "the last 15
// bars", "bars 25 through 15 back". Offsets are validated here once instead
// of in every detector.

// LastN returns the trailing n bars, or all bars when fewer exist.
func LastN(bars []Bar, n int) []Bar {
	if n <= 0 {
		return nil
	}
	if n > len(bars) {
		n = len(bars)
	}
	return bars[len(bars)-n:]
}

// TailSlice returns bars from `from` back to `to` back, exclusive of `to`
// (the equivalent of slicing [-from:-to]). Returns nil when the window is
// empty or extends past the start of the series.
func TailSlice(bars []Bar, from, to int) []Bar {
	if from <= to || from > len(bars) || to < 0 {
		return nil
	}
	return bars[len(bars)-from : len(bars)-to]
}

// HighestHigh returns the maximum high across the bars, or 0 for an empty
// window.
func HighestHigh(bars []Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	max := bars[0].High
	for _, b := range bars[1:] {
		if b.High > max {
			max = b.High
		}
	}
	return max
}

// LowestLow returns the minimum low across the bars, or 0 for an empty
// window.
func LowestLow(bars []Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	min := bars[0].Low
	for _, b := range bars[1:] {
		if b.Low < min {
			min = b.Low
		}
	}
	return min
}

// MeanVolume returns the average volume across the bars.
func MeanVolume(bars []Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Volume
	}
	return sum / float64(len(bars))
}

// MeanRange returns the average high-low range across the bars.
func MeanRange(bars []Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Range()
	}
	return sum / float64(len(bars))
}
