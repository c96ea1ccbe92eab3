// Package indicators provides pure, stateless technical indicator
// computations over a bar series. Every function returns a slice parallel to
// the input bars; positions without enough history hold NaN, which detectors
// treat as "criterion not met".
package indicators

import (
	"math"

	"pattern-scanner/internal/market"
)

// Default periods shared across the engine.
const (
	RSIPeriod       = 14
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignal      = 9
	SMAPeriod       = 20
	ATRPeriod       = 14
	BollingerSpan   = 20
	BollingerStdDev = 2.0
	VolumeSMAShort  = 20
	VolumeSMALong   = 50
)

// SMA computes the simple moving average of the values over the period.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average with multiplier 2/(period+1),
// seeded with the first value.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) == 0 {
		return out
	}
	mult := 2.0 / float64(period+1)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = values[i]*mult + ema*(1-mult)
		out[i] = ema
	}
	return out
}

// RSI computes the Relative Strength Index from rolling average gains and
// losses. The first `period` positions are NaN.
func RSI(bars []market.Bar, period int) []float64 {
	out := nanSlice(len(bars))
	if len(bars) < period+1 {
		return out
	}
	gains := make([]float64, len(bars))
	losses := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}
	for i := period; i < len(bars); i++ {
		var gainSum, lossSum float64
		for j := i - period + 1; j <= i; j++ {
			gainSum += gains[j]
			lossSum += losses[j]
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACD computes the MACD line (fast EMA - slow EMA), its signal EMA, and the
// histogram (macd - signal) as full series.
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine, histogram []float64) {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine = EMA(macd, signal)
	histogram = make([]float64, len(closes))
	for i := range closes {
		histogram[i] = macd[i] - signalLine[i]
	}
	return macd, signalLine, histogram
}

// TrueRange computes max(high-low, |high-prevClose|, |low-prevClose|) per
// bar. The first bar uses its plain high-low range.
func TrueRange(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			out[i] = b.High - b.Low
			continue
		}
		prevClose := bars[i-1].Close
		tr := b.High - b.Low
		if hc := math.Abs(b.High - prevClose); hc > tr {
			tr = hc
		}
		if lc := math.Abs(b.Low - prevClose); lc > tr {
			tr = lc
		}
		out[i] = tr
	}
	return out
}

// ATR computes the rolling mean of True Range over the period.
func ATR(bars []market.Bar, period int) []float64 {
	return SMA(TrueRange(bars), period)
}

// ATRPercent normalizes ATR by the close price, as a percentage.
func ATRPercent(bars []market.Bar, period int) []float64 {
	atr := ATR(bars, period)
	out := nanSlice(len(bars))
	for i, b := range bars {
		if !math.IsNaN(atr[i]) && b.Close != 0 {
			out[i] = atr[i] / b.Close * 100
		}
	}
	return out
}

// Bollinger computes the upper band, lower band, and normalized width
// (upper-lower)/middle over a rolling window.
func Bollinger(closes []float64, period int, stddev float64) (upper, lower, width []float64) {
	upper = nanSlice(len(closes))
	lower = nanSlice(len(closes))
	width = nanSlice(len(closes))
	mid := SMA(closes, period)
	for i := period - 1; i < len(closes); i++ {
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mid[i]
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = mid[i] + stddev*sd
		lower[i] = mid[i] - stddev*sd
		if mid[i] != 0 {
			width[i] = (upper[i] - lower[i]) / mid[i]
		}
	}
	return upper, lower, width
}

// MAPinch measures moving-average convergence: the spread between the
// highest and lowest of EMA10/20/50 divided by the close. Near-zero values
// mean the averages are bunched together.
func MAPinch(bars []market.Bar) []float64 {
	closes := closesOf(bars)
	ema10 := EMA(closes, 10)
	ema20 := EMA(closes, 20)
	ema50 := EMA(closes, 50)
	out := nanSlice(len(bars))
	for i := range bars {
		if i < 50-1 || bars[i].Close == 0 {
			continue
		}
		hi := math.Max(ema10[i], math.Max(ema20[i], ema50[i]))
		lo := math.Min(ema10[i], math.Min(ema20[i], ema50[i]))
		out[i] = (hi - lo) / bars[i].Close
	}
	return out
}

// NarrowRange flags bars whose True Range is the minimum over the trailing
// n bars (NR4 when n=4, NR7 when n=7).
func NarrowRange(bars []market.Bar, n int) []bool {
	tr := TrueRange(bars)
	out := make([]bool, len(bars))
	for i := n - 1; i < len(bars); i++ {
		isMin := true
		for j := i - n + 1; j < i; j++ {
			if tr[j] < tr[i] {
				isMin = false
				break
			}
		}
		out[i] = isMin
	}
	return out
}

// PercentileRank computes, for each point, the fraction of the trailing
// `window` values (inclusive of the point) that are <= the current value,
// times 100. Requires at least 2 points in the window, else NaN.
func PercentileRank(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		n := i - start + 1
		if n < 2 || math.IsNaN(values[i]) {
			continue
		}
		count := 0
		valid := 0
		for j := start; j <= i; j++ {
			if math.IsNaN(values[j]) {
				continue
			}
			valid++
			if values[j] <= values[i] {
				count++
			}
		}
		if valid < 2 {
			continue
		}
		out[i] = float64(count) / float64(valid) * 100
	}
	return out
}

// DollarVolume multiplies close by volume per bar.
func DollarVolume(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close * b.Volume
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func closesOf(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
