package indicators

import (
	"math"
	"testing"

	"pattern-scanner/internal/market"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestSMA tests the simple moving average against hand-computed values
func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)

	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Error("positions before the first full window should be NaN")
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !almostEqual(got[i+2], w) {
			t.Errorf("SMA[%d] = %v, want %v", i+2, got[i+2], w)
		}
	}
}

// TestSMAShortInput tests that too-short input yields all NaN
func TestSMAShortInput(t *testing.T) {
	got := SMA([]float64{1, 2}, 5)
	for i, v := range got {
		if !math.IsNaN(v) {
			t.Errorf("SMA[%d] should be NaN for short input, got %v", i, v)
		}
	}
}

// TestEMA tests the seeded exponential moving average
func TestEMA(t *testing.T) {
	// period 3 → multiplier 0.5, seeded with the first value
	got := EMA([]float64{2, 4, 6}, 3)
	want := []float64{2, 3, 4.5}
	for i, w := range want {
		if !almostEqual(got[i], w) {
			t.Errorf("EMA[%d] = %v, want %v", i, got[i], w)
		}
	}
}

// TestRSIAllGains tests that a monotonically rising series pegs RSI at 100
func TestRSIAllGains(t *testing.T) {
	bars := make([]market.Bar, 20)
	for i := range bars {
		bars[i] = market.Bar{Close: float64(100 + i)}
	}
	rsi := RSI(bars, 14)

	if !math.IsNaN(rsi[13]) {
		t.Error("RSI before the first full period should be NaN")
	}
	if rsi[19] != 100 {
		t.Errorf("RSI of an all-gain series should be 100, got %v", rsi[19])
	}
}

// TestRSIBalanced tests equal gains and losses landing at 50
func TestRSIBalanced(t *testing.T) {
	bars := make([]market.Bar, 30)
	for i := range bars {
		if i%2 == 0 {
			bars[i] = market.Bar{Close: 100}
		} else {
			bars[i] = market.Bar{Close: 101}
		}
	}
	rsi := RSI(bars, 14)
	last := rsi[len(rsi)-1]
	if math.Abs(last-50) > 5 {
		t.Errorf("alternating series should have RSI near 50, got %v", last)
	}
}

// TestMACDFlatSeries tests that a constant series produces zero MACD
func TestMACDFlatSeries(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	macd, signal, hist := MACD(closes, 12, 26, 9)
	n := len(closes) - 1
	if !almostEqual(macd[n], 0) || !almostEqual(signal[n], 0) || !almostEqual(hist[n], 0) {
		t.Errorf("flat series should give zero MACD, got %v/%v/%v", macd[n], signal[n], hist[n])
	}
}

// TestMACDRisingSeries tests MACD sign on a steady uptrend
func TestMACDRisingSeries(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	macd, _, _ := MACD(closes, 12, 26, 9)
	if macd[len(macd)-1] <= 0 {
		t.Errorf("uptrend should give positive MACD, got %v", macd[len(macd)-1])
	}
}

// TestTrueRange tests gap handling in the true range
func TestTrueRange(t *testing.T) {
	bars := []market.Bar{
		{High: 105, Low: 95, Close: 100},
		{High: 106, Low: 102, Close: 104}, // plain range 4, vs prev close 6
	}
	tr := TrueRange(bars)
	if !almostEqual(tr[0], 10) {
		t.Errorf("first bar TR should be high-low=10, got %v", tr[0])
	}
	if !almostEqual(tr[1], 6) {
		t.Errorf("gapped bar TR should use |high-prevClose|=6, got %v", tr[1])
	}
}

// TestBollingerFlat tests band collapse on a constant series
func TestBollingerFlat(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 50
	}
	upper, lower, width := Bollinger(closes, 20, 2.0)
	n := len(closes) - 1
	if !almostEqual(upper[n], 50) || !almostEqual(lower[n], 50) {
		t.Errorf("flat series bands should hug the price, got %v/%v", upper[n], lower[n])
	}
	if !almostEqual(width[n], 0) {
		t.Errorf("flat series band width should be 0, got %v", width[n])
	}
}

// TestNarrowRange tests NR flagging of the tightest trailing bar
func TestNarrowRange(t *testing.T) {
	bars := []market.Bar{
		{High: 110, Low: 100, Close: 105},
		{High: 109, Low: 101, Close: 105},
		{High: 108, Low: 102, Close: 105},
		{High: 104, Low: 103, Close: 103.5}, // tightest of 4
	}
	nr4 := NarrowRange(bars, 4)
	if !nr4[3] {
		t.Error("tightest bar of the window should be NR4")
	}

	bars[3].High = 120
	bars[3].Low = 90
	nr4 = NarrowRange(bars, 4)
	if nr4[3] {
		t.Error("widest bar of the window should not be NR4")
	}
}

// TestPercentileRank tests rank extremes over a full window
func TestPercentileRank(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	rank := PercentileRank(values, 5)

	if !math.IsNaN(rank[0]) {
		t.Error("first point has no window peers and should be NaN")
	}
	if !almostEqual(rank[4], 100) {
		t.Errorf("maximum of the window should rank 100, got %v", rank[4])
	}

	values = []float64{5, 4, 3, 2, 1}
	rank = PercentileRank(values, 5)
	if !almostEqual(rank[4], 20) {
		t.Errorf("minimum of a 5-point window should rank 20, got %v", rank[4])
	}
}

// TestMACDBullish tests the bullish crossover accessor
func TestMACDBullish(t *testing.T) {
	s := &Set{MACD: []float64{0, 1}, Signal: []float64{0, 0.5}}
	if !s.MACDBullish() {
		t.Error("MACD above signal should be bullish")
	}
	s = &Set{MACD: []float64{0, 0.2}, Signal: []float64{0, 0.5}}
	if s.MACDBullish() {
		t.Error("MACD below signal should not be bullish")
	}
}

// TestMomentumImproving tests the histogram slope accessor
func TestMomentumImproving(t *testing.T) {
	s := &Set{Histogram: []float64{0.1, 0.2, 0.3}}
	if !s.MomentumImproving() {
		t.Error("rising histogram should report improving momentum")
	}
	s = &Set{Histogram: []float64{0.3, 0.2, 0.1}}
	if s.MomentumImproving() {
		t.Error("falling histogram should not report improving momentum")
	}
}

// TestComputeSet tests that the full set computes without panics and with
// aligned lengths
func TestComputeSet(t *testing.T) {
	bars := make([]market.Bar, 120)
	for i := range bars {
		price := 100 + float64(i%10)
		bars[i] = market.Bar{
			Open: price, High: price + 2, Low: price - 2, Close: price + 1,
			Volume: 1000 + float64(i),
		}
	}
	set := Compute(&market.Series{Symbol: "TEST", Bars: bars})

	n := len(bars)
	for name, got := range map[string]int{
		"RSI":            len(set.RSI),
		"MACD":           len(set.MACD),
		"ATR":            len(set.ATR),
		"BollingerWidth": len(set.BollingerWidth),
		"MAPinch":        len(set.MAPinch),
		"VolumeSMA50":    len(set.VolumeSMA50),
		"DollarVolume":   len(set.DollarVolume),
	} {
		if got != n {
			t.Errorf("%s length = %d, want %d", name, got, n)
		}
	}
	if math.IsNaN(set.MAPinch[n-1]) {
		t.Error("MAPinch should be defined with 120 bars of history")
	}
}

func BenchmarkComputeSet(b *testing.B) {
	bars := make([]market.Bar, 250)
	for i := range bars {
		price := 100 + float64(i%10)
		bars[i] = market.Bar{Open: price, High: price + 2, Low: price - 2, Close: price + 1, Volume: 1000}
	}
	s := &market.Series{Symbol: "BENCH", Bars: bars}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Compute(s)
	}
}
