package patterns

import (
	"testing"

	"pattern-scanner/internal/indicators"
	"pattern-scanner/internal/market"
)

// TestEngineDetect tests threshold application and MACD attachment
func TestEngineDetect(t *testing.T) {
	bars := volBars(30, 1000)
	bars[28] = market.Bar{Open: 98, High: 110, Low: 90, Close: 108, Volume: 1000}
	bars[29] = market.Bar{Open: 106, High: 107, Low: 100, Close: 101, Volume: 700}
	s := testSeries(bars)

	engine := NewEngine(DefaultConfig())
	res := engine.Detect(s, InsideBar)

	if !res.Detected {
		t.Error("a capped score of 70 clears the default threshold of 55")
	}
	if res.Confidence != 70 {
		t.Errorf("confidence = %v, want 70", res.Confidence)
	}
	if res.Pattern != InsideBar || res.Symbol != "TEST" {
		t.Errorf("result identity = %v/%v, want TEST/%v", res.Symbol, res.Pattern, InsideBar)
	}
	if res.Info == nil {
		t.Fatal("detected results should carry detector info")
	}

	ind := indicators.Compute(s)
	common := res.Info.Common()
	if common.MACD != ind.MACD[len(ind.MACD)-1] {
		t.Errorf("attached MACD = %v, want the latest series value %v", common.MACD, ind.MACD[len(ind.MACD)-1])
	}

	// The full series ride along for charting clients.
	if len(res.MACDSeries) != s.Len() || len(res.SignalSeries) != s.Len() || len(res.HistogramSeries) != s.Len() {
		t.Fatalf("indicator series lengths = %d/%d/%d, want %d each",
			len(res.MACDSeries), len(res.SignalSeries), len(res.HistogramSeries), s.Len())
	}
	if res.MACDSeries[s.Len()-1] != common.MACD {
		t.Errorf("series tail = %v, want the attached scalar %v", res.MACDSeries[s.Len()-1], common.MACD)
	}
	if res.HistogramSeries[s.Len()-1] != common.Histogram {
		t.Errorf("histogram tail = %v, want the attached scalar %v", res.HistogramSeries[s.Len()-1], common.Histogram)
	}
}

// TestEngineThresholds tests that the aggressive configuration admits
// setups the standard one rejects
func TestEngineThresholds(t *testing.T) {
	// An aged double inside bar followed by a breakdown: proper colors
	// and a moderate ratio sum to 65, bearish momentum and lost support
	// add nothing, and the aging discount lands the score at 52.
	bars := volBars(30, 1000)
	bars[24] = market.Bar{Open: 90, High: 110, Low: 88, Close: 108, Volume: 1000}
	bars[25] = market.Bar{Open: 95, High: 107, Low: 92, Close: 105, Volume: 1000}
	bars[26] = market.Bar{Open: 103, High: 106, Low: 93, Close: 97, Volume: 1000}
	bars[27] = market.Bar{Open: 94, High: 94.5, Low: 84, Close: 85, Volume: 1000}
	bars[28] = market.Bar{Open: 84, High: 84.5, Low: 79, Close: 80, Volume: 1000}
	bars[29] = market.Bar{Open: 79, High: 79.5, Low: 75, Close: 76, Volume: 1000}
	s := testSeries(bars)

	standard := NewEngine(DefaultConfig()).Detect(s, InsideBar)
	aggressive := NewEngine(AggressiveConfig()).Detect(s, InsideBar)

	if standard.Confidence != aggressive.Confidence {
		t.Errorf("threshold should not change scoring: %v vs %v",
			standard.Confidence, aggressive.Confidence)
	}
	if standard.Confidence < 45 || standard.Confidence >= 55 {
		t.Fatalf("fixture confidence = %v, want within [45, 55) to split the thresholds", standard.Confidence)
	}
	if standard.Detected {
		t.Error("the standard threshold should reject this setup")
	}
	if !aggressive.Detected {
		t.Error("the aggressive threshold should admit this setup")
	}
}

// TestEngineBoosts tests the bull flag and cup handle multipliers
func TestEngineBoosts(t *testing.T) {
	bars := bullFlagBars(func(i int) float64 { return 119 })
	s := testSeries(bars)
	ind := indicators.Compute(s)
	cfg := DefaultConfig()

	raw, _ := detectBullFlag(s, ind, cfg)
	res := NewEngine(cfg).Detect(s, BullFlag)
	if want := clamp(raw * cfg.BullFlagBoost); res.Confidence != want {
		t.Errorf("bull flag confidence = %v, want boosted %v", res.Confidence, want)
	}
}

// TestEngineDetectAllInvalid tests that an unusable series yields a full
// set of undetected zero results
func TestEngineDetectAllInvalid(t *testing.T) {
	s := testSeries(volBars(5, 1000))
	results := NewEngine(DefaultConfig()).DetectAll(s)

	if len(results) != len(AllPatterns) {
		t.Fatalf("results = %d, want one per pattern (%d)", len(results), len(AllPatterns))
	}
	for _, res := range results {
		if res.Detected || res.Confidence != 0 || res.Info != nil {
			t.Errorf("%v: invalid input should yield an empty undetected result", res.Pattern)
		}
	}
}

// BenchmarkDetectAll measures a full six-detector pass over 120 bars
func BenchmarkDetectAll(b *testing.B) {
	s := testSeries(quietBoxBars())
	engine := NewEngine(DefaultConfig())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.DetectAll(s)
	}
}

// TestEngineDeterminism tests that repeated runs score identically
func TestEngineDeterminism(t *testing.T) {
	s := testSeries(quietBoxBars())
	engine := NewEngine(DefaultConfig())

	first := engine.DetectAll(s)
	second := engine.DetectAll(s)
	for i := range first {
		if first[i].Confidence != second[i].Confidence || first[i].Detected != second[i].Detected {
			t.Errorf("%v: scoring drifted between runs: %v vs %v",
				first[i].Pattern, first[i].Confidence, second[i].Confidence)
		}
	}
}
