package patterns

import (
	"math"
	"testing"

	"pattern-scanner/internal/indicators"
	"pattern-scanner/internal/market"
)

// barsFromCloses wraps close prices in bars with a one-point wick each way.
func barsFromCloses(closes []float64, vol float64) []market.Bar {
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{Open: c + 0.2, High: c + 1, Low: c - 1, Close: c, Volume: vol}
	}
	return bars
}

// TestInverseHSDetection tests a symmetric three-low base approaching its
// neckline
func TestInverseHSDetection(t *testing.T) {
	closes := []float64{
		100, 100, 100, 100, 100, 100, 100, 100, 100, 100, // 0-9
		99, 97, 95, 97, 99, // 10-14 left shoulder, low 94 at 12
		100, 101, 102, 103, 104, 105, 105, 104, 103, 102, // 15-24 rally, high 106
		101, 98, 95, 92, 90, // 25-29
		89,                 // 30 head, low 88
		90, 92, 95, 98, 101, // 31-35
		102, 103, 104, 105, 105, 104, 103, 102, 101, // 36-44 rally, high 106
		98, 96, 95, 97, 99, // 45-49 right shoulder, low 94 at 47
		101, 102, 103, 104, 105, 105, 105, 105, 105, 105, // 50-59 approach
	}
	s := testSeries(barsFromCloses(closes, 1000))
	conf, info := detectInverseHS(s, indicators.Compute(s), DefaultConfig())

	if info == nil {
		t.Fatal("expected an inverse head and shoulders")
	}
	if info.HeadPrice != 88 {
		t.Errorf("head price = %v, want 88", info.HeadPrice)
	}
	if info.LeftShoulder != 94 || info.RightShoulder != 94 {
		t.Errorf("shoulders = %v / %v, want 94 / 94", info.LeftShoulder, info.RightShoulder)
	}
	if info.Neckline != 106 {
		t.Errorf("neckline = %v, want 106", info.Neckline)
	}
	if math.Abs(info.HeadDepth-6.0/94.0) > 1e-9 {
		t.Errorf("head depth = %v, want %v", info.HeadDepth, 6.0/94.0)
	}
	if info.PatternWidth != 35 {
		t.Errorf("pattern width = %d, want 35", info.PatternWidth)
	}
	if !info.NearBreakout {
		t.Error("price within 5% of the neckline should flag near-breakout")
	}
	if info.PatternAging || info.BelowHead {
		t.Error("a fresh base above its head should carry no penalties")
	}
	// Structure plus the breakout proximity sum past the cap.
	if conf != 70 {
		t.Errorf("confidence = %v, want 70", conf)
	}
	if info.ConfidenceCapped == "" {
		t.Error("unconfirmed volume should annotate the cap")
	}
}

// TestInverseHSAgeLimit tests that the configured staleness limit drives
// the aging discount
func TestInverseHSAgeLimit(t *testing.T) {
	closes := []float64{
		100, 100, 100, 100, 100, 100, 100, 100, 100, 100,
		99, 97, 95, 97, 99,
		100, 101, 102, 103, 104, 105, 105, 104, 103, 102,
		101, 98, 95, 92, 90,
		89,
		90, 92, 95, 98, 101,
		102, 103, 104, 105, 105, 104, 103, 102, 101,
		98, 96, 95, 97, 99,
		101, 102, 103, 104, 105, 105, 105, 105, 105, 105,
	}
	s := testSeries(barsFromCloses(closes, 1000))

	cfg := DefaultConfig()
	cfg.MaxAgeDaily[InverseHeadShoulders] = 5

	conf, info := detectInverseHS(s, indicators.Compute(s), cfg)
	if info == nil {
		t.Fatal("expected an inverse head and shoulders")
	}
	if !info.PatternAging {
		t.Error("a right shoulder 13 bars back should age out under a limit of 5")
	}
	if info.AgeBars != 13 {
		t.Errorf("age bars = %d, want 13", info.AgeBars)
	}
	// The capped 70 takes the aging discount.
	if math.Abs(conf-56) > 0.01 {
		t.Errorf("confidence = %v, want 56", conf)
	}
}

// TestInverseHSNoShoulders tests rejection of a plain V-shaped reversal
func TestInverseHSNoShoulders(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		// Straight down into bar 30, straight back up.
		closes[i] = 100 - float64(30-abs(i-30))
	}
	s := testSeries(barsFromCloses(closes, 1000))

	conf, info := detectInverseHS(s, indicators.Compute(s), DefaultConfig())
	if conf != 0 || info != nil {
		t.Errorf("a V reversal has no shoulder lows, want no detection, got conf %v", conf)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
