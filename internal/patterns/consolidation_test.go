package patterns

import (
	"testing"

	"pattern-scanner/internal/indicators"
	"pattern-scanner/internal/market"
)

// quietBoxBars builds 90 volatile bars followed by 30 tight low-volume
// bars, so every quietness measure ranks the tail as compressed.
func quietBoxBars() []market.Bar {
	bars := make([]market.Bar, 0, 120)
	for i := 0; i < 90; i++ {
		c := 95.0
		if i%2 == 1 {
			c = 105.0
		}
		bars = append(bars, market.Bar{Open: c - 1, High: c + 2, Low: c - 2, Close: c, Volume: 1000})
	}
	for i := 0; i < 30; i++ {
		bars = append(bars, market.Bar{Open: 100, High: 100.5, Low: 99.5, Close: 100, Volume: 400})
	}
	return bars
}

func hasCriterion(criteria []string, name string) bool {
	for _, c := range criteria {
		if c == name {
			return true
		}
	}
	return false
}

// TestConsolidationQuietBox tests criteria collection on a coiled box with
// no breakout yet
func TestConsolidationQuietBox(t *testing.T) {
	s := testSeries(quietBoxBars())
	conf, info := detectConsolidation(s, indicators.Compute(s), DefaultConfig())

	if info == nil {
		t.Fatal("expected a consolidation box")
	}
	if info.BoxHigh != 100.5 || info.BoxLow != 99.5 {
		t.Errorf("box = [%v, %v], want [99.5, 100.5]", info.BoxLow, info.BoxHigh)
	}
	if len(info.Criteria) < 4 {
		t.Errorf("criteria = %v, want at least 4 quietness signals", info.Criteria)
	}
	if !hasCriterion(info.Criteria, critTightBox) {
		t.Error("a 1% box should satisfy the tight-box criterion")
	}
	if !hasCriterion(info.Criteria, critVolumeDryUp) {
		t.Error("tail volume under 80% of its long average should satisfy the dry-up criterion")
	}
	if info.BreakoutConfirmed {
		t.Error("price inside the box is not a breakout")
	}
	if !info.NearBoxHigh {
		t.Error("a close at the box midpoint or above should flag proximity")
	}
	if !info.LowLiquidity {
		t.Error("forty thousand dollars a day should flag low liquidity")
	}
	if conf <= 0 {
		t.Errorf("confidence = %v, want positive for a coiled box", conf)
	}
}

// TestConsolidationBreakout tests full confirmation on a surge bar
func TestConsolidationBreakout(t *testing.T) {
	bars := quietBoxBars()
	bars[119] = market.Bar{Open: 100, High: 105.5, Low: 99.5, Close: 105, Volume: 2000}

	s := testSeries(bars)
	conf, info := detectConsolidation(s, indicators.Compute(s), DefaultConfig())

	if info == nil {
		t.Fatal("expected a consolidation breakout")
	}
	if !info.BreakoutConfirmed {
		t.Error("a close above the box high is a breakout")
	}
	if info.BreakoutQuality != "full confirmation" {
		t.Errorf("breakout quality = %q, want %q", info.BreakoutQuality, "full confirmation")
	}
	if info.BreakoutAge != 0 {
		t.Errorf("breakout age = %d, want 0 for a first close above the box", info.BreakoutAge)
	}
	if conf != 100 {
		t.Errorf("confidence = %v, want the clamped maximum 100", conf)
	}
}

// TestConsolidationMACDBonus tests that an improving MACD adds to a coiled
// box the same way it does for the other detectors
func TestConsolidationMACDBonus(t *testing.T) {
	// A long decline into a tight base leaves the MACD negative but
	// curling back over its signal line.
	bars := make([]market.Bar, 0, 120)
	for i := 0; i < 90; i++ {
		c := 160 - float64(i)*0.66
		bars = append(bars, market.Bar{Open: c + 0.3, High: c + 2, Low: c - 2, Close: c, Volume: 1000})
	}
	for i := 0; i < 30; i++ {
		bars = append(bars, market.Bar{Open: 100, High: 100.5, Low: 99.5, Close: 100, Volume: 400})
	}

	s := testSeries(bars)
	conf, info := detectConsolidation(s, indicators.Compute(s), DefaultConfig())

	if info == nil {
		t.Fatal("expected a consolidation box")
	}
	if !info.MACDBullish {
		t.Error("a recovering MACD should flag bullish and add its bonus")
	}
	if conf <= 0 {
		t.Errorf("confidence = %v, want positive", conf)
	}
}

// TestConsolidationNoQuietness tests the zero-criteria early return on a
// series whose volatility keeps expanding
func TestConsolidationNoQuietness(t *testing.T) {
	bars := make([]market.Bar, 0, 90)
	for i := 0; i < 60; i++ {
		bars = append(bars, market.Bar{Open: 100, High: 100.5, Low: 99.5, Close: 100, Volume: 1000})
	}
	for i := 0; i < 30; i++ {
		c := 100 + float64(i+1)*2
		w := 2 + float64(i)*0.2
		bars = append(bars, market.Bar{Open: c - 1, High: c + w, Low: c - w, Close: c, Volume: 2000})
	}

	s := testSeries(bars)
	conf, info := detectConsolidation(s, indicators.Compute(s), DefaultConfig())

	if info == nil {
		t.Fatal("expected a zero-criteria result, not nil")
	}
	if len(info.Criteria) != 0 {
		t.Errorf("criteria = %v, want none on an expanding trend", info.Criteria)
	}
	if conf != 0 {
		t.Errorf("confidence = %v, want 0 without any quietness", conf)
	}
}
