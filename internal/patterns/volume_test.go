package patterns

import (
	"testing"

	"pattern-scanner/internal/market"
)

// volBars builds n flat 100-level bars carrying the given volume.
func volBars(n int, vol float64) []market.Bar {
	bars := make([]market.Bar, n)
	for i := range bars {
		bars[i] = market.Bar{Open: 100, High: 101, Low: 99, Close: 100, Volume: vol}
	}
	return bars
}

// testSeries wraps bars in a daily series for detector calls.
func testSeries(bars []market.Bar) *market.Series {
	return &market.Series{Symbol: "TEST", Timeframe: market.Daily, Bars: bars}
}

// TestVolumeTiers tests the multiplier tier labels and confirmation flag
func TestVolumeTiers(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		lastVol   float64
		status    string
		confirmed bool
	}{
		{3000, VolumeExceptional, true},
		{1800, VolumeStrong, true},
		{1450, VolumeGood, true},
		{1000, VolumeWeak, false},
	}

	for _, tc := range cases {
		bars := volBars(20, 1000)
		bars[19].Volume = tc.lastVol

		// Bull flags this short skip the flagpole comparison, so only
		// the tier and trend logic runs.
		_, vi := scoreVolume(bars, BullFlag, cfg)
		if vi.Status != tc.status {
			t.Errorf("last volume %v: status = %q, want %q", tc.lastVol, vi.Status, tc.status)
		}
		if vi.Confirmed != tc.confirmed {
			t.Errorf("last volume %v: confirmed = %v, want %v", tc.lastVol, vi.Confirmed, tc.confirmed)
		}
	}
}

// TestVolumeTierBoundaries tests the tier cutoffs landing exactly on the
// configured multipliers, which count for the higher tier
func TestVolumeTierBoundaries(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name    string
		baseVol float64
		dipIdx  int
		dipVol  float64
		lastVol float64
		status  string
	}{
		// 19 bars at 900 plus 1900 average to 950, a multiplier of
		// exactly 2.0.
		{"exactly exceptional", 900, -1, 0, 1900, VolumeExceptional},
		{"just under exceptional", 900, -1, 0, 1880, VolumeStrong},
		// 18 bars at 1000, one at 700 and a 1300 close average to
		// 1000, a multiplier of exactly 1.3.
		{"exactly good", 1000, 5, 700, 1300, VolumeGood},
		{"just under good", 1000, 5, 700, 1299, VolumeWeak},
	}

	for _, tc := range cases {
		bars := volBars(20, tc.baseVol)
		if tc.dipIdx >= 0 {
			bars[tc.dipIdx].Volume = tc.dipVol
		}
		bars[19].Volume = tc.lastVol

		_, vi := scoreVolume(bars, BullFlag, cfg)
		if vi.Status != tc.status {
			t.Errorf("%s: status = %q (multiplier %v), want %q", tc.name, vi.Status, vi.Multiplier, tc.status)
		}
	}
}

// TestVolumeTrendDecreasing tests the fading-volume trend flag
func TestVolumeTrendDecreasing(t *testing.T) {
	cfg := DefaultConfig()
	bars := volBars(25, 1000)
	for i := 20; i < 25; i++ {
		bars[i].Volume = 600
	}

	score, vi := scoreVolume(bars, BullFlag, cfg)
	if !vi.TrendDecreasing {
		t.Error("recent volume well under the 20-bar average should flag a decreasing trend")
	}
	if vi.TrendIncreasing {
		t.Error("trend flags should be mutually exclusive")
	}
	if score != 5 {
		t.Errorf("score = %v, want 5 (trend bonus only)", score)
	}
}

// TestInsideBarQuietVolume tests the consolidation bonus for drying volume
func TestInsideBarQuietVolume(t *testing.T) {
	cfg := DefaultConfig()
	bars := volBars(20, 1000)
	bars[19].Volume = 500

	score, vi := scoreVolume(bars, InsideBar, cfg)
	if !vi.ConsolidationVolume {
		t.Error("inside bar volume under 80% of average should flag quiet consolidation")
	}
	if vi.Confirmed {
		t.Error("quiet volume is not a confirmation")
	}
	if score != cfg.VolumeBonus[InsideBar] {
		t.Errorf("score = %v, want the full inside bar bonus %v", score, cfg.VolumeBonus[InsideBar])
	}
}

// TestBullFlagVolumeDecline tests the flagpole-versus-flag volume comparison
func TestBullFlagVolumeDecline(t *testing.T) {
	cfg := DefaultConfig()
	bars := volBars(30, 1000)
	for i := 0; i < 15; i++ {
		bars[i].Volume = 2000
	}

	_, vi := scoreVolume(bars, BullFlag, cfg)
	if !vi.FlagVolumeDecline {
		t.Error("flagpole volume at twice the flag volume should flag a healthy decline")
	}
}

// TestConsolidationBreakoutVolume tests the surge-versus-box comparison
func TestConsolidationBreakoutVolume(t *testing.T) {
	cfg := DefaultConfig()
	bars := volBars(30, 400)
	bars[29].Volume = 2000

	_, vi := scoreVolume(bars, ConsolidationBreakout, cfg)
	if !vi.BreakoutExpansion {
		t.Error("a 5x surge over the box average should flag breakout expansion")
	}
	if vi.Status != VolumeExceptional {
		t.Errorf("status = %q, want %q", vi.Status, VolumeExceptional)
	}
}

// TestApplyVolumeCap tests the no-confirmation confidence cap
func TestApplyVolumeCap(t *testing.T) {
	cfg := DefaultConfig()

	var common CommonInfo
	vi := VolumeInfo{Confirmed: false}
	got := applyVolumeCap(85, &vi, &common, cfg)
	if got != cfg.MaxConfidenceWithoutVolume {
		t.Errorf("capped confidence = %v, want %v", got, cfg.MaxConfidenceWithoutVolume)
	}
	if common.ConfidenceCapped == "" {
		t.Error("the cap should annotate the result")
	}

	// The annotation marks any unconfirmed score, even one already
	// under the cap.
	var underCap CommonInfo
	vi = VolumeInfo{Confirmed: false}
	got = applyVolumeCap(50, &vi, &underCap, cfg)
	if got != 50 {
		t.Errorf("a score under the cap should pass through, got %v", got)
	}
	if underCap.ConfidenceCapped == "" {
		t.Error("unconfirmed volume should annotate the result even under the cap")
	}

	var confirmed CommonInfo
	vi = VolumeInfo{Confirmed: true}
	got = applyVolumeCap(85, &vi, &confirmed, cfg)
	if got != 85 {
		t.Errorf("confirmed volume should not be capped, got %v", got)
	}
	if confirmed.ConfidenceCapped != "" {
		t.Error("no annotation expected when volume confirmed")
	}
}
