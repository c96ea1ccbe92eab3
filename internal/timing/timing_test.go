package timing

import (
	"math"
	"testing"
	"time"

	"pattern-scanner/internal/patterns"
)

// Fixed reference week in July 2025: the 7th is a Monday.
func weekday(d time.Weekday, hour int) time.Time {
	return time.Date(2025, time.July, 7+(int(d)+6)%7, hour, 30, 0, 0, time.UTC)
}

func resultWith(conf float64, volumeStatus string) *patterns.Result {
	info := &patterns.InsideBarInfo{}
	info.Volume.Status = volumeStatus
	return &patterns.Result{
		Pattern:    patterns.InsideBar,
		Detected:   true,
		Confidence: conf,
		Info:       info,
	}
}

// TestMarketContextFlags tests day and session classification
func TestMarketContextFlags(t *testing.T) {
	ctx := NewMarketContext(weekday(time.Saturday, 12))
	if !ctx.IsWeekend || ctx.GapRisk != GapRiskHigh {
		t.Errorf("saturday context = %+v, want weekend with high gap risk", ctx)
	}

	ctx = NewMarketContext(weekday(time.Wednesday, 10))
	if !ctx.IsMidweek || !ctx.MarketHours {
		t.Error("wednesday morning should be midweek market hours")
	}
	if ctx.GapRisk != GapRiskLow {
		t.Errorf("midweek gap risk = %q, want %q", ctx.GapRisk, GapRiskLow)
	}

	ctx = NewMarketContext(weekday(time.Monday, 5))
	if !ctx.IsMonday || !ctx.PreMarket {
		t.Error("monday 5am should be pre-market")
	}
	if ctx.GapRisk != GapRiskActive {
		t.Errorf("monday pre-market gap risk = %q, want %q", ctx.GapRisk, GapRiskActive)
	}

	ctx = NewMarketContext(weekday(time.Friday, 18))
	if !ctx.IsFriday || !ctx.AfterMarket {
		t.Error("friday 6pm should be after-market")
	}
	if ctx.GapRisk != GapRiskAfter {
		t.Errorf("friday after-hours gap risk = %q, want %q", ctx.GapRisk, GapRiskAfter)
	}
}

// TestAdjustConfidenceWeekend tests the weekend discount
func TestAdjustConfidenceWeekend(t *testing.T) {
	res := resultWith(80, "Weak Volume")
	AdjustConfidence(res, NewMarketContext(weekday(time.Sunday, 12)))

	if math.Abs(res.Confidence-76) > 1e-9 {
		t.Errorf("confidence = %v, want 76 after the 5%% weekend discount", res.Confidence)
	}
	common := res.Info.Common()
	if common.OriginalConfidence != 80 {
		t.Errorf("original confidence = %v, want 80", common.OriginalConfidence)
	}
	if len(common.TimingAdjustments) != 1 {
		t.Errorf("adjustments = %v, want one note", common.TimingAdjustments)
	}
	if common.GapRisk != GapRiskHigh {
		t.Errorf("gap risk = %q, want %q", common.GapRisk, GapRiskHigh)
	}
}

// TestAdjustConfidenceFriday tests the Friday discount and its exceptional
// volume exemption
func TestAdjustConfidenceFriday(t *testing.T) {
	ctx := NewMarketContext(weekday(time.Friday, 11))

	weak := resultWith(80, "Weak Volume")
	AdjustConfidence(weak, ctx)
	if math.Abs(weak.Confidence-68) > 1e-9 {
		t.Errorf("confidence = %v, want 68 after the 15%% friday discount", weak.Confidence)
	}

	strong := resultWith(80, "Exceptional Volume")
	AdjustConfidence(strong, ctx)
	if strong.Confidence != 80 {
		t.Errorf("confidence = %v, want 80 kept with exceptional volume", strong.Confidence)
	}
	if len(strong.Info.Common().TimingAdjustments) != 1 {
		t.Error("the exemption should still leave a note")
	}
}

// TestAdjustConfidenceMidweek tests the bonus and its ceiling
func TestAdjustConfidenceMidweek(t *testing.T) {
	ctx := NewMarketContext(weekday(time.Tuesday, 11))

	res := resultWith(50, "Weak Volume")
	AdjustConfidence(res, ctx)
	if math.Abs(res.Confidence-51) > 1e-9 {
		t.Errorf("confidence = %v, want 51 after the 2%% midweek bonus", res.Confidence)
	}

	top := resultWith(99, "Weak Volume")
	AdjustConfidence(top, ctx)
	if top.Confidence != 100 {
		t.Errorf("confidence = %v, want capped at 100", top.Confidence)
	}
}

// TestAdjustConfidenceMonday tests that Monday annotates without scaling
func TestAdjustConfidenceMonday(t *testing.T) {
	res := resultWith(80, "Weak Volume")
	AdjustConfidence(res, NewMarketContext(weekday(time.Monday, 11)))

	if res.Confidence != 80 {
		t.Errorf("confidence = %v, want unchanged on Monday", res.Confidence)
	}
	if len(res.Info.Common().TimingAdjustments) != 1 {
		t.Error("monday should leave a gap-risk note")
	}
}

// TestAdjustConfidenceNilInfo tests that bare results are left alone
func TestAdjustConfidenceNilInfo(t *testing.T) {
	res := &patterns.Result{Confidence: 80}
	AdjustConfidence(res, NewMarketContext(weekday(time.Sunday, 12)))
	if res.Confidence != 80 {
		t.Errorf("confidence = %v, want untouched without info", res.Confidence)
	}
}

// TestRecommendations tests per-day entry guidance
func TestRecommendations(t *testing.T) {
	res := resultWith(80, "Weak Volume")

	recs := Recommendations(res, NewMarketContext(weekday(time.Saturday, 12)))
	if len(recs) != 2 {
		t.Errorf("weekend recommendations = %v, want 2", recs)
	}

	recs = Recommendations(res, NewMarketContext(weekday(time.Friday, 11)))
	if len(recs) != 2 {
		t.Errorf("friday recommendations = %v, want 2 cautions", recs)
	}

	strong := resultWith(80, "Exceptional Volume")
	recs = Recommendations(strong, NewMarketContext(weekday(time.Friday, 11)))
	if len(recs) != 1 {
		t.Errorf("friday exceptional recommendations = %v, want 1", recs)
	}
}

// TestAssessGapRisk tests factor and mitigation expansion
func TestAssessGapRisk(t *testing.T) {
	ga := AssessGapRisk(NewMarketContext(weekday(time.Sunday, 12)))
	if ga.RiskLevel != GapRiskHigh {
		t.Errorf("risk level = %q, want %q", ga.RiskLevel, GapRiskHigh)
	}
	if len(ga.Factors) != 2 || len(ga.Mitigation) != 2 {
		t.Errorf("assessment = %+v, want two factors and two mitigations", ga)
	}

	ga = AssessGapRisk(NewMarketContext(weekday(time.Wednesday, 11)))
	if len(ga.Factors) != 0 {
		t.Errorf("midweek factors = %v, want none", ga.Factors)
	}
}
