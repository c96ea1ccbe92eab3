package risk

import (
	"testing"

	"pattern-scanner/internal/patterns"
)

func goodLevels() *patterns.Levels {
	return &patterns.Levels{
		Entry:      100,
		Stop:       95,
		Target1:    110,
		Target2:    115,
		RiskAmount: 5,
		Reward1:    10,
		Reward2:    15,
		RR1:        2,
		RR2:        3,
	}
}

// TestValidateLevelsClean tests that a consistent set passes untouched
func TestValidateLevelsClean(t *testing.T) {
	v := ValidateLevels(goodLevels())
	if !v.Valid {
		t.Errorf("expected a valid set, got issues %v", v.Issues)
	}
}

// TestValidateLevelsInverted tests that every ordering and ratio rule
// reports its own issue
func TestValidateLevelsInverted(t *testing.T) {
	lv := &patterns.Levels{
		Entry:   90,
		Stop:    95,
		Target1: 85,
		Target2: 84,
		RR1:     -1,
		RR2:     -1.2,
	}
	v := ValidateLevels(lv)
	if v.Valid {
		t.Error("an inverted set must not validate")
	}
	if len(v.Issues) != 5 {
		t.Errorf("issues = %d (%v), want 5", len(v.Issues), v.Issues)
	}
}

// TestValidateLevelsTarget3 tests the extra rules for three-target sets
func TestValidateLevelsTarget3(t *testing.T) {
	lv := goodLevels()
	lv.HasTarget3 = true
	lv.Target3 = 112
	lv.RR3 = 2.4

	v := ValidateLevels(lv)
	if v.Valid {
		t.Error("a third target below the second must not validate")
	}
	if len(v.Issues) != 2 {
		t.Errorf("issues = %d (%v), want 2", len(v.Issues), v.Issues)
	}
}

// TestCalculatePositionSize tests risk-budgeted sizing
func TestCalculatePositionSize(t *testing.T) {
	lv := &patterns.Levels{Entry: 50, Stop: 48, RiskAmount: 2}

	ps := CalculatePositionSize(lv, 100000, 1)
	if ps == nil {
		t.Fatal("expected a sized position")
	}
	if ps.Shares != 500 {
		t.Errorf("shares = %d, want 500", ps.Shares)
	}
	if ps.PositionValue != 25000 {
		t.Errorf("position value = %v, want 25000", ps.PositionValue)
	}
	if ps.MaxLoss != 1000 || ps.RiskAmount != 1000 {
		t.Errorf("risk budget = %v/%v, want 1000/1000", ps.MaxLoss, ps.RiskAmount)
	}
	if ps.RiskPercentage != 1 {
		t.Errorf("risk percentage = %v, want 1", ps.RiskPercentage)
	}
}

// TestCalculatePositionSizeDegenerate tests the nil returns
func TestCalculatePositionSizeDegenerate(t *testing.T) {
	if ps := CalculatePositionSize(&patterns.Levels{RiskAmount: 0}, 100000, 1); ps != nil {
		t.Error("zero risk should not size a position")
	}
	if ps := CalculatePositionSize(goodLevels(), 0, 1); ps != nil {
		t.Error("an empty account should not size a position")
	}
}

// TestSummarize tests the display formatting
func TestSummarize(t *testing.T) {
	lv := goodLevels()
	sum := Summarize(lv)

	if sum.EntryPrice != "$100.00" || sum.StopLoss != "$95.00" {
		t.Errorf("prices = %q/%q", sum.EntryPrice, sum.StopLoss)
	}
	if sum.RiskPercentage != "5.0%" {
		t.Errorf("risk percentage = %q, want %q", sum.RiskPercentage, "5.0%")
	}
	if sum.Target1.RRRatio != "2.0:1" {
		t.Errorf("target1 ratio = %q, want %q", sum.Target1.RRRatio, "2.0:1")
	}
	if sum.Target3 != nil {
		t.Error("no third target expected without HasTarget3")
	}

	lv.HasTarget3 = true
	lv.Target3 = 120
	lv.Reward3 = 20
	lv.RR3 = 4
	sum = Summarize(lv)
	if sum.Target3 == nil || sum.Target3.Price != "$120.00" {
		t.Errorf("target3 = %+v, want $120.00", sum.Target3)
	}
}
