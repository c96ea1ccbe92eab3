package risk

import (
	"fmt"

	"pattern-scanner/internal/patterns"
)

// Validation holds the outcome of a level consistency check.
type Validation struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ValidateLevels checks a level set for ordering and minimum risk/reward
// consistency. Every violated rule adds an issue; the set is valid only when
// no issues remain.
func ValidateLevels(lv *patterns.Levels) Validation {
	var issues []string

	if lv.Entry <= lv.Stop {
		issues = append(issues, "Entry price must be above stop loss")
	}
	if lv.Target1 <= lv.Entry {
		issues = append(issues, "Target 1 must be above entry price")
	}
	if lv.Target2 <= lv.Target1 {
		issues = append(issues, "Target 2 must be above Target 1")
	}

	if lv.RR1 < 1.0 {
		issues = append(issues, "Target 1 risk/reward ratio below 1:1")
	}
	if lv.RR2 < 2.0 {
		issues = append(issues, "Target 2 risk/reward ratio below 2:1")
	}

	if lv.HasTarget3 {
		if lv.Target3 <= lv.Target2 {
			issues = append(issues, "Target 3 must be above Target 2")
		}
		if lv.RR3 < 2.5 {
			issues = append(issues, "Target 3 risk/reward ratio below 2.5:1")
		}
	}

	return Validation{Valid: len(issues) == 0, Issues: issues}
}

// PositionSize describes a risk-budgeted position.
type PositionSize struct {
	Shares         int     `json:"shares"`
	PositionValue  float64 `json:"position_value"`
	RiskAmount     float64 `json:"risk_amount"`
	RiskPercentage float64 `json:"risk_percentage_actual"`
	MaxLoss        float64 `json:"max_loss"`
}

// CalculatePositionSize sizes a position so the distance to the stop risks
// at most riskPct percent of the account. Returns nil when the level set has
// no positive risk.
func CalculatePositionSize(lv *patterns.Levels, accountSize, riskPct float64) *PositionSize {
	if lv.RiskAmount <= 0 || accountSize <= 0 {
		return nil
	}
	maxLoss := accountSize * riskPct / 100
	shares := int(maxLoss / lv.RiskAmount)
	return &PositionSize{
		Shares:         shares,
		PositionValue:  float64(shares) * lv.Entry,
		RiskAmount:     lv.RiskAmount * float64(shares),
		RiskPercentage: lv.RiskAmount * float64(shares) / accountSize * 100,
		MaxLoss:        maxLoss,
	}
}

// TargetSummary is a display-formatted target line.
type TargetSummary struct {
	Price   string `json:"price"`
	Reward  string `json:"reward"`
	RRRatio string `json:"rr_ratio"`
}

// LevelSummary is a display-formatted view of a level set. All numeric
// fields stay native on Levels; formatting happens only here.
type LevelSummary struct {
	EntryPrice     string         `json:"entry_price"`
	StopLoss       string         `json:"stop_loss"`
	RiskAmount     string         `json:"risk_amount"`
	RiskPercentage string         `json:"risk_percentage"`
	Target1        TargetSummary  `json:"target1"`
	Target2        TargetSummary  `json:"target2"`
	Target3        *TargetSummary `json:"target3,omitempty"`
	Method         string         `json:"method"`
}

// Summarize renders a level set for display.
func Summarize(lv *patterns.Levels) LevelSummary {
	sum := LevelSummary{
		EntryPrice:     fmt.Sprintf("$%.2f", lv.Entry),
		StopLoss:       fmt.Sprintf("$%.2f", lv.Stop),
		RiskAmount:     fmt.Sprintf("$%.2f", lv.RiskAmount),
		RiskPercentage: fmt.Sprintf("%.1f%%", lv.RiskAmount/lv.Entry*100),
		Target1: TargetSummary{
			Price:   fmt.Sprintf("$%.2f", lv.Target1),
			Reward:  fmt.Sprintf("$%.2f", lv.Reward1),
			RRRatio: fmt.Sprintf("%.1f:1", lv.RR1),
		},
		Target2: TargetSummary{
			Price:   fmt.Sprintf("$%.2f", lv.Target2),
			Reward:  fmt.Sprintf("$%.2f", lv.Reward2),
			RRRatio: fmt.Sprintf("%.1f:1", lv.RR2),
		},
		Method: lv.TargetMethod,
	}
	if lv.HasTarget3 {
		sum.Target3 = &TargetSummary{
			Price:   fmt.Sprintf("$%.2f", lv.Target3),
			Reward:  fmt.Sprintf("$%.2f", lv.Reward3),
			RRRatio: fmt.Sprintf("%.1f:1", lv.RR3),
		}
	}
	return sum
}
