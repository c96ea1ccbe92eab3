package timing

// GapAssessment explains the current gap risk and how to mitigate it.
type GapAssessment struct {
	RiskLevel  string   `json:"risk_level"`
	Factors    []string `json:"factors"`
	Mitigation []string `json:"mitigation"`
}

// AssessGapRisk expands the context's gap risk grade into factors and
// mitigations.
func AssessGapRisk(ctx MarketContext) GapAssessment {
	ga := GapAssessment{RiskLevel: ctx.GapRisk}

	switch {
	case ctx.IsWeekend:
		ga.Factors = append(ga.Factors, "Weekend news cycle", "Extended market closure")
		ga.Mitigation = append(ga.Mitigation,
			"Review pre-market levels Monday",
			"Confirm pattern validity post-gap")
	case ctx.IsFriday:
		ga.Factors = append(ga.Factors, "Weekend headline risk", "Position carries over weekend")
		ga.Mitigation = append(ga.Mitigation,
			"Require exceptional volume",
			"Consider smaller position size")
	case ctx.IsMonday:
		ga.Factors = append(ga.Factors, "Overnight news accumulation", "Weekly market reset")
		ga.Mitigation = append(ga.Mitigation,
			"Wait for gap fill assessment",
			"Validate support/resistance post-gap")
	}
	return ga
}
