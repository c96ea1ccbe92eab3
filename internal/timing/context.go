// Package timing grades detection confidence by market calendar context:
// weekend staleness, Friday weekend-hold risk, Monday gaps, and the midweek
// sweet spot.
package timing

import "time"

// Gap risk grades.
const (
	GapRiskHigh   = "HIGH - Weekend news can cause significant gaps"
	GapRiskActive = "ACTIVE - Monitor gap direction"
	GapRiskEarly  = "MEDIUM - Early session volatility"
	GapRiskFriday = "MEDIUM - Weekend news risk"
	GapRiskAfter  = "MEDIUM - Weekend headline risk"
	GapRiskLow    = "LOW - Standard trading conditions"
	GapRiskNormal = "LOW - Normal conditions"
)

// MarketContext captures where the clock sits relative to the trading week.
type MarketContext struct {
	Day  time.Weekday `json:"day"`
	Hour int          `json:"hour"`

	IsWeekend bool `json:"is_weekend"`
	IsFriday  bool `json:"is_friday"`
	IsMonday  bool `json:"is_monday"`
	IsMidweek bool `json:"is_midweek"`

	MarketHours bool `json:"market_hours"`
	PreMarket   bool `json:"pre_market"`
	AfterMarket bool `json:"after_market"`

	Warning        string `json:"warning,omitempty"`
	Recommendation string `json:"recommendation"`
	GapRisk        string `json:"gap_risk"`
	EntryTiming    string `json:"entry_timing"`
}

// NewMarketContext builds the context for the given wall-clock time.
func NewMarketContext(t time.Time) MarketContext {
	day := t.Weekday()
	hour := t.Hour()

	ctx := MarketContext{
		Day:         day,
		Hour:        hour,
		IsWeekend:   day == time.Saturday || day == time.Sunday,
		IsFriday:    day == time.Friday,
		IsMonday:    day == time.Monday,
		IsMidweek:   day == time.Tuesday || day == time.Wednesday || day == time.Thursday,
		MarketHours: hour >= 9 && hour <= 16,
		PreMarket:   hour >= 4 && hour < 9,
		AfterMarket: hour > 16 && hour <= 20,
	}

	switch {
	case ctx.IsWeekend:
		ctx.Warning = "Weekend Analysis: Patterns based on Friday's close. Monitor Monday gap risk."
		ctx.Recommendation = "Review patterns, prepare watchlist. Wait for Monday confirmation before entry."
		ctx.GapRisk = GapRiskHigh
		ctx.EntryTiming = "Wait for Monday open confirmation"

	case ctx.IsMonday:
		if ctx.PreMarket {
			ctx.Warning = "Monday Pre-Market: Watch for gaps that might invalidate weekend patterns."
			ctx.Recommendation = "Check pre-market levels vs. pattern entry points."
			ctx.GapRisk = GapRiskActive
			ctx.EntryTiming = "Wait for market open gap assessment"
		} else {
			ctx.Warning = "Monday Trading: Gap risk period. Validate patterns post-open."
			ctx.Recommendation = "Entry valid if patterns hold after gap settlement."
			ctx.GapRisk = GapRiskEarly
			ctx.EntryTiming = "Patterns valid if holding post-gap"
		}

	case ctx.IsFriday:
		if ctx.AfterMarket {
			ctx.Warning = "Friday After-Hours: Consider weekend risk for new positions."
			ctx.Recommendation = "Avoid new breakouts. Weekend news risk."
			ctx.GapRisk = GapRiskAfter
			ctx.EntryTiming = "Avoid new positions into weekend"
		} else {
			ctx.Warning = "Friday Session: Strong volume required for weekend holds."
			ctx.Recommendation = "Require exceptional volume (2.0x+) for Friday entries."
			ctx.GapRisk = GapRiskFriday
			ctx.EntryTiming = "High volume confirmation essential"
		}

	case ctx.IsMidweek:
		ctx.Recommendation = day.String() + " Trading: Optimal timing for pattern entries."
		ctx.GapRisk = GapRiskLow
		ctx.EntryTiming = "Patterns active for immediate consideration"

	default:
		ctx.Recommendation = "Active Trading: Standard market conditions."
		ctx.GapRisk = GapRiskNormal
		ctx.EntryTiming = "Patterns active for entry"
	}

	return ctx
}
