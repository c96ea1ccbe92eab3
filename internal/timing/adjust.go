package timing

import (
	"strings"

	"pattern-scanner/internal/patterns"
)

// Adjustment multipliers keyed to the trading week.
const (
	WeekendPenalty = 0.95
	FridayPenalty  = 0.85
	MidweekBonus   = 1.02
)

// AdjustConfidence rescales a result's confidence for the market context and
// records what was applied on the result's info. Friday entries keep full
// confidence only with exceptional volume behind them.
func AdjustConfidence(res *patterns.Result, ctx MarketContext) {
	if res.Info == nil {
		return
	}
	common := res.Info.Common()
	original := res.Confidence
	var notes []string

	switch {
	case ctx.IsWeekend:
		res.Confidence *= WeekendPenalty
		notes = append(notes, "Weekend analysis (-5%)")

	case ctx.IsFriday:
		if !strings.Contains(common.Volume.Status, "Exceptional") {
			res.Confidence *= FridayPenalty
			notes = append(notes, "Friday without exceptional volume (-15%)")
		} else {
			notes = append(notes, "Friday with exceptional volume")
		}

	case ctx.IsMonday:
		notes = append(notes, "Monday gap risk - validate post-open")

	case ctx.IsMidweek:
		res.Confidence *= MidweekBonus
		if res.Confidence > 100 {
			res.Confidence = 100
		}
		notes = append(notes, "Mid-week optimal timing (+2%)")
	}

	common.TimingAdjustments = notes
	common.OriginalConfidence = original
	common.GapRisk = ctx.GapRisk
}

// Recommendations returns entry guidance for a result under the context.
func Recommendations(res *patterns.Result, ctx MarketContext) []string {
	var recs []string
	switch {
	case ctx.IsWeekend:
		recs = append(recs,
			"Wait for Monday confirmation before entry",
			"Monitor pre-market for gap risk")
	case ctx.IsFriday:
		exceptional := res.Info != nil &&
			strings.Contains(res.Info.Common().Volume.Status, "Exceptional")
		if exceptional {
			recs = append(recs, "Entry acceptable with exceptional volume")
		} else {
			recs = append(recs,
				"Consider waiting until next week",
				"Weekend news risk without strong volume")
		}
	case ctx.IsMonday:
		recs = append(recs,
			"Validate pattern holds after gap settlement",
			"Wait for first hour to confirm levels")
	default:
		recs = append(recs,
			"Pattern active for immediate consideration",
			"Standard market conditions apply")
	}
	return recs
}
