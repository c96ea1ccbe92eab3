package patterns

import "pattern-scanner/internal/market"

// PatternType identifies a detector.
type PatternType string

const (
	InsideBar             PatternType = "Inside Bar"
	FlatTopBreakout       PatternType = "Flat Top Breakout"
	BullFlag              PatternType = "Bull Flag"
	CupHandle             PatternType = "Cup Handle"
	InverseHeadShoulders  PatternType = "Inverse Head and Shoulders"
	ConsolidationBreakout PatternType = "Consolidation Breakout"
)

// AllPatterns lists every detector in dispatch order.
var AllPatterns = []PatternType{
	InsideBar,
	FlatTopBreakout,
	BullFlag,
	CupHandle,
	InverseHeadShoulders,
	ConsolidationBreakout,
}

// Config carries every tunable threshold of the detection engine. Zero-value
// configs are not usable; start from DefaultConfig and override.
type Config struct {
	// DetectionThreshold is the minimum confidence for a pattern to count
	// as detected. 55 is the standard setting, 45 the aggressive one.
	DetectionThreshold float64 `json:"detection_threshold"`

	// MaxConfidenceWithoutVolume caps confidence when no volume
	// confirmation is present.
	MaxConfidenceWithoutVolume float64 `json:"max_confidence_without_volume"`

	// Score multipliers applied by the pipeline after detection.
	BullFlagBoost  float64 `json:"bull_flag_boost"`
	CupHandleBoost float64 `json:"cup_handle_boost"`

	// MaxAgeDaily and MaxAgeWeekly hold the per-pattern staleness limits
	// in bars.
	MaxAgeDaily  map[PatternType]int `json:"max_age_daily"`
	MaxAgeWeekly map[PatternType]int `json:"max_age_weekly"`

	// VolumeBonus is the per-pattern bonus granted by pattern-specific
	// volume behavior (flag dry-up, handle dry-up, breakout surge).
	VolumeBonus map[PatternType]float64 `json:"volume_bonus"`

	// MinStopDistance is the per-pattern minimum stop distance as a
	// fraction of entry.
	MinStopDistance map[PatternType]float64 `json:"min_stop_distance"`

	// Per-tier volume multiplier thresholds and scores.
	VolumeTiers VolumeTiers `json:"volume_tiers"`

	// Per-detector structural thresholds.
	FlatTop    FlatTopConfig   `json:"flat_top"`
	Flag       FlagConfig      `json:"bull_flag"`
	Cup        CupConfig       `json:"cup_handle"`
	InsideBars InsideBarConfig `json:"inside_bar"`
	InverseHS  InverseHSConfig `json:"inverse_hs"`

	InsideBarLevels InsideBarLevels `json:"inside_bar_levels"`

	Consolidation ConsolidationConfig `json:"consolidation"`
}

// VolumeTiers grades the current bar's volume multiplier into the
// exceptional, strong and good confirmation tiers.
type VolumeTiers struct {
	ExceptionalMult  float64 `json:"exceptional_mult"`
	StrongMult       float64 `json:"strong_mult"`
	GoodMult         float64 `json:"good_mult"`
	ExceptionalScore float64 `json:"exceptional_score"`
	StrongScore      float64 `json:"strong_score"`
	GoodScore        float64 `json:"good_score"`
}

// FlatTopConfig tunes the flat top breakout detector.
type FlatTopConfig struct {
	// MinAscentGain is the minimum initial run-up; MinPullback the
	// minimum retreat from the peak that forms the descent.
	MinAscentGain float64 `json:"min_ascent_gain"`
	MinPullback   float64 `json:"min_pullback"`

	// DescentTolerance confirms lower rolling highs; ResistanceTolerance
	// counts a high as a touch of the resistance level.
	DescentTolerance    float64 `json:"descent_tolerance"`
	ResistanceTolerance float64 `json:"resistance_tolerance"`
}

// FlagConfig tunes the bull flag detector.
type FlagConfig struct {
	MinFlagpoleGain float64 `json:"min_flagpole_gain"`

	// Acceptable pullback band over the flag, as a fraction of the
	// flagpole high. Negative values allow a drift above the pole top.
	PullbackMin float64 `json:"pullback_min"`
	PullbackMax float64 `json:"pullback_max"`

	// FlagTolerance bounds the flag's support break and the near-breakout
	// proximity check.
	FlagTolerance float64 `json:"flag_tolerance"`
}

// CupConfig tunes the cup and handle detector.
type CupConfig struct {
	MinCupDepth    float64 `json:"min_cup_depth"`
	MaxCupDepth    float64 `json:"max_cup_depth"`
	MaxHandleDepth float64 `json:"max_handle_depth"`

	// MinRimRecovery is how far back toward the left rim the right side
	// must climb for the cup to count as formed.
	MinRimRecovery float64 `json:"min_rim_recovery"`
}

// InsideBarConfig tunes the inside bar detector.
type InsideBarConfig struct {
	// MaxInsideBars caps how many chained inside bars are counted.
	MaxInsideBars int `json:"max_inside_bars"`

	// Size ratio tier bounds, inside range over mother range. Ratios are
	// compared strictly below each bound.
	TightDaily     float64 `json:"tight_daily"`
	GoodDaily      float64 `json:"good_daily"`
	ModerateDaily  float64 `json:"moderate_daily"`
	TightWeekly    float64 `json:"tight_weekly"`
	GoodWeekly     float64 `json:"good_weekly"`
	ModerateWeekly float64 `json:"moderate_weekly"`
}

// InverseHSConfig tunes the inverse head and shoulders detector.
type InverseHSConfig struct {
	MinHeadDepth float64 `json:"min_head_depth"`
	MinWidth     int     `json:"min_width"`
	MaxWidth     int     `json:"max_width"`
}

// InsideBarLevels holds the buffer multipliers used to derive trade levels
// from an inside bar formation.
type InsideBarLevels struct {
	EntryBuffer float64 `json:"entry_buffer"`
	StopBuffer  float64 `json:"stop_buffer"`
	Target2Mult float64 `json:"target2_mult"`
	Target3Mult float64 `json:"target3_mult"`
}

// ConsolidationConfig tunes the consolidation breakout detector.
type ConsolidationConfig struct {
	// BoxWindowDaily and BoxWindowWeekly set the trailing box length,
	// excluding the current bar.
	BoxWindowDaily  int `json:"box_window_daily"`
	BoxWindowWeekly int `json:"box_window_weekly"`

	// BaseConfidence is added once at least one quietness criterion
	// holds; CriterionBonus is added per satisfied criterion.
	BaseConfidence float64 `json:"base_confidence"`
	CriterionBonus float64 `json:"criterion_bonus"`

	// Quietness percentile thresholds, with the lookback used for the
	// percentile ranks.
	ATRPercentile     float64 `json:"atr_percentile"`
	BBWidthPercentile float64 `json:"bb_width_percentile"`
	PercentileWindow  int     `json:"percentile_window"`

	// TightBoxWidth marks the box as tight in absolute terms;
	// MaxBoxWidth is the box height over its midpoint above which the
	// pattern is considered loose and takes a quality penalty.
	TightBoxWidth float64 `json:"tight_box_width"`
	MaxBoxWidth   float64 `json:"max_box_width"`

	// MAPinchThreshold marks the moving averages as converged.
	MAPinchThreshold float64 `json:"ma_pinch_threshold"`

	// VolumeDryUpRatio is the volume-vs-SMA50 ratio under which volume
	// counts as dried up.
	VolumeDryUpRatio float64 `json:"volume_dry_up_ratio"`

	// Breakout confirmation thresholds.
	RangeExpansionMult float64 `json:"range_expansion_mult"`
	BreakoutVolumeMult float64 `json:"breakout_volume_mult"`
	BreakoutBonus      float64 `json:"breakout_bonus"`

	// ProximityBonus rewards price sitting just under the box high.
	ProximityBonus float64 `json:"proximity_bonus"`

	// MinDollarVolume is the liquidity floor; thinner symbols take a
	// confidence penalty.
	MinDollarVolume float64 `json:"min_dollar_volume"`

	// MaxBreakoutAge is how many bars after a confirmed breakout the
	// setup stays actionable.
	MaxBreakoutAge int `json:"max_breakout_age"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		DetectionThreshold:         55,
		MaxConfidenceWithoutVolume: 70,
		BullFlagBoost:              1.05,
		CupHandleBoost:             1.10,
		MaxAgeDaily: map[PatternType]int{
			FlatTopBreakout:      8,
			BullFlag:             10,
			CupHandle:            30,
			InsideBar:            6,
			InverseHeadShoulders: 30,
		},
		MaxAgeWeekly: map[PatternType]int{
			FlatTopBreakout:      8,
			BullFlag:             10,
			CupHandle:            30,
			InsideBar:            8,
			InverseHeadShoulders: 20,
		},
		VolumeBonus: map[PatternType]float64{
			BullFlag:              20,
			CupHandle:             20,
			FlatTopBreakout:       20,
			InsideBar:             15,
			InverseHeadShoulders:  20,
			ConsolidationBreakout: 20,
		},
		MinStopDistance: map[PatternType]float64{
			FlatTopBreakout:      0.03,
			BullFlag:             0.04,
			CupHandle:            0.05,
			InsideBar:            0.05,
			InverseHeadShoulders: 0.04,
		},
		VolumeTiers: VolumeTiers{
			ExceptionalMult:  2.0,
			StrongMult:       1.5,
			GoodMult:         1.3,
			ExceptionalScore: 25,
			StrongScore:      20,
			GoodScore:        15,
		},
		FlatTop: FlatTopConfig{
			MinAscentGain:       0.10,
			MinPullback:         0.08,
			DescentTolerance:    0.97,
			ResistanceTolerance: 0.98,
		},
		Flag: FlagConfig{
			MinFlagpoleGain: 0.08,
			PullbackMin:     -0.15,
			PullbackMax:     0.05,
			FlagTolerance:   0.95,
		},
		Cup: CupConfig{
			MinCupDepth:    0.08,
			MaxCupDepth:    0.60,
			MaxHandleDepth: 0.25,
			MinRimRecovery: 0.75,
		},
		InsideBars: InsideBarConfig{
			MaxInsideBars:  2,
			TightDaily:     0.30,
			GoodDaily:      0.50,
			ModerateDaily:  0.70,
			TightWeekly:    0.35,
			GoodWeekly:     0.55,
			ModerateWeekly: 0.75,
		},
		InverseHS: InverseHSConfig{
			MinHeadDepth: 0.02,
			MinWidth:     8,
			MaxWidth:     100,
		},
		InsideBarLevels: InsideBarLevels{
			EntryBuffer: 1.05,
			StopBuffer:  0.95,
			Target2Mult: 1.13,
			Target3Mult: 1.21,
		},
		Consolidation: ConsolidationConfig{
			BoxWindowDaily:     20,
			BoxWindowWeekly:    12,
			BaseConfidence:     20,
			CriterionBonus:     8,
			ATRPercentile:      25,
			BBWidthPercentile:  25,
			PercentileWindow:   100,
			TightBoxWidth:      0.06,
			MaxBoxWidth:        0.12,
			MAPinchThreshold:   0.02,
			VolumeDryUpRatio:   0.80,
			RangeExpansionMult: 1.5,
			BreakoutVolumeMult: 1.5,
			BreakoutBonus:      25,
			ProximityBonus:     5,
			MinDollarVolume:    1_000_000,
			MaxBreakoutAge:     5,
		},
	}
}

// AggressiveConfig lowers the detection threshold for early-entry scanning.
func AggressiveConfig() Config {
	cfg := DefaultConfig()
	cfg.DetectionThreshold = 45
	return cfg
}

// MaxAge returns the staleness limit for a pattern on the given timeframe.
func (c Config) MaxAge(p PatternType, tf market.Timeframe) int {
	if tf == market.Weekly {
		if v, ok := c.MaxAgeWeekly[p]; ok {
			return v
		}
	}
	if v, ok := c.MaxAgeDaily[p]; ok {
		return v
	}
	return 10
}
