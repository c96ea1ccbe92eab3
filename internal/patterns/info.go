package patterns

import (
	"time"

	"pattern-scanner/internal/market"
)

// VolumeInfo captures the shared volume analysis attached to every result.
type VolumeInfo struct {
	Status     string  `json:"volume_status"`
	Multiplier float64 `json:"volume_multiplier"`
	Score      float64 `json:"volume_score"`

	// Pattern-specific volume observations.
	FlagVolumeDecline   bool `json:"flag_volume_decline,omitempty"`
	HandleVolumeDryUp   bool `json:"handle_volume_dryup,omitempty"`
	BreakoutSurge       bool `json:"breakout_volume_surge,omitempty"`
	ConsolidationVolume bool `json:"consolidation_volume,omitempty"`
	BreakoutExpansion   bool `json:"breakout_volume_expansion,omitempty"`
	TrendIncreasing     bool `json:"volume_trend_increasing,omitempty"`
	TrendDecreasing     bool `json:"volume_trend_decreasing,omitempty"`

	// Confirmed is true when the multiplier tier is at least "good".
	Confirmed bool `json:"volume_confirmed"`
}

// CommonInfo holds the fields every pattern result shares. Detector-specific
// structs embed it.
type CommonInfo struct {
	Volume VolumeInfo `json:"volume"`

	MACDBullish       bool `json:"macd_bullish"`
	MomentumImproving bool `json:"momentum_improving,omitempty"`

	MACD      float64 `json:"macd"`
	Signal    float64 `json:"macd_signal"`
	Histogram float64 `json:"macd_histogram"`

	// ConfidenceCapped is non-empty when the no-volume-confirmation cap
	// was applied.
	ConfidenceCapped string `json:"confidence_capped,omitempty"`

	// Aging and staleness annotations.
	PatternAging bool `json:"pattern_aging,omitempty"`
	AgeBars      int  `json:"age_bars,omitempty"`
	PatternStale bool `json:"pattern_stale,omitempty"`
	BarsOld      int  `json:"bars_old,omitempty"`

	// Structural failure annotations.
	PatternBroken bool   `json:"pattern_broken,omitempty"`
	BreakReason   string `json:"break_reason,omitempty"`

	// Market-timing annotations, filled by the timing adjuster.
	TimingAdjustments  []string `json:"timing_adjustments,omitempty"`
	OriginalConfidence float64  `json:"original_confidence,omitempty"`
	GapRisk            string   `json:"gap_risk,omitempty"`
}

// Common satisfies the Info interface for every embedding struct.
func (c *CommonInfo) Common() *CommonInfo { return c }

// Info is the detector-specific detail attached to a Result.
type Info interface {
	Common() *CommonInfo
}

// InsideBarInfo describes a detected inside bar formation.
type InsideBarInfo struct {
	CommonInfo

	MotherHigh float64 `json:"mother_high"`
	MotherLow  float64 `json:"mother_low"`
	InsideHigh float64 `json:"inside_high"`
	InsideLow  float64 `json:"inside_low"`

	InsideBarCount  int     `json:"inside_bar_count"`
	SizeRatio       float64 `json:"size_ratio"`
	ProperColors    bool    `json:"proper_color_combo"`
	HoldingSupport  bool    `json:"holding_support"`
	MotherBarOffset int     `json:"mother_bar_offset"`
}

// FlatTopInfo describes a flat top breakout setup.
type FlatTopInfo struct {
	CommonInfo

	Resistance      float64 `json:"resistance"`
	AscentGain      float64 `json:"ascent_gain"`
	Pullback        float64 `json:"pullback"`
	DescendingHighs bool    `json:"descending_highs"`
	HigherLows      bool    `json:"higher_lows"`
	ResistanceHits  int     `json:"resistance_touches"`
	SupportLow      float64 `json:"support_low"`
}

// BullFlagInfo describes a bull flag setup.
type BullFlagInfo struct {
	CommonInfo

	FlagpoleGain    float64 `json:"flagpole_gain"`
	Pullback        float64 `json:"pullback"`
	FlagHigh        float64 `json:"flag_high"`
	FlagLow         float64 `json:"flag_low"`
	HealthyPullback bool    `json:"healthy_pullback"`
	NearBreakout    bool    `json:"near_breakout"`
}

// CupHandleInfo describes a cup and handle setup.
type CupHandleInfo struct {
	CommonInfo

	CupDepth     float64 `json:"cup_depth"`
	HandleDepth  float64 `json:"handle_depth"`
	HandleDays   int     `json:"handle_days"`
	HandleLow    float64 `json:"handle_low"`
	RimLevel     float64 `json:"rim_level"`
	NearRim      bool    `json:"near_rim"`
	HandleRating string  `json:"handle_rating"`
}

// InverseHSInfo describes an inverse head and shoulders base.
type InverseHSInfo struct {
	CommonInfo

	HeadPrice     float64 `json:"head_price"`
	LeftShoulder  float64 `json:"left_shoulder"`
	RightShoulder float64 `json:"right_shoulder"`
	Neckline      float64 `json:"neckline"`
	HeadDepth     float64 `json:"head_depth"`
	PatternWidth  int     `json:"pattern_width"`
	NearBreakout  bool    `json:"near_breakout"`
	Approaching   bool    `json:"approaching_neckline"`
	BelowHead     bool    `json:"below_head_warning,omitempty"`
}

// ConsolidationInfo describes a consolidation box and any breakout from it.
type ConsolidationInfo struct {
	CommonInfo

	BoxHigh     float64 `json:"box_high"`
	BoxLow      float64 `json:"box_low"`
	BoxMidpoint float64 `json:"box_midpoint"`
	BoxWidth    float64 `json:"box_width"`
	BoxBars     int     `json:"box_bars"`

	// Criteria lists which quietness checks passed.
	Criteria []string `json:"criteria"`

	BreakoutConfirmed bool   `json:"breakout_confirmed"`
	BreakoutQuality   string `json:"breakout_quality,omitempty"`
	BreakoutAge       int    `json:"breakout_age,omitempty"`
	LowLiquidity      bool   `json:"low_liquidity,omitempty"`
	NearBoxHigh       bool   `json:"near_box_high,omitempty"`
}

// Result is a single detector's verdict for one symbol and timeframe.
type Result struct {
	Symbol     string           `json:"symbol"`
	Timeframe  market.Timeframe `json:"timeframe"`
	Pattern    PatternType      `json:"pattern"`
	Detected   bool             `json:"detected"`
	Confidence float64          `json:"confidence"`
	Info       Info             `json:"info,omitempty"`
	Levels     *Levels          `json:"levels,omitempty"`
	ScannedAt  time.Time        `json:"scanned_at"`

	// Full indicator series over the scanned bars, for charting clients.
	// The latest values also appear as scalars on the info's CommonInfo.
	MACDSeries      []float64 `json:"macd_series,omitempty"`
	SignalSeries    []float64 `json:"signal_series,omitempty"`
	HistogramSeries []float64 `json:"histogram_series,omitempty"`
}

// Levels holds the trade levels computed for a detected pattern.
type Levels struct {
	Entry      float64 `json:"entry"`
	Stop       float64 `json:"stop_loss"`
	Target1    float64 `json:"target1"`
	Target2    float64 `json:"target2"`
	Target3    float64 `json:"target3,omitempty"`
	HasTarget3 bool    `json:"has_target3"`

	RiskAmount float64 `json:"risk_amount"`
	Reward1    float64 `json:"reward1"`
	Reward2    float64 `json:"reward2"`
	Reward3    float64 `json:"reward3,omitempty"`
	RR1        float64 `json:"risk_reward_1"`
	RR2        float64 `json:"risk_reward_2"`
	RR3        float64 `json:"risk_reward_3,omitempty"`

	TargetMethod       string `json:"target_method"`
	MeasuredMove       bool   `json:"measured_move"`
	VolatilityAdjusted bool   `json:"volatility_adjusted"`
}

// clamp bounds a confidence score to [0, 100].
func clamp(conf float64) float64 {
	if conf < 0 {
		return 0
	}
	if conf > 100 {
		return 100
	}
	return conf
}
