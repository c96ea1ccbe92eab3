// Package market defines OHLCV bar series and the windowing and validation
// helpers shared by the pattern detectors.
package market

import (
	"time"
)

// Timeframe identifies the bar interval of a series.
type Timeframe string

const (
	Daily    Timeframe = "daily"
	Weekly   Timeframe = "weekly"
	FourHour Timeframe = "4h"
)

// ParseTimeframe converts a string to a Timeframe, defaulting to Daily.
func ParseTimeframe(s string) Timeframe {
	switch s {
	case "weekly", "1wk", "1w":
		return Weekly
	case "4h":
		return FourHour
	default:
		return Daily
	}
}

// Bar represents a single OHLCV candle. Bars are immutable once fetched.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// IsGreen reports whether the bar closed above its open.
func (b Bar) IsGreen() bool { return b.Close > b.Open }

// IsRed reports whether the bar closed below its open.
func (b Bar) IsRed() bool { return b.Close < b.Open }

// Range returns the high-to-low extent of the bar.
func (b Bar) Range() float64 { return b.High - b.Low }

// Series is an ordered, time-indexed sequence of bars for one symbol.
// Detectors treat a Series as a read-only snapshot; derived indicators are
// attached once by the caller before any concurrent use.
type Series struct {
	Symbol    string    `json:"symbol"`
	Timeframe Timeframe `json:"timeframe"`
	Bars      []Bar     `json:"bars"`
}

// Len returns the number of bars in the series.
func (s *Series) Len() int { return len(s.Bars) }

// Last returns the most recent bar. The series must be non-empty.
func (s *Series) Last() Bar { return s.Bars[len(s.Bars)-1] }

// At returns the bar at the given offset counting back from the end:
// offset 1 is the last bar, 2 the one before it.
func (s *Series) At(offset int) Bar { return s.Bars[len(s.Bars)-offset] }

// Closes returns the close prices in bar order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volumes in bar order.
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}
