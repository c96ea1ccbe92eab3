package market

import (
	"fmt"
	"math"
)

// MinBars is the minimum series length accepted for analysis.
const MinBars = 10

// recentWindow is how many trailing bars are held to the strict quality
// checks (null values, high<low, non-positive volume).
const recentWindow = 20

// DataQualityError reports a malformed input series. Detection never runs on
// a series that fails validation.
type DataQualityError struct {
	Symbol string
	Reason string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality error for %s: %s", e.Symbol, e.Reason)
}

// Validate checks a fetched series before indicators are attached. It returns
// a *DataQualityError describing the first problem found, or nil.
func Validate(s *Series) error {
	if s == nil || len(s.Bars) == 0 {
		return &DataQualityError{Symbol: symbolOf(s), Reason: "no data available"}
	}
	if len(s.Bars) < MinBars {
		return &DataQualityError{
			Symbol: s.Symbol,
			Reason: fmt.Sprintf("insufficient data (only %d periods)", len(s.Bars)),
		}
	}

	recent := LastN(s.Bars, recentWindow)
	for _, b := range recent {
		if hasNaN(b) {
			return &DataQualityError{Symbol: s.Symbol, Reason: "missing values in recent data"}
		}
		if b.High < b.Low {
			return &DataQualityError{Symbol: s.Symbol, Reason: "data integrity error: high < low"}
		}
		if b.Volume <= 0 {
			return &DataQualityError{Symbol: s.Symbol, Reason: "invalid volume data"}
		}
	}
	return nil
}

func hasNaN(b Bar) bool {
	return math.IsNaN(b.Open) || math.IsNaN(b.High) || math.IsNaN(b.Low) ||
		math.IsNaN(b.Close) || math.IsNaN(b.Volume)
}

func symbolOf(s *Series) string {
	if s == nil {
		return "?"
	}
	return s.Symbol
}
