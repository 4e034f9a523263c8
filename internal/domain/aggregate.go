package domain

import (
	"encoding/json"
	"fmt"
)

// NoRatingsLabel is shown for a dish nobody has rated.
const NoRatingsLabel = "No ratings yet"

// Aggregate holds the statistics derived from a set of reviews. Mean is nil
// exactly when Count is zero, so an unrated dish is never confused with a
// dish rated low.
type Aggregate struct {
	Count int
	Mean  *float64
}

// HasRatings reports whether at least one rating contributed.
func (a Aggregate) HasRatings() bool {
	return a.Count > 0 && a.Mean != nil
}

// Display renders the mean with one decimal place.
func (a Aggregate) Display() string {
	if !a.HasRatings() {
		return NoRatingsLabel
	}
	return fmt.Sprintf("%.1f", *a.Mean)
}

type aggregateJSON struct {
	Count      int      `json:"count"`
	Mean       *float64 `json:"mean"`
	HasRatings bool     `json:"has_ratings"`
	Display    string   `json:"display"`
}

// MarshalJSON always emits "mean", as null when there are no ratings.
func (a Aggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(aggregateJSON{
		Count:      a.Count,
		Mean:       a.Mean,
		HasRatings: a.HasRatings(),
		Display:    a.Display(),
	})
}
