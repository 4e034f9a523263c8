package domain

import (
	"encoding/json"
	"errors"
	"math"
)

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 10
)

// ErrInvalidRating is returned for any rating input that is not a whole
// number in [MinRating, MaxRating].
var ErrInvalidRating = errors.New("rating must be a whole number from 1 to 10")

// Rating is a validated star rating.
type Rating int

// NewRating validates v. Out-of-range values are rejected, never clamped.
func NewRating(v int) (Rating, error) {
	if v < MinRating || v > MaxRating {
		return 0, ErrInvalidRating
	}
	return Rating(v), nil
}

// ParseRating builds a Rating from loosely typed input such as a decoded JSON
// value. Only integral numbers are accepted; strings, fractional values and
// nil fail. Zero means "nothing selected" and fails like any other
// out-of-range value.
func ParseRating(raw any) (Rating, error) {
	switch v := raw.(type) {
	case Rating:
		return NewRating(int(v))
	case int:
		return NewRating(v)
	case int8:
		return NewRating(int(v))
	case int16:
		return NewRating(int(v))
	case int32:
		return NewRating(int(v))
	case int64:
		return fromInt64(v)
	case uint:
		return fromUint64(uint64(v))
	case uint8:
		return NewRating(int(v))
	case uint16:
		return NewRating(int(v))
	case uint32:
		return fromUint64(uint64(v))
	case uint64:
		return fromUint64(v)
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, ErrInvalidRating
		}
		return fromInt64(n)
	default:
		return 0, ErrInvalidRating
	}
}

func fromInt64(v int64) (Rating, error) {
	if v < MinRating || v > MaxRating {
		return 0, ErrInvalidRating
	}
	return Rating(v), nil
}

func fromUint64(v uint64) (Rating, error) {
	if v > MaxRating {
		return 0, ErrInvalidRating
	}
	return NewRating(int(v))
}

func fromFloat(v float64) (Rating, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, ErrInvalidRating
	}
	if v < MinRating || v > MaxRating {
		return 0, ErrInvalidRating
	}
	return Rating(int(v)), nil
}

// Int returns the rating as a plain int.
func (r Rating) Int() int { return int(r) }
