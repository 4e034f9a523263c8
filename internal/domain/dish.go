package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPrice is returned by ParsePrice.
var ErrInvalidPrice = errors.New("price must be a non-negative amount with at most two decimals")

// Dish is a menu item that belongs to a restaurant.
type Dish struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	PriceCents   *int64    `json:"price_cents,omitempty"`
	ImageKey     *string   `json:"image_key,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// DishSummary is a dish together with the aggregate of its reviews.
type DishSummary struct {
	Dish
	Aggregate Aggregate `json:"aggregate"`
}

// ParsePrice converts a decimal amount such as "12.5" or "7" to cents.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrInvalidPrice
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (frac == "" || len(frac) > 2) {
		return 0, ErrInvalidPrice
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	if units > (1<<62)/100 {
		return 0, ErrInvalidPrice
	}
	return units*100 + cents, nil
}

// FormatPrice renders cents as a decimal amount.
func FormatPrice(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
