package domain

import (
	"strings"
	"time"
)

// Review is one user's rating of a dish. Reviews are never edited in place:
// a later submission by the same author supersedes the earlier one.
type Review struct {
	ID        string    `json:"id"`
	DishID    string    `json:"dish_id"`
	AuthorID  string    `json:"author_id"`
	Rating    Rating    `json:"rating"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewEntry is a review prepared for display.
type ReviewEntry struct {
	Review
	AuthorName string `json:"author_name"`
}

// NormalizeNote trims s and returns nil when nothing is left.
func NormalizeNote(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
