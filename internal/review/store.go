package review

import (
	"context"

	"github.com/Brodino96/TasteTracker/internal/domain"
)

// Store is the persistence boundary for reviews.
type Store interface {
	// InsertReview persists a new review and returns it with its id and
	// creation time filled in.
	InsertReview(ctx context.Context, dishID, authorID string, rating domain.Rating, note *string) (*domain.Review, error)

	// ListReviews returns every review of a dish, newest first.
	ListReviews(ctx context.Context, dishID string) ([]domain.Review, error)

	// ListUsersByIDs resolves author profiles for display. Unknown ids are
	// absent from the result.
	ListUsersByIDs(ctx context.Context, ids []string) (map[string]domain.UserProfile, error)
}
