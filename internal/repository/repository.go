package repository

import (
	"context"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/internal/review"
)

// RestaurantRepository defines restaurant persistence.
type RestaurantRepository interface {
	// Create inserts a new restaurant.
	Create(ctx context.Context, r *domain.Restaurant) error

	// GetByID returns the restaurant or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)

	// List returns one page of restaurants, newest first, and the total count.
	List(ctx context.Context, page, perPage int) ([]domain.Restaurant, int, error)

	// Update overwrites the mutable fields of an existing restaurant.
	Update(ctx context.Context, r *domain.Restaurant) error
}

// DishRepository defines dish persistence.
type DishRepository interface {
	Create(ctx context.Context, d *domain.Dish) error
	GetByID(ctx context.Context, id string) (*domain.Dish, error)
	// ListByRestaurant returns every dish of a restaurant, newest first.
	ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Dish, error)
}

// ReviewRepository is the review Store plus the bulk read used for dish
// listings.
type ReviewRepository interface {
	review.Store

	// ListByDishIDs returns the reviews of all given dishes, newest first.
	ListByDishIDs(ctx context.Context, dishIDs []string) ([]domain.Review, error)
}

// UserLookup resolves user profiles by id. Unknown ids are left out.
type UserLookup interface {
	ListByIDs(ctx context.Context, ids []string) (map[string]domain.UserProfile, error)
}

// UserRepository defines user profile persistence.
type UserRepository interface {
	UserLookup

	// Upsert records the latest profile seen for a user.
	Upsert(ctx context.Context, u *domain.UserProfile) error
}
