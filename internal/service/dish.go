package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/internal/repository"
	"github.com/Brodino96/TasteTracker/internal/review"
	apperrors "github.com/Brodino96/TasteTracker/pkg/errors"
)

// DishEvents publishes dish lifecycle events.
type DishEvents interface {
	PublishDishCreated(ctx context.Context, d *domain.Dish) error
}

// CreateDishInput holds the parameters for adding a dish to a restaurant.
// Price is a decimal amount such as "12.50"; nil or blank means no price.
type CreateDishInput struct {
	RestaurantID string
	Name         string
	Description  string
	Price        *string
	Image        *domain.ImageUpload
	CreatedBy    string
}

// DishService implements the business logic for dishes.
type DishService struct {
	dishes      repository.DishRepository
	restaurants repository.RestaurantRepository
	reviews     repository.ReviewRepository
	images      *ImageService
	events      DishEvents
	logger      *slog.Logger
}

// NewDishService creates a new dish service.
func NewDishService(
	dishes repository.DishRepository,
	restaurants repository.RestaurantRepository,
	reviews repository.ReviewRepository,
	images *ImageService,
	events DishEvents,
	logger *slog.Logger,
) *DishService {
	return &DishService{
		dishes:      dishes,
		restaurants: restaurants,
		reviews:     reviews,
		images:      images,
		events:      events,
		logger:      logger,
	}
}

// CreateDish adds a dish to an existing restaurant.
func (s *DishService) CreateDish(ctx context.Context, input *CreateDishInput) (*domain.Dish, error) {
	if input.CreatedBy == "" {
		return nil, apperrors.Unauthorized("sign in to add a dish")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	var price *int64
	if input.Price != nil && strings.TrimSpace(*input.Price) != "" {
		cents, err := domain.ParsePrice(*input.Price)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		price = &cents
	}

	if _, err := s.restaurants.GetByID(ctx, input.RestaurantID); err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	dish := &domain.Dish{
		ID:           uuid.New().String(),
		RestaurantID: input.RestaurantID,
		Name:         name,
		Description:  domain.NormalizeNote(input.Description),
		PriceCents:   price,
		CreatedBy:    input.CreatedBy,
		CreatedAt:    time.Now().UTC(),
	}

	if input.Image != nil {
		img, err := s.images.Upload(ctx, domain.ImageOwnerDishes, input.Image)
		if err != nil {
			return nil, err
		}
		dish.ImageKey = &img.Key
		dish.ImageURL = &img.URL
	}

	if err := s.dishes.Create(ctx, dish); err != nil {
		if dish.ImageKey != nil {
			s.images.Discard(ctx, *dish.ImageKey, "dish create failed")
		}
		return nil, fmt.Errorf("create dish: %w", err)
	}

	s.logger.InfoContext(ctx, "dish created",
		slog.String("dish_id", dish.ID),
		slog.String("restaurant_id", dish.RestaurantID),
	)

	if err := s.events.PublishDishCreated(ctx, dish); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish dish created event",
			slog.String("dish_id", dish.ID),
			slog.String("error", err.Error()),
		)
	}

	return dish, nil
}

// GetDish returns a dish with the aggregate of its displayed reviews.
func (s *DishService) GetDish(ctx context.Context, id string) (*domain.DishSummary, error) {
	dish, err := s.dishes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get dish: %w", err)
	}

	reviews, err := s.reviews.ListReviews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return &domain.DishSummary{
		Dish:      *dish,
		Aggregate: review.Aggregate(review.Dedup(reviews)),
	}, nil
}

// ListDishes returns a restaurant's dishes, newest first, each with its own
// aggregate. Reviews for all dishes are fetched in one query.
func (s *DishService) ListDishes(ctx context.Context, restaurantID string) ([]domain.DishSummary, error) {
	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	dishes, err := s.dishes.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}

	ids := make([]string, len(dishes))
	for i, d := range dishes {
		ids[i] = d.ID
	}
	reviews, err := s.reviews.ListByDishIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	aggs := review.AggregateByDish(ids, reviews)

	out := make([]domain.DishSummary, len(dishes))
	for i, d := range dishes {
		out[i] = domain.DishSummary{Dish: d, Aggregate: aggs[d.ID]}
	}
	return out, nil
}
