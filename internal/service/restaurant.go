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
	apperrors "github.com/Brodino96/TasteTracker/pkg/errors"
	"github.com/Brodino96/TasteTracker/pkg/pagination"
)

// RestaurantEvents publishes restaurant lifecycle events.
type RestaurantEvents interface {
	PublishRestaurantCreated(ctx context.Context, r *domain.Restaurant) error
	PublishRestaurantUpdated(ctx context.Context, r *domain.Restaurant) error
}

// CreateRestaurantInput holds the parameters for creating a restaurant.
type CreateRestaurantInput struct {
	Name        string
	Address     string
	Description string
	Image       *domain.ImageUpload
	CreatedBy   string
}

// UpdateRestaurantInput holds the fields to change. Nil fields are kept.
type UpdateRestaurantInput struct {
	Name        *string
	Address     *string
	Description *string
	Image       *domain.ImageUpload
}

// RestaurantService implements the business logic for restaurants.
type RestaurantService struct {
	repo   repository.RestaurantRepository
	images *ImageService
	events RestaurantEvents
	logger *slog.Logger
}

// NewRestaurantService creates a new restaurant service.
func NewRestaurantService(repo repository.RestaurantRepository, images *ImageService, events RestaurantEvents, logger *slog.Logger) *RestaurantService {
	return &RestaurantService{
		repo:   repo,
		images: images,
		events: events,
		logger: logger,
	}
}

// CreateRestaurant validates input, stores the optional image and creates
// the restaurant. The image is removed again if the record cannot be saved.
func (s *RestaurantService) CreateRestaurant(ctx context.Context, input *CreateRestaurantInput) (*domain.Restaurant, error) {
	if input.CreatedBy == "" {
		return nil, apperrors.Unauthorized("sign in to add a restaurant")
	}
	name := strings.TrimSpace(input.Name)
	address := strings.TrimSpace(input.Address)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if address == "" {
		return nil, apperrors.InvalidInput("address is required")
	}

	now := time.Now().UTC()
	rest := &domain.Restaurant{
		ID:          uuid.New().String(),
		Name:        name,
		Address:     address,
		Description: domain.NormalizeNote(input.Description),
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if input.Image != nil {
		img, err := s.images.Upload(ctx, domain.ImageOwnerRestaurants, input.Image)
		if err != nil {
			return nil, err
		}
		rest.ImageKey = &img.Key
		rest.ImageURL = &img.URL
	}

	if err := s.repo.Create(ctx, rest); err != nil {
		if rest.ImageKey != nil {
			s.images.Discard(ctx, *rest.ImageKey, "restaurant create failed")
		}
		return nil, fmt.Errorf("create restaurant: %w", err)
	}

	s.logger.InfoContext(ctx, "restaurant created",
		slog.String("restaurant_id", rest.ID),
		slog.String("created_by", rest.CreatedBy),
	)

	if err := s.events.PublishRestaurantCreated(ctx, rest); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish restaurant created event",
			slog.String("restaurant_id", rest.ID),
			slog.String("error", err.Error()),
		)
	}

	return rest, nil
}

// GetRestaurant retrieves a restaurant by its ID.
func (s *RestaurantService) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	rest, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return rest, nil
}

// ListRestaurants returns one page of restaurants, newest first.
func (s *RestaurantService) ListRestaurants(ctx context.Context, params pagination.Params) (pagination.Result[domain.Restaurant], error) {
	params = pagination.New(params.Page, params.PerPage)

	items, total, err := s.repo.List(ctx, params.Page, params.PerPage)
	if err != nil {
		return pagination.Result[domain.Restaurant]{}, fmt.Errorf("list restaurants: %w", err)
	}
	return pagination.NewResult(items, total, params), nil
}

// UpdateRestaurant applies input for the restaurant's creator. A new image
// is uploaded before the record is updated; the previous image is deleted
// only after the update succeeds, and the new one is deleted if it fails.
func (s *RestaurantService) UpdateRestaurant(ctx context.Context, id, actorID string, input *UpdateRestaurantInput) (*domain.Restaurant, error) {
	if actorID == "" {
		return nil, apperrors.Unauthorized("sign in to edit a restaurant")
	}

	rest, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	if !rest.IsOwnedBy(actorID) {
		return nil, apperrors.Forbidden("only the creator can edit this restaurant")
	}

	if input.Name != nil {
		rest.Name = strings.TrimSpace(*input.Name)
		if rest.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
	}
	if input.Address != nil {
		rest.Address = strings.TrimSpace(*input.Address)
		if rest.Address == "" {
			return nil, apperrors.InvalidInput("address must not be empty")
		}
	}
	if input.Description != nil {
		rest.Description = domain.NormalizeNote(*input.Description)
	}

	var previousKey, newKey string
	if input.Image != nil {
		img, err := s.images.Upload(ctx, domain.ImageOwnerRestaurants, input.Image)
		if err != nil {
			return nil, err
		}
		if rest.ImageKey != nil {
			previousKey = *rest.ImageKey
		}
		newKey = img.Key
		rest.ImageKey = &img.Key
		rest.ImageURL = &img.URL
	}
	rest.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, rest); err != nil {
		s.images.Discard(ctx, newKey, "restaurant update failed")
		return nil, fmt.Errorf("update restaurant: %w", err)
	}
	s.images.Discard(ctx, previousKey, "replaced")

	s.logger.InfoContext(ctx, "restaurant updated",
		slog.String("restaurant_id", rest.ID),
		slog.Bool("image_replaced", newKey != ""),
	)

	if err := s.events.PublishRestaurantUpdated(ctx, rest); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish restaurant updated event",
			slog.String("restaurant_id", rest.ID),
			slog.String("error", err.Error()),
		)
	}

	return rest, nil
}
