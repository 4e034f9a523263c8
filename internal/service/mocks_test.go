package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/internal/repository"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Mock Restaurant Repository ---

type mockRestaurantRepository struct {
	mock.Mock
}

func (m *mockRestaurantRepository) Create(ctx context.Context, r *domain.Restaurant) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRestaurantRepository) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Restaurant), args.Error(1)
}

func (m *mockRestaurantRepository) List(ctx context.Context, page, perPage int) ([]domain.Restaurant, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]domain.Restaurant), args.Int(1), args.Error(2)
}

func (m *mockRestaurantRepository) Update(ctx context.Context, r *domain.Restaurant) error {
	return m.Called(ctx, r).Error(0)
}

// --- Mock Dish Repository ---

type mockDishRepository struct {
	mock.Mock
}

func (m *mockDishRepository) Create(ctx context.Context, d *domain.Dish) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDishRepository) GetByID(ctx context.Context, id string) (*domain.Dish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dish), args.Error(1)
}

func (m *mockDishRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Dish, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).([]domain.Dish), args.Error(1)
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) InsertReview(ctx context.Context, dishID, authorID string, rating domain.Rating, note *string) (*domain.Review, error) {
	args := m.Called(ctx, dishID, authorID, rating, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListReviews(ctx context.Context, dishID string) ([]domain.Review, error) {
	args := m.Called(ctx, dishID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListByDishIDs(ctx context.Context, dishIDs []string) ([]domain.Review, error) {
	args := m.Called(ctx, dishIDs)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListUsersByIDs(ctx context.Context, ids []string) (map[string]domain.UserProfile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.UserProfile), args.Error(1)
}

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Upsert(ctx context.Context, u *domain.UserProfile) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepository) ListByIDs(ctx context.Context, ids []string) (map[string]domain.UserProfile, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]domain.UserProfile), args.Error(1)
}

// --- Recording Event Publisher ---

type recordingEvents struct {
	topics []string
	err    error
}

func (e *recordingEvents) PublishRestaurantCreated(_ context.Context, _ *domain.Restaurant) error {
	e.topics = append(e.topics, "restaurant.created")
	return e.err
}

func (e *recordingEvents) PublishRestaurantUpdated(_ context.Context, _ *domain.Restaurant) error {
	e.topics = append(e.topics, "restaurant.updated")
	return e.err
}

func (e *recordingEvents) PublishDishCreated(_ context.Context, _ *domain.Dish) error {
	e.topics = append(e.topics, "dish.created")
	return e.err
}

// Compile-time interface checks.
var (
	_ repository.RestaurantRepository = (*mockRestaurantRepository)(nil)
	_ repository.DishRepository       = (*mockDishRepository)(nil)
	_ repository.ReviewRepository     = (*mockReviewRepository)(nil)
	_ repository.UserRepository       = (*mockUserRepository)(nil)
	_ RestaurantEvents                = (*recordingEvents)(nil)
	_ DishEvents                      = (*recordingEvents)(nil)
)
