package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/internal/repository"
	"github.com/Brodino96/TasteTracker/internal/review"
	apperrors "github.com/Brodino96/TasteTracker/pkg/errors"
)

// ReviewList is a dish's displayed reviews and their aggregate.
type ReviewList struct {
	Reviews   []domain.ReviewEntry `json:"reviews"`
	Aggregate domain.Aggregate     `json:"aggregate"`
}

// SubmitReviewResult is the accepted review and the dish's updated list.
type SubmitReviewResult struct {
	Review *domain.Review `json:"review"`
	ReviewList
}

// ReviewService loads and submits reviews through a review.DishSession.
type ReviewService struct {
	dishes repository.DishRepository
	store  repository.ReviewRepository
	coord  *review.Coordinator
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(dishes repository.DishRepository, store repository.ReviewRepository, coord *review.Coordinator, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		dishes: dishes,
		store:  store,
		coord:  coord,
		logger: logger,
	}
}

// ListReviews returns the dish's reviews, one per author, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, dishID string) (*ReviewList, error) {
	session, err := s.openSession(ctx, dishID)
	if err != nil {
		return nil, err
	}

	return s.present(ctx, session), nil
}

// SubmitReview records authorID's rating of a dish, replacing any earlier
// review of theirs in the returned list.
func (s *ReviewService) SubmitReview(ctx context.Context, dishID, authorID string, rating any, note string) (*SubmitReviewResult, error) {
	session, err := s.openSession(ctx, dishID)
	if err != nil {
		return nil, err
	}

	session.SetRating(rating)
	session.SetNote(note)
	created, err := session.Submit(ctx, authorID)
	if err != nil {
		return nil, err
	}

	return &SubmitReviewResult{
		Review:     created,
		ReviewList: *s.present(ctx, session),
	}, nil
}

func (s *ReviewService) openSession(ctx context.Context, dishID string) (*review.DishSession, error) {
	if _, err := s.dishes.GetByID(ctx, dishID); err != nil {
		return nil, fmt.Errorf("get dish: %w", err)
	}

	session := review.NewDishSession(dishID, s.store, s.coord)
	if err := session.Load(ctx); err != nil {
		return nil, apperrors.Upstream("could not load reviews", err)
	}
	return session, nil
}

// present attaches author names. A failed lookup only degrades names to
// the anonymous label.
func (s *ReviewService) present(ctx context.Context, session *review.DishSession) *ReviewList {
	reviews := session.Reviews()

	seen := make(map[string]struct{}, len(reviews))
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.AuthorID]; !ok {
			seen[r.AuthorID] = struct{}{}
			ids = append(ids, r.AuthorID)
		}
	}

	var users map[string]domain.UserProfile
	if len(ids) > 0 {
		var err error
		users, err = s.store.ListUsersByIDs(ctx, ids)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to resolve review authors",
				slog.String("dish_id", session.DishID()),
				slog.String("error", err.Error()),
			)
		}
	}

	entries := make([]domain.ReviewEntry, len(reviews))
	for i, r := range reviews {
		entries[i] = domain.ReviewEntry{Review: r, AuthorName: users[r.AuthorID].Name()}
	}

	return &ReviewList{
		Reviews:   entries,
		Aggregate: review.Aggregate(reviews),
	}
}
