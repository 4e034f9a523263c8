package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/internal/repository"
	"github.com/Brodino96/TasteTracker/pkg/database"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
// Author profiles are resolved through users, which may be cached.
type ReviewRepository struct {
	pool  database.DBTX
	users repository.UserLookup
	now   func() time.Time
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX, users repository.UserLookup) *ReviewRepository {
	return &ReviewRepository{
		pool:  pool,
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// InsertReview stores a new review. Earlier reviews by the same author are
// kept as history.
func (r *ReviewRepository) InsertReview(ctx context.Context, dishID, authorID string, rating domain.Rating, note *string) (_ *domain.Review, err error) {
	query := `
		INSERT INTO reviews (id, dish_id, user_id, rating, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, "InsertReview", query)
	defer func() { end(err) }()

	rv := &domain.Review{
		ID:        uuid.New().String(),
		DishID:    dishID,
		AuthorID:  authorID,
		Rating:    rating,
		Note:      note,
		CreatedAt: r.now(),
	}

	_, err = r.pool.Exec(ctx, query,
		rv.ID,
		rv.DishID,
		rv.AuthorID,
		rv.Rating.Int(),
		rv.Note,
		rv.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return rv, nil
}

// ListReviews returns every review of a dish, newest first.
func (r *ReviewRepository) ListReviews(ctx context.Context, dishID string) (_ []domain.Review, err error) {
	query := `
		SELECT id, dish_id, user_id, rating, notes, created_at
		FROM reviews
		WHERE dish_id = $1
		ORDER BY created_at DESC, id`

	ctx, end := database.TraceQuery(ctx, "ListReviews", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, dishID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return scanReviews(rows)
}

// ListByDishIDs returns the reviews of every given dish, newest first.
func (r *ReviewRepository) ListByDishIDs(ctx context.Context, dishIDs []string) (_ []domain.Review, err error) {
	if len(dishIDs) == 0 {
		return []domain.Review{}, nil
	}

	query := `
		SELECT id, dish_id, user_id, rating, notes, created_at
		FROM reviews
		WHERE dish_id = ANY($1)
		ORDER BY created_at DESC, id`

	ctx, end := database.TraceQuery(ctx, "ListReviewsByDishes", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, dishIDs)
	if err != nil {
		return nil, fmt.Errorf("list reviews by dishes: %w", err)
	}
	return scanReviews(rows)
}

// ListUsersByIDs resolves author profiles for display.
func (r *ReviewRepository) ListUsersByIDs(ctx context.Context, ids []string) (map[string]domain.UserProfile, error) {
	return r.users.ListByIDs(ctx, ids)
}

func scanReviews(rows pgx.Rows) ([]domain.Review, error) {
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var (
			rv     domain.Review
			rating int
		)
		if err := rows.Scan(
			&rv.ID,
			&rv.DishID,
			&rv.AuthorID,
			&rating,
			&rv.Note,
			&rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		rv.Rating = domain.Rating(rating)
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}
