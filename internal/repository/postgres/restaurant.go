package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/pkg/database"
	apperrors "github.com/Brodino96/TasteTracker/pkg/errors"
)

const restaurantColumns = `id, name, address, description, image_key, image_url, created_by, created_at, updated_at`

// RestaurantRepository implements repository.RestaurantRepository using PostgreSQL.
type RestaurantRepository struct {
	pool database.DBTX
}

// NewRestaurantRepository creates a new PostgreSQL-backed restaurant repository.
func NewRestaurantRepository(pool database.DBTX) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

// Create inserts a new restaurant.
func (r *RestaurantRepository) Create(ctx context.Context, rest *domain.Restaurant) (err error) {
	query := `
		INSERT INTO restaurants (` + restaurantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	ctx, end := database.TraceQuery(ctx, "CreateRestaurant", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		rest.ID,
		rest.Name,
		rest.Address,
		rest.Description,
		rest.ImageKey,
		rest.ImageURL,
		rest.CreatedBy,
		rest.CreatedAt,
		rest.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert restaurant: %w", err)
	}
	return nil
}

// GetByID retrieves a restaurant by its ID.
func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (_ *domain.Restaurant, err error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetRestaurant", query)
	defer func() { end(err) }()

	var rest domain.Restaurant
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&rest.ID,
		&rest.Name,
		&rest.Address,
		&rest.Description,
		&rest.ImageKey,
		&rest.ImageURL,
		&rest.CreatedBy,
		&rest.CreatedAt,
		&rest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant", id)
		}
		return nil, fmt.Errorf("get restaurant %s: %w", id, err)
	}
	return &rest, nil
}

// List returns one page of restaurants, newest first, with the total count.
func (r *RestaurantRepository) List(ctx context.Context, page, perPage int) (_ []domain.Restaurant, _ int, err error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT ` + restaurantColumns + `,
		       count(*) OVER() AS total_count
		FROM restaurants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	ctx, end := database.TraceQuery(ctx, "ListRestaurants", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	var (
		restaurants []domain.Restaurant
		totalCount  int
	)
	for rows.Next() {
		var rest domain.Restaurant
		if err = rows.Scan(
			&rest.ID,
			&rest.Name,
			&rest.Address,
			&rest.Description,
			&rest.ImageKey,
			&rest.ImageURL,
			&rest.CreatedBy,
			&rest.CreatedAt,
			&rest.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan restaurant row: %w", err)
		}
		restaurants = append(restaurants, rest)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate restaurant rows: %w", err)
	}

	if restaurants == nil {
		restaurants = []domain.Restaurant{}
	}
	return restaurants, totalCount, nil
}

// Update overwrites the editable fields of a restaurant.
func (r *RestaurantRepository) Update(ctx context.Context, rest *domain.Restaurant) (err error) {
	query := `
		UPDATE restaurants
		SET name = $2, address = $3, description = $4, image_key = $5, image_url = $6, updated_at = $7
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "UpdateRestaurant", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query,
		rest.ID,
		rest.Name,
		rest.Address,
		rest.Description,
		rest.ImageKey,
		rest.ImageURL,
		rest.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update restaurant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("restaurant", rest.ID)
	}
	return nil
}
