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

const dishColumns = `id, restaurant_id, name, description, price_cents, image_key, image_url, created_by, created_at`

// DishRepository implements repository.DishRepository using PostgreSQL.
type DishRepository struct {
	pool database.DBTX
}

// NewDishRepository creates a new PostgreSQL-backed dish repository.
func NewDishRepository(pool database.DBTX) *DishRepository {
	return &DishRepository{pool: pool}
}

// Create inserts a new dish.
func (r *DishRepository) Create(ctx context.Context, d *domain.Dish) (err error) {
	query := `
		INSERT INTO dishes (` + dishColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	ctx, end := database.TraceQuery(ctx, "CreateDish", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		d.ID,
		d.RestaurantID,
		d.Name,
		d.Description,
		d.PriceCents,
		d.ImageKey,
		d.ImageURL,
		d.CreatedBy,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dish: %w", err)
	}
	return nil
}

// GetByID retrieves a dish by its ID.
func (r *DishRepository) GetByID(ctx context.Context, id string) (_ *domain.Dish, err error) {
	query := `SELECT ` + dishColumns + ` FROM dishes WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetDish", query)
	defer func() { end(err) }()

	var d domain.Dish
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.RestaurantID,
		&d.Name,
		&d.Description,
		&d.PriceCents,
		&d.ImageKey,
		&d.ImageURL,
		&d.CreatedBy,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("dish", id)
		}
		return nil, fmt.Errorf("get dish %s: %w", id, err)
	}
	return &d, nil
}

// ListByRestaurant returns all dishes of a restaurant, newest first.
func (r *DishRepository) ListByRestaurant(ctx context.Context, restaurantID string) (_ []domain.Dish, err error) {
	query := `
		SELECT ` + dishColumns + `
		FROM dishes
		WHERE restaurant_id = $1
		ORDER BY created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ListDishes", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	defer rows.Close()

	dishes := []domain.Dish{}
	for rows.Next() {
		var d domain.Dish
		if err = rows.Scan(
			&d.ID,
			&d.RestaurantID,
			&d.Name,
			&d.Description,
			&d.PriceCents,
			&d.ImageKey,
			&d.ImageURL,
			&d.CreatedBy,
			&d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan dish row: %w", err)
		}
		dishes = append(dishes, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dish rows: %w", err)
	}
	return dishes, nil
}
