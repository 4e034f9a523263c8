package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/pkg/database"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// Upsert records the email of an authenticated user. A stored display name
// is kept when the incoming one is empty.
func (r *UserRepository) Upsert(ctx context.Context, u *domain.UserProfile) (err error) {
	query := `
		INSERT INTO users (id, email, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
		    updated_at = EXCLUDED.updated_at`

	ctx, end := database.TraceQuery(ctx, "UpsertUser", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query, u.ID, u.Email, u.DisplayName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// ListByIDs returns the profiles of the given users. Unknown ids are absent.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []string) (_ map[string]domain.UserProfile, err error) {
	out := make(map[string]domain.UserProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT id, email, display_name FROM users WHERE id = ANY($1)`

	ctx, end := database.TraceQuery(ctx, "ListUsers", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u domain.UserProfile
		if err = rows.Scan(&u.ID, &u.Email, &u.DisplayName); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		out[u.ID] = u
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return out, nil
}
