package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/pkg/database"
	apperrors "github.com/Brodino96/TasteTracker/pkg/errors"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

var (
	createdAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	restaurantCols = []string{
		"id", "name", "address", "description", "image_key", "image_url",
		"created_by", "created_at", "updated_at",
	}
	dishCols = []string{
		"id", "restaurant_id", "name", "description", "price_cents",
		"image_key", "image_url", "created_by", "created_at",
	}
	reviewCols = []string{"id", "dish_id", "user_id", "rating", "notes", "created_at"}
)

func sampleRestaurant() domain.Restaurant {
	return domain.Restaurant{
		ID:          "rest-1",
		Name:        "Trattoria Da Mario",
		Address:     "Via Roma 1",
		Description: strPtr("family run"),
		ImageKey:    strPtr("restaurants/abc.jpg"),
		ImageURL:    strPtr("http://localhost:8080/media/restaurants/abc.jpg"),
		CreatedBy:   "user-1",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func sampleDish() domain.Dish {
	return domain.Dish{
		ID:           "dish-1",
		RestaurantID: "rest-1",
		Name:         "Carbonara",
		PriceCents:   int64Ptr(1250),
		CreatedBy:    "user-1",
		CreatedAt:    createdAt,
	}
}

// ---------------------------------------------------------------------------
// RestaurantRepository
// ---------------------------------------------------------------------------

func TestRestaurantRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewRestaurantRepository(mock)
	r := sampleRestaurant()

	mock.ExpectExec("INSERT INTO restaurants").
		WithArgs(r.ID, r.Name, r.Address, r.Description, r.ImageKey, r.ImageURL, r.CreatedBy, r.CreatedAt, r.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepository_Create_Error(t *testing.T) {
	mock := newMock(t)
	repo := NewRestaurantRepository(mock)
	r := sampleRestaurant()

	mock.ExpectExec("INSERT INTO restaurants").WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), &r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert restaurant")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewRestaurantRepository(mock)
	r := sampleRestaurant()

	mock.ExpectQuery("SELECT .+ FROM restaurants WHERE id").
		WithArgs(r.ID).
		WillReturnRows(pgxmock.NewRows(restaurantCols).AddRow(
			r.ID, r.Name, r.Address, r.Description, r.ImageKey, r.ImageURL, r.CreatedBy, r.CreatedAt, r.UpdatedAt,
		))

	got, err := repo.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, *got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewRestaurantRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM restaurants WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepository_List(t *testing.T) {
	mock := newMock(t)
	repo := NewRestaurantRepository(mock)
	r := sampleRestaurant()

	mock.ExpectQuery("SELECT .+ FROM restaurants").
		WithArgs(10, 10).
		WillReturnRows(pgxmock.NewRows(append(restaurantCols, "total_count")).AddRow(
			r.ID, r.Name, r.Address, r.Description, r.ImageKey, r.ImageURL, r.CreatedBy, r.CreatedAt, r.UpdatedAt, 11,
		))

	got, total, err := repo.List(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, got, 1)
	assert.Equal(t, r.Name, got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepository_List_Empty(t *testing.T) {
	mock := newMock(t)
	repo := NewRestaurantRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM restaurants").
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(append(restaurantCols, "total_count")))

	got, total, err := repo.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepository_Update(t *testing.T) {
	mock := newMock(t)
	repo := NewRestaurantRepository(mock)
	r := sampleRestaurant()

	mock.ExpectExec("UPDATE restaurants").
		WithArgs(r.ID, r.Name, r.Address, r.Description, r.ImageKey, r.ImageURL, r.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), &r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewRestaurantRepository(mock)
	r := sampleRestaurant()

	mock.ExpectExec("UPDATE restaurants").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &r)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// DishRepository
// ---------------------------------------------------------------------------

func TestDishRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewDishRepository(mock)
	d := sampleDish()

	mock.ExpectExec("INSERT INTO dishes").
		WithArgs(d.ID, d.RestaurantID, d.Name, d.Description, d.PriceCents, d.ImageKey, d.ImageURL, d.CreatedBy, d.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &d))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDishRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewDishRepository(mock)
	d := sampleDish()

	mock.ExpectQuery("SELECT .+ FROM dishes WHERE id").
		WithArgs(d.ID).
		WillReturnRows(pgxmock.NewRows(dishCols).AddRow(
			d.ID, d.RestaurantID, d.Name, d.Description, d.PriceCents, d.ImageKey, d.ImageURL, d.CreatedBy, d.CreatedAt,
		))

	got, err := repo.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PriceCents)
	assert.Equal(t, int64(1250), *got.PriceCents)
	assert.Nil(t, got.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDishRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewDishRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM dishes WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDishRepository_ListByRestaurant(t *testing.T) {
	mock := newMock(t)
	repo := NewDishRepository(mock)
	d := sampleDish()

	mock.ExpectQuery("SELECT .+ FROM dishes").
		WithArgs("rest-1").
		WillReturnRows(pgxmock.NewRows(dishCols).
			AddRow(d.ID, d.RestaurantID, d.Name, d.Description, d.PriceCents, d.ImageKey, d.ImageURL, d.CreatedBy, d.CreatedAt).
			AddRow("dish-2", d.RestaurantID, "Amatriciana", nil, nil, nil, nil, d.CreatedBy, d.CreatedAt))

	got, err := repo.ListByRestaurant(context.Background(), "rest-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "dish-2", got[1].ID)
	assert.Nil(t, got[1].PriceCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDishRepository_ListByRestaurant_QueryError(t *testing.T) {
	mock := newMock(t)
	repo := NewDishRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM dishes").
		WithArgs("rest-1").
		WillReturnError(errors.New("timeout"))

	_, err := repo.ListByRestaurant(context.Background(), "rest-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list dishes")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// ReviewRepository
// ---------------------------------------------------------------------------

type stubUsers map[string]domain.UserProfile

func (s stubUsers) ListByIDs(_ context.Context, ids []string) (map[string]domain.UserProfile, error) {
	out := map[string]domain.UserProfile{}
	for _, id := range ids {
		if u, ok := s[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func TestReviewRepository_InsertReview(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock, stubUsers{})
	repo.now = func() time.Time { return createdAt }
	note := strPtr("al dente")

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(pgxmock.AnyArg(), "dish-1", "user-1", 8, note, createdAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	got, err := repo.InsertReview(context.Background(), "dish-1", "user-1", 8, note)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, domain.Rating(8), got.Rating)
	assert.Equal(t, "al dente", *got.Note)
	assert.Equal(t, createdAt, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_InsertReview_Error(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock, stubUsers{})

	mock.ExpectExec("INSERT INTO reviews").
		WillReturnError(errors.New(`insert or update on table "reviews" violates foreign key constraint`))

	got, err := repo.InsertReview(context.Background(), "dish-x", "user-1", 8, nil)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "violates foreign key constraint")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListReviews(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock, stubUsers{})
	later := createdAt.Add(time.Hour)

	mock.ExpectQuery("SELECT .+ FROM reviews").
		WithArgs("dish-1").
		WillReturnRows(pgxmock.NewRows(reviewCols).
			AddRow("r2", "dish-1", "user-2", 4, nil, later).
			AddRow("r1", "dish-1", "user-1", 8, strPtr("good"), createdAt))

	got, err := repo.ListReviews(context.Background(), "dish-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].ID)
	assert.Equal(t, domain.Rating(4), got[0].Rating)
	assert.Nil(t, got[0].Note)
	assert.Equal(t, "good", *got[1].Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByDishIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock, stubUsers{})
	ids := []string{"dish-1", "dish-2"}

	mock.ExpectQuery("SELECT .+ FROM reviews").
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows(reviewCols).
			AddRow("r1", "dish-2", "user-1", 9, nil, createdAt))

	got, err := repo.ListByDishIDs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "dish-2", got[0].DishID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByDishIDs_Empty(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock, stubUsers{})

	got, err := repo.ListByDishIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListUsersByIDs_Delegates(t *testing.T) {
	repo := NewReviewRepository(newMock(t), stubUsers{"user-1": {ID: "user-1", Email: "a@b.c"}})

	got, err := repo.ListUsersByIDs(context.Background(), []string{"user-1", "user-9"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "a@b.c", got["user-1"].Email)
}

// ---------------------------------------------------------------------------
// UserRepository
// ---------------------------------------------------------------------------

func TestUserRepository_Upsert(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec("INSERT INTO users .+ ON CONFLICT").
		WithArgs("user-1", "alice@example.com", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Upsert(context.Background(), &domain.UserProfile{ID: "user-1", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListByIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	ids := []string{"user-1", "user-2"}

	mock.ExpectQuery("SELECT id, email, display_name FROM users").
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "display_name"}).
			AddRow("user-1", "alice@example.com", ""))

	got, err := repo.ListByIDs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got["user-1"].Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListByIDs_NoIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	got, err := repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
