package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/internal/repository"
	"github.com/Brodino96/TasteTracker/internal/review"
	"github.com/Brodino96/TasteTracker/internal/service"
	"github.com/Brodino96/TasteTracker/internal/storage/memory"
	apperrors "github.com/Brodino96/TasteTracker/pkg/errors"
	"github.com/Brodino96/TasteTracker/pkg/health"
	"github.com/Brodino96/TasteTracker/pkg/httputil"
	"github.com/Brodino96/TasteTracker/pkg/middleware"
)

// --- In-memory repositories ---

type memoryDB struct {
	mu          sync.Mutex
	restaurants map[string]domain.Restaurant
	dishes      map[string]domain.Dish
	reviews     []domain.Review
	users       map[string]domain.UserProfile
	insertErr   error
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		restaurants: make(map[string]domain.Restaurant),
		dishes:      make(map[string]domain.Dish),
		users:       make(map[string]domain.UserProfile),
	}
}

type restaurantRepo struct{ db *memoryDB }

func (r restaurantRepo) Create(_ context.Context, rest *domain.Restaurant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.restaurants[rest.ID] = *rest
	return nil
}

func (r restaurantRepo) GetByID(_ context.Context, id string) (*domain.Restaurant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rest, ok := r.db.restaurants[id]
	if !ok {
		return nil, apperrors.NotFound("restaurant", id)
	}
	return &rest, nil
}

func (r restaurantRepo) List(_ context.Context, page, perPage int) ([]domain.Restaurant, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := make([]domain.Restaurant, 0, len(r.db.restaurants))
	for _, rest := range r.db.restaurants {
		all = append(all, rest)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (page - 1) * perPage
	if start > len(all) {
		start = len(all)
	}
	end := min(start+perPage, len(all))
	return all[start:end], len(all), nil
}

func (r restaurantRepo) Update(_ context.Context, rest *domain.Restaurant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.restaurants[rest.ID]; !ok {
		return apperrors.NotFound("restaurant", rest.ID)
	}
	r.db.restaurants[rest.ID] = *rest
	return nil
}

type dishRepo struct{ db *memoryDB }

func (r dishRepo) Create(_ context.Context, d *domain.Dish) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.dishes[d.ID] = *d
	return nil
}

func (r dishRepo) GetByID(_ context.Context, id string) (*domain.Dish, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.dishes[id]
	if !ok {
		return nil, apperrors.NotFound("dish", id)
	}
	return &d, nil
}

func (r dishRepo) ListByRestaurant(_ context.Context, restaurantID string) ([]domain.Dish, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Dish
	for _, d := range r.db.dishes {
		if d.RestaurantID == restaurantID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type reviewRepo struct{ db *memoryDB }

func (r reviewRepo) InsertReview(_ context.Context, dishID, authorID string, rating domain.Rating, note *string) (*domain.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.insertErr != nil {
		return nil, r.db.insertErr
	}
	rev := domain.Review{
		ID:        uuid.New().String(),
		DishID:    dishID,
		AuthorID:  authorID,
		Rating:    rating,
		Note:      note,
		CreatedAt: time.Now().UTC().Add(time.Duration(len(r.db.reviews)) * time.Millisecond),
	}
	r.db.reviews = append(r.db.reviews, rev)
	return &rev, nil
}

func (r reviewRepo) ListReviews(_ context.Context, dishID string) ([]domain.Review, error) {
	return r.ListByDishIDs(context.Background(), []string{dishID})
}

func (r reviewRepo) ListByDishIDs(_ context.Context, dishIDs []string) ([]domain.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	want := make(map[string]bool, len(dishIDs))
	for _, id := range dishIDs {
		want[id] = true
	}
	var out []domain.Review
	for i := len(r.db.reviews) - 1; i >= 0; i-- {
		if want[r.db.reviews[i].DishID] {
			out = append(out, r.db.reviews[i])
		}
	}
	return out, nil
}

func (r reviewRepo) ListUsersByIDs(ctx context.Context, ids []string) (map[string]domain.UserProfile, error) {
	return userRepo(r).ListByIDs(ctx, ids)
}

type userRepo struct{ db *memoryDB }

func (r userRepo) Upsert(_ context.Context, u *domain.UserProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.users[u.ID] = *u
	return nil
}

func (r userRepo) ListByIDs(_ context.Context, ids []string) (map[string]domain.UserProfile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make(map[string]domain.UserProfile, len(ids))
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// Compile-time interface checks.
var (
	_ repository.RestaurantRepository = restaurantRepo{}
	_ repository.DishRepository       = dishRepo{}
	_ repository.ReviewRepository     = reviewRepo{}
	_ repository.UserRepository       = userRepo{}
)

// --- Events ---

type nopEvents struct{}

func (nopEvents) PublishRestaurantCreated(context.Context, *domain.Restaurant) error { return nil }
func (nopEvents) PublishRestaurantUpdated(context.Context, *domain.Restaurant) error { return nil }
func (nopEvents) PublishDishCreated(context.Context, *domain.Dish) error             { return nil }
func (nopEvents) PublishReviewSubmitted(context.Context, *domain.Review, domain.Aggregate) error {
	return nil
}

// --- Test Helpers ---

var errBadToken = errors.New("bad token")

// testValidator treats "user:<id>" as a valid token for <id>.
func testValidator(token string) (*middleware.Claims, error) {
	id, ok := bytes.CutPrefix([]byte(token), []byte("user:"))
	if !ok || len(id) == 0 {
		return nil, errBadToken
	}
	return &middleware.Claims{UserID: string(id), Email: string(id) + "@example.com"}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testEnv struct {
	db      *memoryDB
	images  *memory.Storage
	handler http.Handler
}

func newTestEnv(t *testing.T, opts ...func(*RouterConfig)) *testEnv {
	t.Helper()
	logger := testLogger()
	db := newMemoryDB()
	store := memory.New("http://localhost:8080", domain.MaxImageSize)

	images := service.NewImageService(store, logger)
	coord := review.NewCoordinator(reviewRepo{db}, nil, nopEvents{}, logger)

	cfg := RouterConfig{
		ServiceName:    "tastetracker-test",
		Restaurants:    service.NewRestaurantService(restaurantRepo{db}, images, nopEvents{}, logger),
		Dishes:         service.NewDishService(dishRepo{db}, restaurantRepo{db}, reviewRepo{db}, images, nopEvents{}, logger),
		Reviews:        service.NewReviewService(dishRepo{db}, reviewRepo{db}, coord, logger),
		Images:         images,
		Users:          service.NewUserService(userRepo{db}, logger),
		Media:          store,
		Health:         health.NewHandler(),
		TokenValidator: testValidator,
		CORS:           middleware.DefaultCORSConfig(),
		PprofCIDRs:     middleware.DefaultPprofCIDRs,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testEnv{db: db, images: store, handler: NewRouter(cfg, logger)}
}

func (e *testEnv) do(t *testing.T, method, path, user string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer user:"+user)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path, user string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return e.do(t, method, path, user, body, "application/json")
}

func (e *testEnv) seedRestaurant(owner string) domain.Restaurant {
	now := time.Now().UTC()
	rest := domain.Restaurant{
		ID:        uuid.New().String(),
		Name:      "Trattoria",
		Address:   "Via Roma 1",
		CreatedBy: owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.db.restaurants[rest.ID] = rest
	return rest
}

func (e *testEnv) seedDish(restaurantID string) domain.Dish {
	d := domain.Dish{
		ID:           uuid.New().String(),
		RestaurantID: restaurantID,
		Name:         "Carbonara",
		CreatedBy:    "owner",
		CreatedAt:    time.Now().UTC(),
	}
	e.db.dishes[d.ID] = d
	return d
}

// envelope decodes the {data, error} response body.
type envelope[T any] struct {
	Data  T                       `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// multipartBody builds a form with the given fields and an optional file part.
func multipartBody(t *testing.T, fields map[string]string, fileField, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="photo.png"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
