package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brodino96/TasteTracker/internal/domain"
)

// dishJSON mirrors the serialized DishSummary.
type dishJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents *int64 `json:"price_cents"`
	Aggregate  struct {
		Count      int      `json:"count"`
		Mean       *float64 `json:"mean"`
		HasRatings bool     `json:"has_ratings"`
		Display    string   `json:"display"`
	} `json:"aggregate"`
}

func TestPriceValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PriceValue
		wantErr bool
	}{
		{name: "string", input: `"12.50"`, want: "12.50"},
		{name: "number", input: `12.5`, want: "12.5"},
		{name: "integer", input: `9`, want: "9"},
		{name: "bool rejected", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p PriceValue
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestCreateDish_JSONWithNumericPrice(t *testing.T) {
	env := newTestEnv(t)
	rest := env.seedRestaurant("alice")

	rec := env.doJSON(t, http.MethodPost, "/api/v1/restaurants/"+rest.ID+"/dishes", "bob", map[string]any{
		"name":  "Carbonara",
		"price": 12.5,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dish := decode[domain.Dish](t, rec).Data
	assert.Equal(t, rest.ID, dish.RestaurantID)
	assert.Equal(t, "bob", dish.CreatedBy)
	require.NotNil(t, dish.PriceCents)
	assert.Equal(t, int64(1250), *dish.PriceCents)
}

func TestCreateDish_InvalidPrice(t *testing.T) {
	env := newTestEnv(t)
	rest := env.seedRestaurant("alice")

	rec := env.doJSON(t, http.MethodPost, "/api/v1/restaurants/"+rest.ID+"/dishes", "bob", map[string]any{
		"name":  "Carbonara",
		"price": "cheap",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode[any](t, rec).Error.Code)
	assert.Empty(t, env.db.dishes)
}

func TestCreateDish_UnknownRestaurant(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/restaurants/"+uuid.New().String()+"/dishes", "bob", map[string]any{
		"name": "Carbonara",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateDish_MultipartWithImage(t *testing.T) {
	env := newTestEnv(t)
	rest := env.seedRestaurant("alice")

	body, ct := multipartBody(t, map[string]string{
		"name":  "Tiramisu",
		"price": "6",
	}, "image", "image/webp", pngBytes)

	rec := env.do(t, http.MethodPost, "/api/v1/restaurants/"+rest.ID+"/dishes", "bob", body, ct)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dish := decode[domain.Dish](t, rec).Data
	require.NotNil(t, dish.ImageKey)
	assert.Regexp(t, `^dishes/[0-9a-f-]{36}\.webp$`, *dish.ImageKey)
	require.NotNil(t, dish.PriceCents)
	assert.Equal(t, int64(600), *dish.PriceCents)
}

func TestListDishes_WithAggregates(t *testing.T) {
	env := newTestEnv(t)
	rest := env.seedRestaurant("alice")
	rated := env.seedDish(rest.ID)
	unrated := env.seedDish(rest.ID)

	for _, user := range []string{"u1", "u2"} {
		rating := 6
		if user == "u2" {
			rating = 9
		}
		rec := env.doJSON(t, http.MethodPost, "/api/v1/dishes/"+rated.ID+"/reviews", user, map[string]any{"rating": rating})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(t, http.MethodGet, "/api/v1/restaurants/"+rest.ID+"/dishes", "", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	dishes := decode[[]dishJSON](t, rec).Data
	require.Len(t, dishes, 2)

	byID := map[string]dishJSON{}
	for _, d := range dishes {
		byID[d.ID] = d
	}
	assert.Equal(t, 2, byID[rated.ID].Aggregate.Count)
	require.NotNil(t, byID[rated.ID].Aggregate.Mean)
	assert.InDelta(t, 7.5, *byID[rated.ID].Aggregate.Mean, 1e-9)
	assert.Equal(t, "7.5", byID[rated.ID].Aggregate.Display)

	assert.Equal(t, 0, byID[unrated.ID].Aggregate.Count)
	assert.Nil(t, byID[unrated.ID].Aggregate.Mean)
	assert.False(t, byID[unrated.ID].Aggregate.HasRatings)
	assert.Equal(t, domain.NoRatingsLabel, byID[unrated.ID].Aggregate.Display)
}

func TestListDishes_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)
	rest := env.seedRestaurant("alice")

	rec := env.do(t, http.MethodGet, "/api/v1/restaurants/"+rest.ID+"/dishes", "", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestGetDish(t *testing.T) {
	env := newTestEnv(t)
	rest := env.seedRestaurant("alice")
	dish := env.seedDish(rest.ID)

	rec := env.do(t, http.MethodGet, "/api/v1/dishes/"+dish.ID, "", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dishJSON](t, rec).Data
	assert.Equal(t, dish.ID, got.ID)
	assert.Equal(t, "Carbonara", got.Name)
	assert.Equal(t, 0, got.Aggregate.Count)
}

func TestGetDish_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/dishes/"+uuid.New().String(), "", nil, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
