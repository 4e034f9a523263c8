package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Brodino96/TasteTracker/internal/service"
	"github.com/Brodino96/TasteTracker/pkg/httputil"
	"github.com/Brodino96/TasteTracker/pkg/middleware"
	"github.com/Brodino96/TasteTracker/pkg/validator"
)

// DishHandler handles HTTP requests for dish endpoints.
type DishHandler struct {
	service *service.DishService
	logger  *slog.Logger
}

// NewDishHandler creates a new dish HTTP handler.
func NewDishHandler(svc *service.DishService, logger *slog.Logger) *DishHandler {
	return &DishHandler{
		service: svc,
		logger:  logger,
	}
}

type listResponse struct {
	Data any `json:"data"`
}

// PriceValue accepts a price as a JSON string ("12.50") or number (12.5).
type PriceValue string

// UnmarshalJSON implements json.Unmarshaler.
func (p *PriceValue) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = PriceValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("price must be a string or a number")
	}
	*p = PriceValue(n.String())
	return nil
}

// CreateDishRequest is the body of POST /api/v1/restaurants/{id}/dishes.
type CreateDishRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=2000"`
	Price       *PriceValue `json:"price"`
}

// CreateDish handles POST /api/v1/restaurants/{id}/dishes.
func (h *DishHandler) CreateDish(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req CreateDishRequest
	input := &service.CreateDishInput{
		RestaurantID: restaurantID.String(),
		CreatedBy:    middleware.UserIDFromContext(r.Context()),
	}

	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		req = CreateDishRequest{
			Name:        r.FormValue("name"),
			Description: r.FormValue("description"),
		}
		if v := formValue(r, "price"); v != nil {
			p := PriceValue(*v)
			req.Price = &p
		}
		if err := validator.Validate(&req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
		img, file, err := formImage(r, "image")
		if err != nil {
			writeBadForm(w, "invalid image: "+err.Error())
			return
		}
		if file != nil {
			defer file.Close()
		}
		input.Image = img
	} else if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	input.Name = req.Name
	input.Description = req.Description
	if req.Price != nil {
		price := string(*req.Price)
		input.Price = &price
	}

	dish, err := h.service.CreateDish(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: dish})
}

// ListDishes handles GET /api/v1/restaurants/{id}/dishes.
func (h *DishHandler) ListDishes(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	dishes, err := h.service.ListDishes(r.Context(), restaurantID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// Written without omitempty so an empty menu is "data": [].
	httputil.WriteJSON(w, http.StatusOK, listResponse{Data: dishes})
}

// GetDish handles GET /api/v1/dishes/{id}.
func (h *DishHandler) GetDish(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	dish, err := h.service.GetDish(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: dish})
}
