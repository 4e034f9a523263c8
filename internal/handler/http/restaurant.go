package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Brodino96/TasteTracker/internal/service"
	"github.com/Brodino96/TasteTracker/pkg/httputil"
	"github.com/Brodino96/TasteTracker/pkg/middleware"
	"github.com/Brodino96/TasteTracker/pkg/pagination"
	"github.com/Brodino96/TasteTracker/pkg/validator"
)

// RestaurantHandler handles HTTP requests for restaurant endpoints.
type RestaurantHandler struct {
	service *service.RestaurantService
	logger  *slog.Logger
}

// NewRestaurantHandler creates a new restaurant HTTP handler.
func NewRestaurantHandler(svc *service.RestaurantService, logger *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateRestaurantRequest is the body of POST /api/v1/restaurants, sent as
// JSON or as multipart form fields next to an optional "image" part.
type CreateRestaurantRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Address     string `json:"address" validate:"required,max=500"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateRestaurantRequest is the body of PUT /api/v1/restaurants/{id}.
// Omitted fields are left unchanged.
type UpdateRestaurantRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// --- Handlers ---

// CreateRestaurant handles POST /api/v1/restaurants.
func (h *RestaurantHandler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req CreateRestaurantRequest
	input := &service.CreateRestaurantInput{CreatedBy: middleware.UserIDFromContext(r.Context())}

	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		req = CreateRestaurantRequest{
			Name:        r.FormValue("name"),
			Address:     r.FormValue("address"),
			Description: r.FormValue("description"),
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
	input.Address = req.Address
	input.Description = req.Description

	rest, err := h.service.CreateRestaurant(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: rest})
}

// GetRestaurant handles GET /api/v1/restaurants/{id}.
func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	rest, err := h.service.GetRestaurant(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rest})
}

// ListRestaurants handles GET /api/v1/restaurants?page=&per_page=.
func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListRestaurants(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// UpdateRestaurant handles PUT /api/v1/restaurants/{id}.
func (h *RestaurantHandler) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateRestaurantRequest
	input := &service.UpdateRestaurantInput{}

	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		req = UpdateRestaurantRequest{
			Name:        formValue(r, "name"),
			Address:     formValue(r, "address"),
			Description: formValue(r, "description"),
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
	input.Address = req.Address
	input.Description = req.Description

	rest, err := h.service.UpdateRestaurant(r.Context(), id.String(), middleware.UserIDFromContext(r.Context()), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rest})
}
