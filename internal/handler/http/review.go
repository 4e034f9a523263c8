package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Brodino96/TasteTracker/internal/service"
	"github.com/Brodino96/TasteTracker/pkg/httputil"
	"github.com/Brodino96/TasteTracker/pkg/middleware"
)

// ReviewHandler handles HTTP requests for dish review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// SubmitReviewRequest is the body of POST /api/v1/dishes/{id}/reviews.
// Rating is left untyped so that strings and fractions reach the rating
// check and fail there as INVALID_RATING.
type SubmitReviewRequest struct {
	Rating any    `json:"rating"`
	Note   string `json:"note" validate:"max=2000"`
}

// ListReviews handles GET /api/v1/dishes/{id}/reviews.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	dishID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	list, err := h.service.ListReviews(r.Context(), dishID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: list})
}

// SubmitReview handles POST /api/v1/dishes/{id}/reviews.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	dishID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.SubmitReview(r.Context(), dishID.String(), middleware.UserIDFromContext(r.Context()), req.Rating, req.Note)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}
