package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Brodino96/TasteTracker/internal/service"
	"github.com/Brodino96/TasteTracker/internal/storage"
	"github.com/Brodino96/TasteTracker/pkg/httputil"
)

// ImageHandler accepts image uploads and serves stored images back.
type ImageHandler struct {
	service *service.ImageService
	reader  storage.Reader
	logger  *slog.Logger
}

// NewImageHandler creates a new image HTTP handler. reader may be nil when
// the storage backend serves its own URLs.
func NewImageHandler(svc *service.ImageService, reader storage.Reader, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		service: svc,
		reader:  reader,
		logger:  logger,
	}
}

// UploadImage handles POST /api/v1/uploads/images (multipart/form-data with
// a "file" part and an "owner" field of "restaurants" or "dishes").
func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		writeBadForm(w, "expected multipart/form-data")
		return
	}
	if !parseMultipart(w, r) {
		return
	}

	img, file, err := formImage(r, "file")
	if err != nil {
		writeBadForm(w, "invalid file: "+err.Error())
		return
	}
	if img == nil {
		writeBadForm(w, "file is required")
		return
	}
	defer file.Close()

	stored, err := h.service.Upload(r.Context(), r.FormValue("owner"), img)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: stored})
}

// ServeImage handles GET /media/*.
func (h *ImageHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" || strings.Contains(key, "..") {
		http.NotFound(w, r)
		return
	}

	obj, err := h.reader.Open(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Data)
}
