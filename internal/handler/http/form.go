package http

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/pkg/httputil"
)

// formOverhead is the room left for text fields next to the image part.
const formOverhead = 1 << 20

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// parseMultipart limits and parses a multipart body. On failure it writes
// the error response and returns false.
func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxImageSize+formOverhead)

	if err := r.ParseMultipartForm(domain.MaxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "IMAGE_TOO_LARGE", Message: domain.ErrImageTooLarge.Error()},
			})
			return false
		}
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "failed to parse multipart form: " + err.Error()},
		})
		return false
	}
	return true
}

// formImage returns the file part named field as an upload, or nil when the
// form has no such part. The caller closes the returned file.
func formImage(r *http.Request, field string) (*domain.ImageUpload, multipart.File, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Data:        file,
	}, file, nil
}

// formValue returns a pointer to the field's value, or nil when the form
// did not send it at all.
func formValue(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func writeBadForm(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: message},
	})
}
