package http

import (
	"net/http"
	"strings"

	"github.com/Brodino96/TasteTracker/internal/service"
	"github.com/Brodino96/TasteTracker/pkg/httputil"
	"github.com/Brodino96/TasteTracker/pkg/middleware"
)

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
// Excludes multipart/form-data requests (used for image uploads).
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") && !strings.HasPrefix(ct, "multipart/form-data") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json or multipart/form-data",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RememberUser records the profile of the authenticated caller so reviews
// can be shown with a display name. It must run after middleware.Auth.
func RememberUser(users *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c := middleware.ClaimsFromContext(r.Context()); c != nil {
				users.Remember(r.Context(), c.UserID, c.Email, c.DisplayName)
			}
			next.ServeHTTP(w, r)
		})
	}
}
