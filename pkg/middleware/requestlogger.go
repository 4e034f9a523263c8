package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Brodino96/TasteTracker/pkg/logger"
)

// RequestLogger stores a logger enriched with the correlation, user and trace
// IDs in the request context, for handlers to fetch with logger.FromContext.
// Mount it after RequestLogging and Tracing; routes behind Auth should mount
// it again so the user ID is picked up.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
