package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Brodino96/TasteTracker/internal/service"
	"github.com/Brodino96/TasteTracker/internal/storage"
	"github.com/Brodino96/TasteTracker/pkg/health"
	"github.com/Brodino96/TasteTracker/pkg/middleware"
)

// catalogCacheSeconds is how long clients may cache restaurant and dish
// reads. Review lists are never cached.
const catalogCacheSeconds = 15

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	ServiceName string

	Restaurants *service.RestaurantService
	Dishes      *service.DishService
	Reviews     *service.ReviewService
	Images      *service.ImageService
	Users       *service.UserService

	// Media serves /media/* when the image storage keeps its own bytes.
	Media storage.Reader

	Health         *health.Handler
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	TokenValidator middleware.TokenValidator
	ReviewLimiter  *middleware.RateLimiter
	CORS           middleware.CORSConfig
	PprofCIDRs     []string
}

// NewRouter creates a chi router with all TasteTracker routes registered.
func NewRouter(cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	restaurants := NewRestaurantHandler(cfg.Restaurants, logger)
	dishes := NewDishHandler(cfg.Dishes, logger)
	reviews := NewReviewHandler(cfg.Reviews, logger)
	images := NewImageHandler(cfg.Images, cfg.Media, logger)

	if cfg.Media != nil {
		r.Get("/media/*", images.ServeImage)
	}

	// Writes require a verified token. The request logger is mounted again
	// so log lines carry the user ID.
	authed := func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenValidator))
		r.Use(middleware.RequestLogger(logger))
		if cfg.Users != nil {
			r.Use(RememberUser(cfg.Users))
		}
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogCacheSeconds))
			r.Get("/restaurants", restaurants.ListRestaurants)
			r.Get("/restaurants/{id}", restaurants.GetRestaurant)
			r.Get("/restaurants/{id}/dishes", dishes.ListDishes)
			r.Get("/dishes/{id}", dishes.GetDish)
		})
		r.Get("/dishes/{id}/reviews", reviews.ListReviews)

		r.Group(func(r chi.Router) {
			authed(r)

			r.Post("/restaurants", restaurants.CreateRestaurant)
			r.Put("/restaurants/{id}", restaurants.UpdateRestaurant)
			r.Post("/restaurants/{id}/dishes", dishes.CreateDish)
			r.Post("/uploads/images", images.UploadImage)

			r.Group(func(r chi.Router) {
				if cfg.ReviewLimiter != nil {
					r.Use(cfg.ReviewLimiter.Middleware)
				}
				r.Post("/dishes/{id}/reviews", reviews.SubmitReview)
			})
		})
	})

	return r
}
