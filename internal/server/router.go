// Package server assembles the HTTP router for the media upload API.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/mediaupload/service/internal/config"
	"github.com/mediaupload/service/internal/media"
	appMiddleware "github.com/mediaupload/service/internal/middleware"
	"github.com/mediaupload/service/internal/upload"

	_ "github.com/mediaupload/service/docs/swagger"
)

// NewRouter wires middleware and routes around the media handler.
func NewRouter(cfg *config.Config, log *zap.Logger, mediaHandler *media.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI, available at /swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(appMiddleware.NewRateLimiter(cfg.RateLimitPerMinute).Handler)
		}
		r.With(upload.Single(cfg.UploadField, cfg.UploadMaxMemory)).
			Post("/media/upload", mediaHandler.Upload)
	})

	return r
}
