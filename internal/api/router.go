// Package api exposes the presentation service over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"slide-generator/internal/common/logger"
	"slide-generator/internal/presentation"
)

type RouterConfig struct {
	CORSOrigins  []string
	MaxBodyBytes int64
	// TrustProxy takes the client address from X-Forwarded-For and X-Real-IP.
	// Enable only when a proxy that overwrites those headers fronts the API.
	TrustProxy bool
	// DefaultLimits apply to every route, CreateLimits to POST /presentations only.
	DefaultLimits []Limit
	CreateLimits  []Limit
}

// Router creates and configures the HTTP router
type Router struct {
	svc    *presentation.Service
	cfg    RouterConfig
	logger logger.Logger
}

func NewRouter(svc *presentation.Service, cfg RouterConfig, log logger.Logger) *Router {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return &Router{svc: svc, cfg: cfg, logger: log}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	if rt.cfg.TrustProxy {
		router.Use(chimiddleware.RealIP)
	}
	router.Use(chimiddleware.Recoverer)
	router.Use(Logger(rt.logger.Zap()))
	router.Use(Metrics)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition", "Retry-After"},
		MaxAge:         300,
	}))

	router.Use(RateLimit(rt.cfg.DefaultLimits, rt.logger))

	h := NewPresentationHandler(rt.svc, rt.logger, rt.cfg.MaxBodyBytes)

	router.Route("/api/v1/presentations", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.With(RateLimit(rt.cfg.CreateLimits, rt.logger)).Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/download", h.Download)
		r.Post("/{id}/configure", h.Configure)
		r.Get("/{id}/slides/{n}/preview", h.Preview)
	})

	return router
}
