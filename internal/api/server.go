// Package api provides the HTTP API server and handlers for the recommender.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/animerec/animerec-server/internal/ratelimit"
	"github.com/animerec/animerec-server/internal/service"
	"github.com/animerec/animerec-server/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	// Version is reported in the OpenAPI document.
	Version string

	// CORSOrigins lists allowed origins. Empty disables CORS headers.
	CORSOrigins []string

	// RateLimiter limits /api requests per client IP. Nil disables limiting.
	RateLimiter *ratelimit.KeyedRateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	recommender *service.Recommender
	store       *store.Store
	limiter     *ratelimit.KeyedRateLimiter
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(recommender *service.Recommender, st *store.Store, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		recommender: recommender,
		store:       st,
		limiter:     opts.RateLimiter,
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Anime Recommender API", opts.Version)
	humaConfig.Info.Description = "Similarity-graph recommendations over an anime catalog"
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.router.Handle("/metrics", promhttp.Handler())
	s.router.NotFound(s.handleNotFound)

	s.registerHealthRoutes()
	s.registerCatalogRoutes()
	s.registerRecommendationRoutes()
	s.registerSessionRoutes()
	s.registerAdminRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, e.g. for dumping the OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metricsMiddleware)

	if len(opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
}
