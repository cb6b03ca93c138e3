// Package api provides the HTTP API server and handlers for the bookshelf catalog.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
	"github.com/bookshelfapp/bookshelf-server/internal/media/covers"
	"github.com/bookshelfapp/bookshelf-server/internal/ratelimit"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// Options holds the HTTP-facing settings of the server.
type Options struct {
	AllowedOrigins []string
	DefaultCover   string // reported as cover_url for books without a cover
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Gateway
	services *Services
	covers   *covers.Storage
	limiter  *ratelimit.KeyedRateLimiter
	options  Options
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// limiter may be nil to disable write rate limiting.
func NewServer(store store.Gateway, services *Services, coverStorage *covers.Storage, limiter *ratelimit.KeyedRateLimiter, options Options, logger *slog.Logger) *Server {
	s := &Server{
		store:    store,
		services: services,
		covers:   coverStorage,
		limiter:  limiter,
		options:  options,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Bookshelf API", "1.0.0")
	humaConfig.Info.Description = "Catalog of books, user accounts, personal libraries and reviews."
	// Bodies go out as envelopes, so the $schema link rewrite is not wanted.
	humaConfig.CreateHooks = nil
	humaConfig.Transformers = []huma.Transformer{EnvelopeTransformer}

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(corsHandler(s.options.AllowedOrigins))
	s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerCoverRoutes()
	s.registerUserRoutes()
	s.registerLibraryRoutes()

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route "+r.URL.Path+" not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, "method "+r.Method+" not allowed", s.logger)
	})
}
