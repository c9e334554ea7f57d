package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/GovarthanahariN/CartProjectBE/internal/config"
	"github.com/GovarthanahariN/CartProjectBE/internal/http/handlers"
	"github.com/GovarthanahariN/CartProjectBE/internal/http/respond"
	"github.com/GovarthanahariN/CartProjectBE/internal/metrics"
	"github.com/GovarthanahariN/CartProjectBE/internal/middleware"
)

// Deps are the services the routes delegate to.
type Deps struct {
	Auth    handlers.AuthService
	Carts   handlers.CartService
	Store   handlers.Pinger
	Metrics *metrics.Metrics
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// NewRouter builds the full handler tree. deps.Metrics may be nil, in which
// case /metrics is not mounted.
func NewRouter(cfg config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	// Metrics sits outside Recover so recovered panics are counted as 500s.
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(cfg.CORSOrigins, cfg.CORSMethods))

	var events handlers.EventRecorder
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
		events = deps.Metrics
	}

	handlers.NewHealthHandler(time.Now(), deps.Store).Register(r)
	handlers.NewAuthHandler(deps.Auth, events).Register(r)
	handlers.NewCartHandler(deps.Carts).Register(r)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
