package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"stockadvisor/internal/api/health"
	"stockadvisor/internal/api/middleware"
	"stockadvisor/internal/metrics"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Port        int
	CORSOrigins []string
	// WriteTimeout must cover a full advisor run.
	WriteTimeout time.Duration
}

// Dependencies are the services the routes delegate to.
type Dependencies struct {
	Advisor    Advisor
	Accounts   Accounts
	Watchlists Watchlists
	Markets    Markets
	Health     *health.Handler
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewRouter builds the API routes.
func NewRouter(cfg ServerConfig, deps Dependencies, log *logger.Logger) http.Handler {
	h := &handlers{
		advisor:    deps.Advisor,
		accounts:   deps.Accounts,
		watchlists: deps.Watchlists,
		markets:    deps.Markets,
		log:        log.With("component", "api"),
	}
	logging := middleware.NewLoggingMiddleware(log)
	authMW := middleware.NewAuthMiddleware(deps.Accounts, log)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(logging.Handler)
	r.Use(logging.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", h.root)
	if deps.Health != nil {
		r.Get("/health", deps.Health.HandleHealth)
		r.Get("/live", deps.Health.HandleLiveness)
	}
	r.Handle("/metrics", metrics.Handler())

	r.Post("/analyze", h.analyze)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/token", h.token)
	})

	r.Route("/market", func(r chi.Router) {
		r.Get("/indexes", h.indexes)
		r.Get("/chart/{symbol}", h.chart)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMW.Handler)
		r.Post("/agent/chat", h.chat)
		r.Get("/watchlist", h.listWatchlist)
		r.Post("/watchlist", h.addToWatchlist)
	})

	return r
}

// NewServer creates and configures HTTP server with all routes
func NewServer(cfg ServerConfig, deps Dependencies, log *logger.Logger) *Server {
	port := 8000
	if cfg.Port > 0 {
		port = cfg.Port
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Minute
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      NewRouter(cfg, deps, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

// Start begins listening for HTTP requests
// Blocks until server is stopped or encounters an error
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
// Waits for active connections to complete within timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}
