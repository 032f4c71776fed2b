// Package web provides the HTTP server and handlers for lead imports and the
// lead, campaign and activity API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/LeadTracker/internal/config"
	"github.com/JonMunkholm/LeadTracker/internal/core"
	mw "github.com/JonMunkholm/LeadTracker/internal/web/middleware"
)

// Server is the HTTP server for the lead tracker.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	limiters []*rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(mw.Metrics)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "HX-Request", "HX-Target"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newLimiter(s.cfg.Rate.RequestsPerMinute).middleware)
	}
}

func (s *Server) corsOrigins() []string {
	if len(s.cfg.Security.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.Security.CORSAllowedOrigins
}

func (s *Server) newLimiter(perMinute int) *rateLimiter {
	rl := newRateLimiter(perMinute, time.Minute)
	s.limiters = append(s.limiters, rl)
	return rl
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		// Imports run under IMPORT_TIMEOUT inside the service, so they skip
		// the request timeout and get their own rate limit.
		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(s.newLimiter(s.cfg.Rate.ImportLimit).middleware)
			}
			r.Post("/import/preview", s.handleImportPreview)
			r.Post("/import", s.handleImport)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

			r.Get("/catalog", s.handleCatalog)
			r.Get("/stats", s.handleStats)
			r.Get("/import/status", s.handleImportStatus)

			r.Get("/campaigns", s.handleListCampaigns)
			r.Post("/campaigns", s.handleCreateCampaign)
			r.Get("/campaigns/{id}", s.handleGetCampaign)
			r.Get("/campaigns/{id}/stats", s.handleCampaignStats)

			r.Get("/leads", s.handleListLeads)
			r.Get("/leads/{id}", s.handleGetLead)
			r.Patch("/leads/{id}/status", s.handleUpdateLeadStatus)
			r.Delete("/leads/{id}", s.handleDeleteLead)
			r.Get("/leads/{id}/activities", s.handleListActivities)
			r.Post("/leads/{id}/activities", s.handleAddActivity)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
