// Package web provides the HTTP API for browsing sources and flat files and
// running transfers.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JonMunkholm/flatbridge/internal/config"
	"github.com/JonMunkholm/flatbridge/internal/core"
	"github.com/JonMunkholm/flatbridge/internal/web/middleware"
)

// Server is the HTTP server.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	requests  *middleware.RateLimiter
	transfers *middleware.RateLimiter
}

// NewServer creates a Server with every route and middleware installed.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.requests = middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute, cfg.Rate.Burst)
		s.transfers = middleware.NewRateLimiter(cfg.Rate.TransferLimit, cfg.Rate.TransferLimit)
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(s.securityHeaders)

	if len(s.cfg.Security.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Security.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "HX-Request", "X-Request-Id"},
			ExposedHeaders: []string{"X-Job-ID", "Retry-After"},
			MaxAge:         300,
		}))
	}

	if s.requests != nil {
		s.router.Use(s.requests.Middleware(s.respondError))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(s.service, s.respondError))

			r.Get("/auth/me", s.handleMe)

			// Source database
			r.Post("/source/tables", s.handleSourceTables)
			r.Post("/source/columns", s.handleSourceColumns)
			r.Post("/source/preview", s.handleSourcePreview)

			// Flat files
			r.Post("/flatfile/tables", s.handleFileTables)
			r.Post("/flatfile/columns", s.handleFileColumns)
			r.Post("/flatfile/preview", s.handleFilePreview)

			// Transfers
			if s.transfers != nil {
				r.With(s.transfers.Middleware(s.respondError)).Post("/ingest", s.handleIngest)
			} else {
				r.Post("/ingest", s.handleIngest)
			}
			r.Get("/transfers/status", s.handleTransferStatus)

			// Job history
			r.Get("/jobs", s.handleListJobs)
			r.Get("/jobs/{id}", s.handleGetJob)

			// Saved configurations
			r.Get("/configs", s.handleListConfigs)
			r.Post("/configs", s.handleCreateConfig)
			r.Get("/configs/{id}", s.handleGetConfig)
			r.Put("/configs/{id}", s.handleUpdateConfig)
			r.Delete("/configs/{id}", s.handleDeleteConfig)
		})
	})
}

// Start listens on the configured address until Shutdown. Idle rate limiter
// entries are pruned until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	for _, rl := range []*middleware.RateLimiter{s.requests, s.transfers} {
		if rl != nil {
			rl.StartPruning(ctx, time.Minute, 10*time.Minute)
		}
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.cfg.Security.EnableCSP {
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
