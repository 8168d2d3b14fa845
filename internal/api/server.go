// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ngocanhtran/bibliora/internal/catalog/book"
	"github.com/ngocanhtran/bibliora/internal/catalog/inventory"
	"github.com/ngocanhtran/bibliora/internal/catalog/media"
	"github.com/ngocanhtran/bibliora/internal/platform/config"
	"github.com/ngocanhtran/bibliora/internal/platform/constants"
	"github.com/ngocanhtran/bibliora/internal/platform/middleware"
	"github.com/ngocanhtran/bibliora/internal/platform/sec"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Book serves the public storefront catalog reads.
	Book *book.Handler

	// BookAdmin serves the seller-facing catalog mutations.
	BookAdmin *book.AdminHandler

	// Media handles asset uploads and the user's upload library.
	Media *media.Handler

	// Inventory serves warehouse stock reads and adjustments.
	Inventory *inventory.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Static Media
	// The local binary store is served directly in development; production
	// points MEDIA_BASE_URL at a CDN instead and this mount goes unused.
	if cfg.MediaRoot != "" {
		fileServer := http.FileServer(http.Dir(cfg.MediaRoot))
		r.Handle("/static/*", http.StripPrefix("/static", fileServer))
	}

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		// Storefront reads are anonymous.
		api.Route("/books", func(books chi.Router) {
			h.Book.RegisterRoutes(books)
		})

		// Catalog mutations require the seller role.
		api.Route("/admin/books", func(admin chi.Router) {
			admin.Use(middleware.RequireRole(sec.RoleSeller))
			h.BookAdmin.RegisterRoutes(admin)
		})

		// Uploads require any authenticated account.
		api.Route("/media", func(assets chi.Router) {
			assets.Use(middleware.RequireAuth)
			h.Media.RegisterRoutes(assets)
		})

		// Stock movements require the warehouse role.
		api.Route("/inventory", func(stock chi.Router) {
			stock.Use(middleware.RequireRole(sec.RoleWarehouse))
			h.Inventory.RegisterRoutes(stock)
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
