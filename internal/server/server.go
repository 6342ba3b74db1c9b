// Package server sets up the HTTP servers, routers and route definitions.
//
// This package is the composition root: all dependencies are wired here,
// rather than scattered across the codebase.
//
//	config → sqlite.DB (repository.Store)
//	       → access.StaticPolicy
//	       → ShoppingListService(store, policy)
//	       → ShoppingListHandler(service)
//	       → chi router (+ middleware) → http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/shopping-list/internal/access"
	"github.com/sakif/shopping-list/internal/auth"
	"github.com/sakif/shopping-list/internal/config"
	"github.com/sakif/shopping-list/internal/handler"
	"github.com/sakif/shopping-list/internal/middleware"
	"github.com/sakif/shopping-list/internal/repository"
	sqliteRepo "github.com/sakif/shopping-list/internal/repository/sqlite"
	"github.com/sakif/shopping-list/internal/service"
)

const metricsNamespace = "shoplist"

// Server is the primary REST backend and all its dependencies.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	store  repository.Store
	closer func() error
}

// New opens the configured SQLite database and wires the backend over it.
// The server owns the database and closes it when Start returns.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := OpenDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	s, err := NewWithStore(cfg, logger, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.closer = db.Close
	return s, nil
}

// NewWithStore wires the backend over an already opened store.
func NewWithStore(cfg *config.Config, logger *slog.Logger, store repository.Store) (*Server, error) {
	roles, err := access.ParseRoles(cfg.Access.Roles)
	if err != nil {
		return nil, fmt.Errorf("parsing access roles: %w", err)
	}
	defaultRole, err := access.ParseRole(cfg.Access.DefaultRole)
	if err != nil {
		return nil, fmt.Errorf("parsing default role: %w", err)
	}

	var tokens *auth.TokenService
	if cfg.Auth.JWTSecret != "" {
		tokens, err = auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("creating token service: %w", err)
		}
	} else {
		logger.Warn("JWT_SECRET not set, bearer tokens are disabled; identity comes from the user-id header only")
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
	s.setupRoutes(access.NewStaticPolicy(roles, defaultRole), tokens)
	return s, nil
}

// OpenDatabase opens (and migrates) the SQLite file at path, creating its
// directory if needed.
func OpenDatabase(path string) (*sqliteRepo.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                                       → liveness + store ping
// GET    /metrics                                       → prometheus exposition
// POST   /shopping-list/create                          → create list
// GET    /shopping-list/list                            → all lists
// GET    /shopping-list/get/{id}                        → one list with items
// PATCH  /shopping-list/{id}/update                     → rename / set members
// POST   /shopping-list/{id}/leave                      → member leaves
// DELETE /shopping-list/{id}/delete                     → delete list + items
// POST   /shopping-list/{id}/item/add                   → add item
// PATCH  /shopping-list/{id}/item/{itemId}/complete     → set done flag
// PATCH  /shopping-list/{id}/item/{itemId}/update       → rename item
// DELETE /shopping-list/{id}/item/{itemId}/delete       → delete item
//
// MIDDLEWARE ORDER MATTERS: request id first so every log line carries it,
// recoverer before the handlers, identity last so only API routes see it.
func (s *Server) setupRoutes(policy access.Policy, tokens *auth.TokenService) {
	metrics := middleware.NewMetrics(metricsNamespace)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(metrics.Middleware)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	lists := service.NewShoppingListService(s.store, policy, s.logger)
	listHandler := handler.NewShoppingListHandler(lists, s.logger)

	s.router.Route("/shopping-list", func(r chi.Router) {
		r.Use(auth.Identify(tokens))
		listHandler.Routes(r)
	})
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.logger.Error("health check failed", slog.String("error", err.Error()))
			handler.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Start serves the REST backend until ctx is cancelled, then shuts down
// gracefully and closes the database.
func (s *Server) Start(ctx context.Context) error {
	if s.closer != nil {
		defer func() {
			if err := s.closer(); err != nil {
				s.logger.Warn("closing database failed", slog.String("error", err.Error()))
			}
		}()
	}

	srv := &http.Server{
		Addr:         s.cfg.HTTP.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
		IdleTimeout:  s.cfg.HTTP.IdleTimeout,
	}
	s.logger.Info("server starting",
		slog.String("addr", srv.Addr),
		slog.String("database", s.cfg.Database.Path),
	)
	return Serve(ctx, srv, s.cfg.GracefulShutdownTimeout, s.logger)
}

// Serve runs srv until ctx is cancelled or the listener fails. On
// cancellation in-flight requests get up to shutdownTimeout to complete.
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		logger.Info("shutdown signal received", slog.String("addr", srv.Addr))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server stopped gracefully", slog.String("addr", srv.Addr))
		return nil
	}
}
