// Package server wires the application together: database, services,
// handlers, routes, and the HTTP server lifecycle.
//
// This is the composition root — every dependency is constructed here and
// injected downward. Each layer receives only what it needs: services get
// repository interfaces, handlers get services, and nothing below the
// handlers ever sees an *http.Request.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/recipe-api/internal/auth"
	"github.com/sakif/recipe-api/internal/config"
	"github.com/sakif/recipe-api/internal/handler"
	"github.com/sakif/recipe-api/internal/middleware"
	sqliteRepo "github.com/sakif/recipe-api/internal/repository/sqlite"
	"github.com/sakif/recipe-api/internal/service"
)

// Server owns the router, the database connection, and the config.
// The database is closed during graceful shutdown in Start.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the store (which is also the readiness gate —
// New fails rather than serving against a broken database), builds the
// service graph, and registers routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// ROUTE STRUCTURE:
//
//	POST   /api/user/create        → register account
//	POST   /api/user/token         → obtain bearer token
//	GET    /api/user/me            → own profile          (auth)
//	PUT    /api/user/me            → full profile update  (auth)
//	PATCH  /api/user/me            → partial update       (auth)
//	GET    /api/recipes            → list own recipes     (auth)
//	POST   /api/recipes            → create recipe        (auth)
//	GET    /api/recipes/{id}       → recipe detail        (auth)
//	PUT    /api/recipes/{id}       → full update          (auth)
//	PATCH  /api/recipes/{id}       → partial update       (auth)
//	DELETE /api/recipes/{id}       → delete recipe        (auth)
//
// Any other verb on a registered path (e.g. POST /api/user/me) falls into
// the custom MethodNotAllowed handler and returns the JSON 405 shape.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// One *DB, three stores: each service sees only the repository
	// interface it depends on.
	passwords := auth.NewPasswordService(s.cfg.Auth.BcryptCost)
	tokens := auth.NewTokenService(s.db.Tokens)
	userService := service.NewUserService(s.db.Users, passwords, s.logger)
	recipeService := service.NewRecipeService(s.db.Recipes, s.logger)

	userHandler := handler.NewUserHandler(userService, tokens, s.logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, s.logger)

	s.router.MethodNotAllowed(handler.MethodNotAllowedHandler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/user/create", userHandler.HandleCreate)
		r.Post("/user/token", userHandler.HandleToken)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/user/me", userHandler.HandleMe)
			r.Put("/user/me", userHandler.HandleUpdateMe)
			r.Patch("/user/me", userHandler.HandleUpdateMe)

			r.Get("/recipes", recipeHandler.HandleList)
			r.Post("/recipes", recipeHandler.HandleCreate)
			r.Get("/recipes/{id}", recipeHandler.HandleGetByID)
			r.Put("/recipes/{id}", recipeHandler.HandleUpdate)
			r.Patch("/recipes/{id}", recipeHandler.HandleUpdate)
			r.Delete("/recipes/{id}", recipeHandler.HandleDelete)
		})
	})
}

// Router exposes the handler tree. Used by tests to drive the full stack
// through httptest without opening a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's resources without serving. Callers that use
// Start don't need this — Start closes the database itself.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s
// budget), close the database (flushes WAL, releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Server.Port),
			slog.String("database", s.cfg.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
