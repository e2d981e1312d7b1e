// Package server is the composition root: it opens the database, builds the
// stores, services and handlers, and mounts them on the router.
//
// ROUTE GUARDS:
// Three chi groups carry the access rules:
//
//	public  → OptionalAuth  (anonymous allowed; signed-in viewers get their own flags)
//	private → RequireAuth   (401 + redirect "/login")
//	admin   → RequireAuth + RequireAdmin (403 + redirect "/admin/login")
//
// Keeping the guards on groups rather than inside handlers means a route
// cannot be exposed by forgetting a check in its handler.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/civic-sync/internal/auth"
	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/config"
	"github.com/sakif/civic-sync/internal/geocode"
	"github.com/sakif/civic-sync/internal/handler"
	"github.com/sakif/civic-sync/internal/middleware"
	sqliteRepo "github.com/sakif/civic-sync/internal/repository/sqlite"
	"github.com/sakif/civic-sync/internal/seed"
	"github.com/sakif/civic-sync/internal/service"
	"github.com/sakif/civic-sync/internal/store"
)

// Server owns the router and the database connection.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	clock  clock.Clock
	db     *sqliteRepo.DB
}

// New wires the whole application from cfg. The returned Server must be
// closed (Start does it on shutdown).
func New(ctx context.Context, cfg *config.Config, c clock.Clock, logger *slog.Logger) (*Server, error) {
	// === DATABASE ===
	if dir := filepath.Dir(cfg.DBPath); cfg.DBPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		clock:  c,
		db:     db,
	}

	if err := s.setupRoutes(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes builds every layer and mounts it.
//
// ROUTE STRUCTURE:
//
//	GET    /health
//	POST   /auth/login | /auth/admin/login | /auth/register | /auth/logout
//	GET    /api/me                                   (auth)
//	GET    /api/issues, /api/issues/{id}             (public)
//	GET    /api/issues/filters, PATCH same           (auth)
//	POST   /api/issues, /api/issues/{id}/vote, /api/issues/{id}/comments (auth)
//	PATCH  /api/issues/{id}                          (admin)
//	GET    /api/events, /api/events/{id}             (public)
//	POST   /api/events, POST|DELETE /api/events/{id}/registration (auth)
//	PATCH  /api/events/{id}                          (admin)
//	GET    /api/tickets, /api/tickets/{id}; POST /api/tickets, /api/tickets/{id}/responses (auth)
//	PATCH  /api/tickets/{id}, POST /api/tickets/{id}/close (admin)
//	GET    /api/chat/rooms, /api/chat/rooms/{room}/messages (public)
//	POST   /api/chat/rooms/{room}/messages           (auth)
//	GET    /api/geocode/reverse                      (public)
//	GET    /api/admin/stats, /api/admin/report       (admin)
//
// MIDDLEWARE ORDER:
// RequestID, RealIP, Logger, Recoverer, then the rate limiter on /api and
// /auth. RealIP must come before the limiter so clients behind the proxy
// get separate buckets.
func (s *Server) setupRoutes(ctx context.Context) error {
	cfg := s.config

	// === STORES ===
	issueSeed, eventSeed, ticketSeed := seed.Issues(), seed.Events(), seed.Tickets()
	if !cfg.SeedData {
		issueSeed, eventSeed, ticketSeed = nil, nil, nil
	}

	issueStore := store.NewIssueStore(s.clock, issueSeed)
	eventStore := store.NewEventStore(s.clock, eventSeed)
	ticketStore := store.NewTicketStore(s.clock, s.db)
	if err := ticketStore.Load(ctx, ticketSeed); err != nil {
		return fmt.Errorf("loading tickets: %w", err)
	}
	chatStore := store.NewChatStore(s.clock, cfg.Chat.History)
	sessions := store.NewAuthStore(s.clock)

	// === AUTH ===
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	authService, err := service.NewAuthService(
		service.AuthMode(cfg.Auth.Mode), cfg.Auth.AdminCode, sessions, s.db, tokens, auth.NewPasswordService(), s.logger,
	)
	if err != nil {
		return err
	}
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}

	// === SERVICES → HANDLERS ===
	// Handlers only see services; services only see stores and repositories.
	issueService := service.NewIssueService(issueStore, s.clock, s.logger)
	eventService := service.NewEventService(eventStore, s.clock, s.logger)
	ticketService := service.NewTicketService(ticketStore, s.logger)
	reportService := service.NewReportService(issueStore, eventStore, ticketStore, s.clock)
	chatService := service.NewChatService(chatStore, s.logger)
	geocoder := geocode.NewSimulated(geocode.Config{
		Delay:         cfg.Geocode.Delay,
		Timeout:       cfg.Geocode.Timeout,
		MaxConcurrent: cfg.Geocode.MaxConcurrent,
	}, s.clock, nil, s.logger)

	authHandler := handler.NewAuthHandler(authService, tokens, s.logger)
	issueHandler := handler.NewIssueHandler(issueService, s.logger)
	eventHandler := handler.NewEventHandler(eventService, s.logger)
	ticketHandler := handler.NewTicketHandler(ticketService, s.logger)
	chatHandler := handler.NewChatHandler(chatService, s.logger)
	geocodeHandler := handler.NewGeocodeHandler(geocoder, s.logger)
	adminHandler := handler.NewAdminHandler(reportService, s.logger)

	// === GLOBAL MIDDLEWARE ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	throttle := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, s.clock, s.logger)
		throttle = limiter.Middleware
	}

	requireAuth := auth.RequireAuth(tokens, sessions)
	optionalAuth := auth.OptionalAuth(tokens, sessions)

	// === AUTH ROUTES ===
	s.router.Route("/auth", func(r chi.Router) {
		r.Use(throttle)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/admin/login", authHandler.HandleAdminLogin)
		r.Post("/register", authHandler.HandleRegister)
		r.With(optionalAuth).Post("/logout", authHandler.HandleLogout)
	})

	// === API ROUTES ===
	s.router.Route("/api", func(r chi.Router) {
		r.Use(throttle)

		// Public: anyone may read, signed-in viewers see their own votes
		// and registrations.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/issues", issueHandler.HandleList)
			r.Get("/events", eventHandler.HandleList)
			r.Get("/events/{id}", eventHandler.HandleGet)
			r.Get("/chat/rooms", chatHandler.HandleRooms)
			r.Get("/chat/rooms/{room}/messages", chatHandler.HandleMessages)
			r.Get("/geocode/reverse", geocodeHandler.HandleReverse)
		})

		// Private: a session is required.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)

			r.Get("/issues/filters", issueHandler.HandleGetFilters)
			r.Patch("/issues/filters", issueHandler.HandleSetFilters)
			r.Post("/issues", issueHandler.HandleCreate)
			r.Post("/issues/{id}/vote", issueHandler.HandleVote)
			r.Post("/issues/{id}/comments", issueHandler.HandleComment)

			r.Post("/events", eventHandler.HandleCreate)
			r.Post("/events/{id}/registration", eventHandler.HandleRegister)
			r.Delete("/events/{id}/registration", eventHandler.HandleUnregister)

			r.Get("/tickets", ticketHandler.HandleList)
			r.Get("/tickets/{id}", ticketHandler.HandleGet)
			r.Post("/tickets", ticketHandler.HandleCreate)
			r.Post("/tickets/{id}/responses", ticketHandler.HandleRespond)

			r.Post("/chat/rooms/{room}/messages", chatHandler.HandlePost)

			// Admin: session plus the admin role.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Patch("/issues/{id}", issueHandler.HandleUpdate)
				r.Patch("/events/{id}", eventHandler.HandleUpdate)
				r.Patch("/tickets/{id}", ticketHandler.HandleUpdate)
				r.Post("/tickets/{id}/close", ticketHandler.HandleClose)
				r.Get("/admin/stats", adminHandler.HandleStats)
				r.Get("/admin/report", adminHandler.HandleReport)
			})
		})

		// chi tries the static /issues/filters before this pattern.
		r.With(optionalAuth).Get("/issues/{id}", issueHandler.HandleGet)
	})

	return nil
}

// Start serves HTTP until SIGINT or SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.String("authMode", s.config.Auth.Mode),
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
