// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where the
// whole dependency graph is assembled:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces (not the concrete DB), handlers get services (not
// repositories). main.go stays a short script that builds a Config and
// calls New/Start.
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

	"petwell/internal/ai"
	"petwell/internal/auth"
	"petwell/internal/handler"
	"petwell/internal/mail"
	"petwell/internal/middleware"
	sqliteRepo "petwell/internal/repository/sqlite"
	"petwell/internal/service"
)

// Config holds what the server needs beyond its injected collaborators.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown to flush the WAL and release the file
// lock.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph.
//
// The AI assistant and the mail sender are passed in rather than built
// here: main.go decides, from configuration, whether they are real or the
// disabled/logging variants — the server wires whatever it is given.
func New(cfg Config, logger *slog.Logger, assistant *ai.Assistant, mailer mail.Sender) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(assistant, mailer); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS — it executes in the order added:
//  1. RequestID — assigns a unique ID to each request (for tracing)
//  2. RealIP — extracts the real client IP from proxy headers
//  3. Recoverer — catches panics and returns 500 instead of crashing
//  4. Logger — logs each request with timing info
//
// ROUTE GROUPS:
// Registration, login and the verification endpoints are public — a user
// who cannot log in yet must still be able to verify their email. Every
// domain route sits behind RequireAuth, which resolves the caller's
// identity once and makes it available to every handler via the request
// context.
func (s *Server) setupRoutes(assistant *ai.Assistant, mailer mail.Sender) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// The sqlite.DB satisfies every repository interface; services receive
	// it through the interface they need and nothing more.
	accountService := service.NewAccountService(s.db, passwords, tokens, mailer, s.logger)
	petService := service.NewPetService(s.db, assistant, s.logger)
	activityService := service.NewActivityService(s.db, s.db, assistant, s.logger)
	medicationService := service.NewMedicationService(s.db, s.logger)
	reminderService := service.NewReminderService(s.db, s.db, s.logger)
	chatService := service.NewChatService(s.db, assistant, s.logger)

	accountHandler := handler.NewAccountHandler(accountService, s.logger)
	petHandler := handler.NewPetHandler(petService, s.logger)
	activityHandler := handler.NewActivityHandler(activityService, s.logger)
	medicationHandler := handler.NewMedicationHandler(medicationService, s.logger)
	reminderHandler := handler.NewReminderHandler(reminderService, s.logger)
	chatHandler := handler.NewChatHandler(chatService, s.logger)

	healthHandler := handler.NewHealthHandler(s.db, s.logger)
	s.router.Get("/health", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Public: account entry points.
		r.Post("/users/register", accountHandler.HandleRegister)
		r.Post("/users/login", accountHandler.HandleLogin)
		r.Post("/verify-email", accountHandler.HandleVerifyEmail)
		r.Post("/resend-verification", accountHandler.HandleResendVerification)

		// Everything else requires a valid session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens, s.db))

			r.Get("/users/me", accountHandler.HandleMe)
			r.Put("/users/me", accountHandler.HandleUpdateMe)
			r.Post("/users/change-password", accountHandler.HandleChangePassword)

			r.Post("/pets", petHandler.HandleCreate)
			r.Get("/pets", petHandler.HandleList)
			r.Get("/pets/{id}", petHandler.HandleGet)
			r.Put("/pets/{id}", petHandler.HandleUpdate)
			r.Delete("/pets/{id}", petHandler.HandleDelete)
			r.Post("/pets/{id}/regenerate-tips", petHandler.HandleRegenerateTips)

			r.Post("/activities", activityHandler.HandleCreate)
			r.Get("/activities", activityHandler.HandleList)
			r.Get("/activities/insights", activityHandler.HandleInsights)
			r.Get("/activities/{id}", activityHandler.HandleGet)
			r.Put("/activities/{id}", activityHandler.HandleUpdate)
			r.Delete("/activities/{id}", activityHandler.HandleDelete)

			r.Post("/medications", medicationHandler.HandleCreate)
			r.Get("/medications", medicationHandler.HandleList)
			r.Get("/medications/{id}", medicationHandler.HandleGet)
			r.Put("/medications/{id}", medicationHandler.HandleUpdate)
			r.Delete("/medications/{id}", medicationHandler.HandleDelete)

			r.Post("/reminders", reminderHandler.HandleCreate)
			r.Get("/reminders", reminderHandler.HandleList)
			r.Get("/reminders/{id}", reminderHandler.HandleGet)
			r.Put("/reminders/{id}", reminderHandler.HandleUpdate)
			r.Delete("/reminders/{id}", reminderHandler.HandleDelete)

			r.Post("/chat/vet", chatHandler.HandleVetChat)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database connection (flushes WAL, releases file lock)
//
// The `defer s.db.Close()` ensures step 3 happens even if something
// panics on the way down.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // AI endpoints can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
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
