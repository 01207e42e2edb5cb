package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/web/handlers"
	"github.com/kozaktomas/face-attendance/internal/web/middleware"
)

// Deps bundles the storage and matching dependencies of the web server.
type Deps struct {
	Professors database.ProfessorStore
	Classes    database.ClassStore
	Roster     database.RosterStore
	Events     database.EventStore
	Probes     database.ProbeLog

	Gallery  gallery.Store
	Refs     handlers.RefLoader
	Verifier handlers.Verifier
	Matcher  handlers.GroupMatcher
	Embedder handlers.Embedder

	SessionRepo middleware.SessionRepository
}

// Server represents the web server
type Server struct {
	config         *config.Config
	router         *chi.Mux
	httpServer     *http.Server
	sessionManager *middleware.SessionManager
	deps           Deps
	log            zerolog.Logger
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, port int, host string, sessionSecret string, deps Deps, log zerolog.Logger) *Server {
	r := chi.NewRouter()

	sessionManager := middleware.NewSessionManager(sessionSecret)
	if deps.SessionRepo != nil {
		sessionManager.SetRepository(deps.SessionRepo)
	}

	s := &Server{
		config:         cfg,
		router:         r,
		sessionManager: sessionManager,
		deps:           deps,
		log:            log,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(2 * time.Minute))
	r.Use(middleware.CORS())

	// Set up routes
	s.setupRoutes(sessionManager)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // Class photo scans embed many faces
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting web server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down web server")

	// Stop the session cleanup goroutine
	if s.sessionManager != nil {
		s.sessionManager.Stop()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
