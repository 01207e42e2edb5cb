package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/web/handlers"
	"github.com/kozaktomas/face-attendance/internal/web/middleware"
)

func (s *Server) setupRoutes(sessionManager *middleware.SessionManager) {
	// Create handlers
	authHandler := handlers.NewAuthHandler(s.deps.Professors, sessionManager)
	classesHandler := handlers.NewClassesHandler(s.deps.Classes, s.deps.Gallery, s.config.Gallery.StudentDir, s.log)
	studentsHandler := handlers.NewStudentsHandler(s.deps.Classes, s.deps.Roster, s.deps.Gallery, s.log)
	verifyHandler := handlers.NewVerifyHandler(s.deps.Classes, s.deps.Roster, s.deps.Events, s.deps.Probes, s.deps.Verifier, s.log)
	classPhotoHandler := handlers.NewClassPhotoHandler(
		s.deps.Classes, s.deps.Roster, s.deps.Events,
		s.deps.Refs, s.deps.Matcher, s.config.Matching.MaxGroupRefs, s.log,
	)
	attendanceHandler := handlers.NewAttendanceHandler(s.deps.Classes, s.deps.Roster, s.deps.Events, s.log)
	auditHandler := handlers.NewAuditHandler(s.deps.Embedder, s.deps.Probes, s.log)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/status", authHandler.Status)

		// Selfie check-in runs without a professor session; students hit
		// this from their own devices.
		r.Post("/verify", verifyHandler.Verify)

		// All other routes require an authenticated professor
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessionManager))

			// Classes
			r.Get("/classes", classesHandler.List)
			r.Post("/classes", classesHandler.Create)

			// Roster
			r.Get("/classes/{classID}/students", studentsHandler.List)
			r.Post("/classes/{classID}/students", studentsHandler.Create)
			r.Post("/classes/{classID}/students/images", studentsHandler.AddImage)

			// Class photo batch scan
			r.Post("/classes/{classID}/photo", classPhotoHandler.Scan)

			// Attendance
			r.Get("/classes/{classID}/attendance", attendanceHandler.View)
			r.Post("/classes/{classID}/attendance/toggle", attendanceHandler.Toggle)
			r.Get("/classes/{classID}/attendance/export", attendanceHandler.ExportCSV)

			// Audit
			r.Post("/audit/similar", auditHandler.FindSimilar)
		})
	})
}
