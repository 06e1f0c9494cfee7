package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/aseyam/attendsystem/internal/scan"
	"github.com/aseyam/attendsystem/internal/web/handlers"
)

func (s *Server) setupRoutes(scanner *scan.Scanner, students handlers.StudentStore, extractor handlers.EnrollExtractor, dim int) {
	scanHandler := handlers.NewScanHandler(scanner)
	galleryHandler := handlers.NewGalleryHandler(scanner)
	studentsHandler := handlers.NewStudentsHandler(students, extractor, dim)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		// Kiosk scan flow
		r.Post("/scan", scanHandler.Scan)

		// Gallery maintenance
		r.Post("/gallery/reload", galleryHandler.Reload)

		// Students
		r.Get("/students", studentsHandler.List)
		r.Post("/students", studentsHandler.Enroll)
	})
}
