package handlers

import (
	"log"
	"net/http"

	"github.com/aseyam/attendsystem/internal/scan"
)

// GalleryHandler handles gallery maintenance endpoints.
type GalleryHandler struct {
	scanner *scan.Scanner
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(scanner *scan.Scanner) *GalleryHandler {
	return &GalleryHandler{scanner: scanner}
}

// Reload re-reads the gallery source and atomically swaps the in-memory
// set. In-flight scans keep using the snapshot they already hold.
func (h *GalleryHandler) Reload(w http.ResponseWriter, r *http.Request) {
	count, err := h.scanner.ReloadGallery(r.Context())
	if err != nil {
		log.Printf("Gallery reload failed: %v", sanitizeForLog(err.Error()))
		respondError(w, http.StatusInternalServerError, "gallery reload failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"students": count,
	})
}
