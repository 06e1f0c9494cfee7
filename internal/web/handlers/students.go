package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/aseyam/attendsystem/internal/database"
	"github.com/aseyam/attendsystem/internal/embedding"
	"github.com/aseyam/attendsystem/internal/gallery"
)

// EnrollExtractor extracts a single-face embedding for registration.
type EnrollExtractor interface {
	ExtractSingle(ctx context.Context, imageData []byte) ([]float32, error)
}

// StudentStore is the storage surface the students endpoints need.
type StudentStore interface {
	database.GallerySource
	database.StudentWriter
}

// StudentsHandler handles enrollment and listing endpoints.
type StudentsHandler struct {
	store     StudentStore
	extractor EnrollExtractor
	dim       int
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(store StudentStore, extractor EnrollExtractor, dim int) *StudentsHandler {
	return &StudentsHandler{store: store, extractor: extractor, dim: dim}
}

// studentView is the listing shape; encodings are never exposed.
type studentView struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// List returns all enrolled students.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListStudents(r.Context())
	if err != nil {
		log.Printf("List students failed: %v", sanitizeForLog(err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to list students")
		return
	}

	students := make([]studentView, 0, len(entries))
	for _, e := range entries {
		students = append(students, studentView{ID: e.StudentID, DisplayName: e.DisplayName})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"students": students,
		"count":    len(students),
	})
}

// Enroll registers a student from a multipart form with "id", "name" and a
// single-face "image". The stored encoding is unit-normalized and the
// display name canonicalized, so the matching core never sees raw input.
func (h *StudentsHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProbeImageBytes); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	studentID := r.FormValue("id")
	name := gallery.NormalizeDisplayName(r.FormValue("name"))
	if studentID == "" || name == "" {
		respondError(w, http.StatusBadRequest, "id and name are required")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxProbeImageBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	vec, err := h.extractor.ExtractSingle(r.Context(), imageData)
	if err != nil {
		if errors.Is(err, embedding.ErrNoFaceDetected) {
			respondError(w, http.StatusUnprocessableEntity, "no face detected in the image")
			return
		}
		log.Printf("Enroll extraction failed for %s: %v", sanitizeForLog(studentID), sanitizeForLog(err.Error()))
		respondError(w, http.StatusBadGateway, "face extraction failed")
		return
	}

	if len(vec) != h.dim {
		respondError(w, http.StatusBadGateway, "extractor returned unexpected embedding dimension")
		return
	}
	encoding, err := embedding.Normalize(vec)
	if err != nil {
		respondError(w, http.StatusBadGateway, "extractor returned degenerate embedding")
		return
	}

	err = h.store.UpsertStudent(r.Context(), database.Student{
		ID:          studentID,
		DisplayName: name,
		Encoding:    encoding,
	})
	if err != nil {
		log.Printf("Enroll failed for %s: %v", sanitizeForLog(studentID), sanitizeForLog(err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to save student")
		return
	}

	respondJSON(w, http.StatusCreated, studentView{ID: studentID, DisplayName: name})
}
