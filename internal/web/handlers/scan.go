package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/aseyam/attendsystem/internal/embedding"
	"github.com/aseyam/attendsystem/internal/gallery"
	"github.com/aseyam/attendsystem/internal/scan"
)

// maxProbeImageBytes caps uploaded probe images at 10 MB.
const maxProbeImageBytes = 10 << 20

// ScanHandler handles the kiosk scan endpoint.
type ScanHandler struct {
	scanner *scan.Scanner
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scanner *scan.Scanner) *ScanHandler {
	return &ScanHandler{scanner: scanner}
}

// scanJSONRequest is the JSON form of a scan request, used when the caller
// already holds a probe embedding instead of a raw image.
type scanJSONRequest struct {
	RoomID    string    `json:"room_id"`
	Embedding []float32 `json:"embedding"`
}

// inputError is a request validation failure mapped to HTTP 400.
type inputError string

func (e inputError) Error() string { return string(e) }

// Scan runs one scan-and-mark operation. Accepts either a multipart form
// with an "image" file and a "room_id" field, or a JSON body with an
// "embedding" array and "room_id".
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")

	var result scan.Result
	var err error

	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		result, err = h.scanImage(r)
	case strings.HasPrefix(contentType, "application/json"):
		result, err = h.scanEmbedding(r)
	default:
		respondError(w, http.StatusUnsupportedMediaType, "expected multipart/form-data or application/json")
		return
	}
	if err != nil {
		respondScanError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *ScanHandler) scanImage(r *http.Request) (scan.Result, error) {
	if err := r.ParseMultipartForm(maxProbeImageBytes); err != nil {
		return scan.Result{}, inputError(errInvalidRequestBody)
	}

	roomID := r.FormValue("room_id")
	if roomID == "" {
		return scan.Result{}, inputError("room_id is required")
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return scan.Result{}, inputError("image file is required")
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxProbeImageBytes))
	if err != nil {
		return scan.Result{}, inputError("failed to read image")
	}

	return h.scanner.ScanImage(r.Context(), imageData, roomID)
}

func (h *ScanHandler) scanEmbedding(r *http.Request) (scan.Result, error) {
	var req scanJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return scan.Result{}, inputError(errInvalidRequestBody)
	}
	if req.RoomID == "" {
		return scan.Result{}, inputError("room_id is required")
	}
	if len(req.Embedding) == 0 {
		return scan.Result{}, inputError("embedding is required")
	}
	return h.scanner.ScanEmbedding(r.Context(), req.Embedding, req.RoomID)
}

// respondScanError maps scan failures onto HTTP statuses: malformed
// requests and bad probes are the caller's fault, a never-loaded gallery
// means the service is not ready, anything else is a server error.
func respondScanError(w http.ResponseWriter, err error) {
	var input inputError
	switch {
	case errors.As(err, &input):
		respondError(w, http.StatusBadRequest, input.Error())
	case errors.Is(err, gallery.ErrDimensionMismatch), errors.Is(err, embedding.ErrZeroVector):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gallery.ErrNotLoaded):
		respondError(w, http.StatusServiceUnavailable, "gallery not loaded")
	default:
		log.Printf("Scan failed: %v", sanitizeForLog(err.Error()))
		respondError(w, http.StatusInternalServerError, "scan failed")
	}
}
