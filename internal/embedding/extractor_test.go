package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeExtractorServer serves canned face detection responses.
func fakeExtractorServer(t *testing.T, faces []Face) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/embed/face", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"faces_count": len(faces),
			"faces":       faces,
			"model":       "buffalo_l",
		})
	})
	return httptest.NewServer(mux)
}

func TestExtractProbePicksLargestFace(t *testing.T) {
	faces := []Face{
		{FaceIndex: 0, Embedding: []float32{1, 0}, BBox: []float64{0, 0, 10, 10}, DetScore: 0.9},
		{FaceIndex: 1, Embedding: []float32{0, 1}, BBox: []float64{0, 0, 100, 100}, DetScore: 0.8},
		{FaceIndex: 2, Embedding: []float32{1, 1}, BBox: []float64{0, 0, 50, 50}, DetScore: 0.95},
	}
	server := fakeExtractorServer(t, faces)
	defer server.Close()

	ext := NewExtractor(server.URL)
	probe, err := ext.ExtractProbe(context.Background(), []byte("fake-jpeg"))
	if err != nil {
		t.Fatalf("ExtractProbe failed: %v", err)
	}

	// Face index 1 has the biggest bounding box (100x100).
	if probe[0] != 0 || probe[1] != 1 {
		t.Errorf("expected embedding of largest face, got %v", probe)
	}
}

func TestExtractProbeNoFace(t *testing.T) {
	server := fakeExtractorServer(t, nil)
	defer server.Close()

	ext := NewExtractor(server.URL)
	_, err := ext.ExtractProbe(context.Background(), []byte("fake-jpeg"))
	if !errors.Is(err, ErrNoFaceDetected) {
		t.Errorf("expected ErrNoFaceDetected, got %v", err)
	}
}

func TestExtractSingleRejectsMultipleFaces(t *testing.T) {
	faces := []Face{
		{FaceIndex: 0, Embedding: []float32{1, 0}, BBox: []float64{0, 0, 10, 10}},
		{FaceIndex: 1, Embedding: []float32{0, 1}, BBox: []float64{0, 0, 20, 20}},
	}
	server := fakeExtractorServer(t, faces)
	defer server.Close()

	ext := NewExtractor(server.URL)
	if _, err := ext.ExtractSingle(context.Background(), []byte("fake-jpeg")); err == nil {
		t.Error("expected error for multi-face image at enrollment")
	}
}

func TestExtractSingle(t *testing.T) {
	faces := []Face{
		{FaceIndex: 0, Embedding: []float32{0.5, 0.5}, BBox: []float64{0, 0, 10, 10}},
	}
	server := fakeExtractorServer(t, faces)
	defer server.Close()

	ext := NewExtractor(server.URL)
	emb, err := ext.ExtractSingle(context.Background(), []byte("fake-jpeg"))
	if err != nil {
		t.Fatalf("ExtractSingle failed: %v", err)
	}
	if len(emb) != 2 {
		t.Errorf("unexpected embedding: %v", emb)
	}
}

func TestExtractorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	ext := NewExtractor(server.URL)
	if _, err := ext.ExtractProbe(context.Background(), []byte("fake-jpeg")); err == nil {
		t.Error("expected error from failing extractor")
	}
}

func TestBBoxArea(t *testing.T) {
	tests := []struct {
		name     string
		bbox     []float64
		expected float64
	}{
		{"normal", []float64{10, 10, 30, 50}, 800},
		{"degenerate", []float64{10, 10, 10, 50}, 0},
		{"inverted", []float64{30, 50, 10, 10}, 0},
		{"missing", nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := Face{BBox: tc.bbox}
			if got := f.BBoxArea(); got != tc.expected {
				t.Errorf("BBoxArea(%v) = %f; want %f", tc.bbox, got, tc.expected)
			}
		})
	}
}
