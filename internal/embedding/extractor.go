package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const defaultExtractorURL = "http://localhost:8000"

// ErrNoFaceDetected is returned when the extractor finds no face in the image.
var ErrNoFaceDetected = errors.New("no face detected")

// Extractor computes face embeddings using the embedding sidecar service.
type Extractor struct {
	baseURL string
	client  *http.Client
}

// NewExtractor creates a client for the face embedding service.
func NewExtractor(baseURL string) *Extractor {
	if baseURL == "" {
		baseURL = defaultExtractorURL
	}
	return &Extractor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Face is a single detected face with its embedding.
type Face struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// faceResponse is the response from the face embedding endpoint.
type faceResponse struct {
	FacesCount int    `json:"faces_count"`
	Faces      []Face `json:"faces"`
	Model      string `json:"model"`
}

// BBoxArea returns the bounding box area of the face in square pixels.
func (f *Face) BBoxArea() float64 {
	if len(f.BBox) != 4 {
		return 0
	}
	w := f.BBox[2] - f.BBox[0]
	h := f.BBox[3] - f.BBox[1]
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// postImage constructs a multipart form with the image data and posts it to
// the face embedding endpoint.
func (e *Extractor) postImage(ctx context.Context, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "probe.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed/face", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extractor error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// DetectFaces detects all faces in an image and computes their embeddings.
func (e *Extractor) DetectFaces(ctx context.Context, imageData []byte) ([]Face, error) {
	body, err := e.postImage(ctx, imageData)
	if err != nil {
		return nil, err
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return faceResp.Faces, nil
}

// ExtractProbe detects faces in an image and returns the embedding of the
// face with the largest bounding box area. Smaller faces (bystanders in the
// background of a kiosk shot) are discarded.
func (e *Extractor) ExtractProbe(ctx context.Context, imageData []byte) ([]float32, error) {
	faces, err := e.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, ErrNoFaceDetected
	}

	best := &faces[0]
	for i := 1; i < len(faces); i++ {
		if faces[i].BBoxArea() > best.BBoxArea() {
			best = &faces[i]
		}
	}

	if len(best.Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	return best.Embedding, nil
}

// ExtractSingle detects faces and requires exactly one. Used at enrollment,
// where learning from a multi-face image risks learning the wrong person.
func (e *Extractor) ExtractSingle(ctx context.Context, imageData []byte) ([]float32, error) {
	faces, err := e.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, ErrNoFaceDetected
	}
	if len(faces) != 1 {
		return nil, fmt.Errorf("expected exactly one face, found %d", len(faces))
	}

	if len(faces[0].Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	return faces[0].Embedding, nil
}
