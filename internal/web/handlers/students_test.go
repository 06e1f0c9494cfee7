package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aseyam/attendsystem/internal/database"
	"github.com/aseyam/attendsystem/internal/embedding"
)

func TestListStudents(t *testing.T) {
	store := &fakeStudentStore{students: []database.Student{
		{ID: "20225389", DisplayName: "Abdulrahman Seyam", Encoding: probeE},
		{ID: "20225390", DisplayName: "Sara Adel", Encoding: []float32{0.9, 0.1, 0.1}},
	}}
	handler := NewStudentsHandler(store, &fakeExtractor{}, 3)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp struct {
		Students []studentView `json:"students"`
		Count    int           `json:"count"`
	}
	parseJSONResponse(t, rec, &resp)
	if resp.Count != 2 || len(resp.Students) != 2 {
		t.Fatalf("expected 2 students, got %+v", resp)
	}
	if resp.Students[0].ID != "20225389" {
		t.Errorf("unexpected first student: %+v", resp.Students[0])
	}
}

func TestEnrollStudent(t *testing.T) {
	store := &fakeStudentStore{}
	handler := NewStudentsHandler(store, &fakeExtractor{probe: []float32{3, 0, 4}}, 3)

	body, contentType := multipartBody(t, map[string]string{
		"id":   "20225389",
		"name": "  Abdulrahman   Seyam ",
	}, []byte("fake-jpeg"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Enroll(rec, req)

	assertStatusCode(t, rec, http.StatusCreated)

	if len(store.students) != 1 {
		t.Fatalf("expected 1 stored student, got %d", len(store.students))
	}
	s := store.students[0]
	if s.DisplayName != "Abdulrahman Seyam" {
		t.Errorf("display name not normalized at ingestion: %q", s.DisplayName)
	}
	// Encoding stored unit-normalized.
	if s.Encoding[0] != 0.6 || s.Encoding[2] != 0.8 {
		t.Errorf("encoding not normalized: %v", s.Encoding)
	}
}

func TestEnrollMissingFields(t *testing.T) {
	handler := NewStudentsHandler(&fakeStudentStore{}, &fakeExtractor{probe: probeE}, 3)

	body, contentType := multipartBody(t, map[string]string{"name": "No Id"}, []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Enroll(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestEnrollNoFace(t *testing.T) {
	handler := NewStudentsHandler(&fakeStudentStore{}, &fakeExtractor{err: embedding.ErrNoFaceDetected}, 3)

	body, contentType := multipartBody(t, map[string]string{
		"id":   "20225389",
		"name": "Abdulrahman Seyam",
	}, []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Enroll(rec, req)

	assertStatusCode(t, rec, http.StatusUnprocessableEntity)
}

func TestEnrollWrongDimension(t *testing.T) {
	handler := NewStudentsHandler(&fakeStudentStore{}, &fakeExtractor{probe: []float32{1, 0}}, 3)

	body, contentType := multipartBody(t, map[string]string{
		"id":   "20225389",
		"name": "Abdulrahman Seyam",
	}, []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Enroll(rec, req)

	assertStatusCode(t, rec, http.StatusBadGateway)
}
