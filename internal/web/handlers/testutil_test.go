package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aseyam/attendsystem/internal/attendance"
	"github.com/aseyam/attendsystem/internal/database"
	"github.com/aseyam/attendsystem/internal/database/mock"
	"github.com/aseyam/attendsystem/internal/gallery"
	"github.com/aseyam/attendsystem/internal/scan"
)

var testNow = time.Date(2025, 11, 17, 10, 0, 0, 0, time.UTC)

// probeE is the enrolled test embedding for student 20225389.
var probeE = []float32{0.2, 0.5, 0.7}

// fakeExtractor satisfies both the probe and enrollment extractor
// interfaces with fixed data.
type fakeExtractor struct {
	probe []float32
	err   error
}

func (f *fakeExtractor) ExtractProbe(ctx context.Context, imageData []byte) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.probe, nil
}

func (f *fakeExtractor) ExtractSingle(ctx context.Context, imageData []byte) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.probe, nil
}

// fakeStudentStore implements StudentStore in memory.
type fakeStudentStore struct {
	mu       sync.Mutex
	students []database.Student

	listErr  error
	writeErr error
}

func (f *fakeStudentStore) ListStudents(ctx context.Context) ([]gallery.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []gallery.Entry
	for _, s := range f.students {
		entries = append(entries, gallery.Entry{
			StudentID:   s.ID,
			DisplayName: s.DisplayName,
			Embedding:   s.Encoding,
		})
	}
	return entries, nil
}

func (f *fakeStudentStore) UpsertStudent(ctx context.Context, s database.Student) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.students {
		if f.students[i].ID == s.ID {
			f.students[i] = s
			return nil
		}
	}
	f.students = append(f.students, s)
	return nil
}

// newTestScanner builds a scanner over mocks with one enrolled student and
// one session in room 101 spanning testNow.
func newTestScanner(t *testing.T) (*scan.Scanner, *mock.MockAttendanceMarker) {
	t.Helper()

	store := gallery.NewStore(3)
	source := mock.NewMockGallerySource(gallery.Entry{
		StudentID:   "20225389",
		DisplayName: "Abdulrahman Seyam",
		Embedding:   probeE,
	})
	sessions := mock.NewMockSessionReader()
	sessions.AddSessions("20225389", sessionInRoom101())
	recorder := mock.NewMockAttendanceMarker()

	scanner := scan.NewScanner(store, &fakeExtractor{probe: probeE}, sessions, recorder, source, 0.5)
	scanner.SetClock(func() time.Time { return testNow })
	if _, err := scanner.ReloadGallery(context.Background()); err != nil {
		t.Fatalf("ReloadGallery failed: %v", err)
	}
	return scanner, recorder
}

func sessionInRoom101() attendance.Session {
	return attendance.Session{
		ID:         1,
		CourseName: "Databases",
		RoomID:     "101",
		StartTime:  testNow.Add(-time.Hour),
		EndTime:    testNow.Add(time.Hour),
		Type:       attendance.Theory,
		Status:     attendance.StatusScheduled,
	}
}

// multipartBody builds a multipart request body with the given fields and
// one file part named "image".
func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "probe.jpg")
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("failed to write image: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// jsonRequest builds a JSON POST request.
func jsonRequest(t *testing.T, path string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
