// Package mock provides in-memory implementations of the database
// interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aseyam/attendsystem/internal/attendance"
	"github.com/aseyam/attendsystem/internal/database"
	"github.com/aseyam/attendsystem/internal/gallery"
)

// MockGallerySource is an in-memory implementation of database.GallerySource.
type MockGallerySource struct {
	mu      sync.RWMutex
	entries []gallery.Entry

	// Error injection
	ListError error
}

// NewMockGallerySource creates a new mock gallery source.
func NewMockGallerySource(entries ...gallery.Entry) *MockGallerySource {
	return &MockGallerySource{entries: entries}
}

// SetEntries replaces the stored entries.
func (m *MockGallerySource) SetEntries(entries []gallery.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
}

// ListStudents returns the stored entries in insertion order.
func (m *MockGallerySource) ListStudents(ctx context.Context) ([]gallery.Entry, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]gallery.Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// MockSessionReader is an in-memory implementation of database.SessionReader.
type MockSessionReader struct {
	mu       sync.RWMutex
	sessions map[string][]attendance.Session

	// Error injection
	ReadError error
}

// NewMockSessionReader creates a new mock session reader.
func NewMockSessionReader() *MockSessionReader {
	return &MockSessionReader{sessions: make(map[string][]attendance.Session)}
}

// AddSessions assigns today's sessions for a student.
func (m *MockSessionReader) AddSessions(studentID string, sessions ...attendance.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[studentID] = append(m.sessions[studentID], sessions...)
}

// TodaysSessions returns the sessions registered for the student.
func (m *MockSessionReader) TodaysSessions(ctx context.Context, studentID string, now time.Time) ([]attendance.Session, error) {
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[studentID], nil
}

// MockAttendanceMarker is an in-memory implementation of
// database.AttendanceMarker with the same idempotency guarantee as the
// Postgres repository: exactly one Created per (session, student) pair,
// even under concurrent calls.
type MockAttendanceMarker struct {
	mu    sync.Mutex
	marks map[string]time.Time

	// Error injection
	MarkError error

	// Now is the clock used for new marks; defaults to time.Now.
	Now func() time.Time
}

// NewMockAttendanceMarker creates a new mock attendance marker.
func NewMockAttendanceMarker() *MockAttendanceMarker {
	return &MockAttendanceMarker{marks: make(map[string]time.Time)}
}

func markKey(sessionID int64, studentID string) string {
	return fmt.Sprintf("%d/%s", sessionID, studentID)
}

// MarkPresent records the pair once; duplicates return the original time.
func (m *MockAttendanceMarker) MarkPresent(ctx context.Context, sessionID int64, studentID string) (attendance.MarkOutcome, error) {
	if m.MarkError != nil {
		return attendance.MarkOutcome{}, m.MarkError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := markKey(sessionID, studentID)
	if markedAt, ok := m.marks[key]; ok {
		return attendance.MarkOutcome{Created: false, MarkedAt: markedAt}, nil
	}

	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	m.marks[key] = now
	return attendance.MarkOutcome{Created: true, MarkedAt: now}, nil
}

// Count returns the number of recorded marks.
func (m *MockAttendanceMarker) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.marks)
}

// Has reports whether a mark exists for the pair.
func (m *MockAttendanceMarker) Has(sessionID int64, studentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.marks[markKey(sessionID, studentID)]
	return ok
}

var (
	_ database.GallerySource    = (*MockGallerySource)(nil)
	_ database.SessionReader    = (*MockSessionReader)(nil)
	_ database.AttendanceMarker = (*MockAttendanceMarker)(nil)
)
