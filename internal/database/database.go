// Package database defines the storage contracts the decision flow depends
// on. Concrete implementations live in the postgres (our own store) and
// mariadb (university timetable, read-only) subpackages; in-memory fakes
// for tests live in mock.
package database

import (
	"context"
	"time"

	"github.com/aseyam/attendsystem/internal/attendance"
	"github.com/aseyam/attendsystem/internal/gallery"
)

// Student is an enrolled student row in our own store. The facial encoding
// is stored unit-normalized.
type Student struct {
	ID          string
	DisplayName string
	Encoding    []float32
	CreatedAt   time.Time
}

// GallerySource lists enrolled students for an in-memory gallery load.
type GallerySource interface {
	ListStudents(ctx context.Context) ([]gallery.Entry, error)
}

// StudentWriter registers or refreshes one enrolled student.
type StudentWriter interface {
	UpsertStudent(ctx context.Context, s Student) error
}

// SessionReader returns, for a student and instant, today's Scheduled
// sessions of their actively-enrolled courses, ordered by start time.
type SessionReader interface {
	TodaysSessions(ctx context.Context, studentID string, now time.Time) ([]attendance.Session, error)
}

// AttendanceMarker records one presence mark exactly once per
// (session, student) pair. Implementations enforce the uniqueness at the
// storage layer so concurrent duplicate scans cannot both insert.
type AttendanceMarker interface {
	MarkPresent(ctx context.Context, sessionID int64, studentID string) (attendance.MarkOutcome, error)
}
