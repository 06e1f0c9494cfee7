package attendance

import "time"

// SessionType distinguishes lecture from lab sections.
type SessionType string

const (
	Theory    SessionType = "Theory"
	Practical SessionType = "Practical"
)

// SessionStatus is the scheduling state of a class session.
type SessionStatus string

const (
	StatusScheduled SessionStatus = "Scheduled"
	StatusCancelled SessionStatus = "Cancelled"
	StatusCompleted SessionStatus = "Completed"
)

// Session is one scheduled class meeting, read from the university
// timetable store.
type Session struct {
	ID         int64
	CourseName string
	RoomID     string
	StartTime  time.Time
	EndTime    time.Time
	Type       SessionType
	Status     SessionStatus
}

// Record is a persisted presence mark. At most one record exists per
// (SessionID, StudentID) pair; the pair is a unique index in the store.
type Record struct {
	ID        string
	SessionID int64
	StudentID string
	Status    string // always "Present"
	MarkedAt  time.Time
	Method    string // capture method tag, e.g. "face_scan"
}

// MethodFaceScan tags records created by the biometric kiosk flow.
const MethodFaceScan = "face_scan"

// MarkOutcome is the result of an idempotent presence write. On a
// duplicate, MarkedAt carries the original record's timestamp.
type MarkOutcome struct {
	Created  bool
	MarkedAt time.Time
}
