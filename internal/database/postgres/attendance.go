package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aseyam/attendsystem/internal/attendance"
)

// AttendanceRepository records presence marks. The (session_id, student_id)
// unique index makes the write idempotent under concurrent duplicates: two
// near-simultaneous scans race on the index, exactly one insert wins.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// MarkPresent attempts the single idempotent insert. When the pair already
// exists, the original record's marked_at is returned unchanged.
func (r *AttendanceRepository) MarkPresent(ctx context.Context, sessionID int64, studentID string) (attendance.MarkOutcome, error) {
	var outcome attendance.MarkOutcome

	err := r.pool.QueryRow(ctx, `
		INSERT INTO attendance_records (id, session_id, student_id, status, method)
		VALUES ($1, $2, $3, 'Present', $4)
		ON CONFLICT (session_id, student_id) DO NOTHING
		RETURNING marked_at
	`, uuid.NewString(), sessionID, studentID, attendance.MethodFaceScan).Scan(&outcome.MarkedAt)

	if err == nil {
		outcome.Created = true
		return outcome, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return attendance.MarkOutcome{}, fmt.Errorf("insert attendance mark: %w", err)
	}

	// Conflict: fetch the original mark time for message composition.
	err = r.pool.QueryRow(ctx, `
		SELECT marked_at FROM attendance_records
		WHERE session_id = $1 AND student_id = $2
	`, sessionID, studentID).Scan(&outcome.MarkedAt)
	if err != nil {
		return attendance.MarkOutcome{}, fmt.Errorf("read existing attendance mark: %w", err)
	}
	return outcome, nil
}

// CountForSession returns the number of marks recorded for a session.
func (r *AttendanceRepository) CountForSession(ctx context.Context, sessionID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM attendance_records WHERE session_id = $1", sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attendance marks: %w", err)
	}
	return count, nil
}
