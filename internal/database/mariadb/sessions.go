package mariadb

import (
	"context"
	"fmt"
	"time"

	"github.com/aseyam/attendsystem/internal/attendance"
)

// SessionRepository reads a student's scheduled class sessions from the
// timetable store.
type SessionRepository struct {
	pool *Pool
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(pool *Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// TodaysSessions returns the student's Scheduled sessions whose date
// matches now's date, restricted to courses with an Active enrollment,
// ordered by start time. Cancelled and completed sessions never appear;
// the eligibility resolver only reasons over room and time.
func (r *SessionRepository) TodaysSessions(ctx context.Context, studentID string, now time.Time) ([]attendance.Session, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT cs.id, c.course_name, cs.room_id, cs.start_time, cs.end_time, cs.session_type, cs.status
		FROM class_session cs
		JOIN course c ON c.id = cs.course_id
		JOIN enrollment e ON e.course_id = cs.course_id
		WHERE e.student_id = ?
		  AND e.status = 'Active'
		  AND cs.status = 'Scheduled'
		  AND DATE(cs.start_time) = DATE(?)
		ORDER BY cs.start_time, cs.id
	`, studentID, now)
	if err != nil {
		return nil, fmt.Errorf("query today's sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.Session
	for rows.Next() {
		var s attendance.Session
		if err := rows.Scan(&s.ID, &s.CourseName, &s.RoomID, &s.StartTime, &s.EndTime, &s.Type, &s.Status); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}
