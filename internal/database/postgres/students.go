package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/aseyam/attendsystem/internal/database"
	"github.com/aseyam/attendsystem/internal/gallery"
)

// StudentRepository provides PostgreSQL-backed storage for enrolled
// students and their facial encodings.
type StudentRepository struct {
	pool *Pool
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(pool *Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// ListStudents returns every enrolled student as a gallery entry, in
// insertion order so that match tie-breaking stays stable across reloads.
func (r *StudentRepository) ListStudents(ctx context.Context) ([]gallery.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, display_name, encoding
		FROM students
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var entries []gallery.Entry
	for rows.Next() {
		var e gallery.Entry
		var vec pgvector.Vector
		if err := rows.Scan(&e.StudentID, &e.DisplayName, &vec); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		e.Embedding = vec.Slice()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return entries, nil
}

// UpsertStudent registers a student or refreshes their encoding and name.
func (r *StudentRepository) UpsertStudent(ctx context.Context, s database.Student) error {
	err := r.pool.Exec(ctx, `
		INSERT INTO students (id, display_name, encoding)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, encoding = EXCLUDED.encoding
	`, s.ID, s.DisplayName, pgvector.NewVector(s.Encoding))
	if err != nil {
		return fmt.Errorf("upsert student %s: %w", s.ID, err)
	}
	return nil
}

// Count returns the number of enrolled students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM students").Scan(&count); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}
