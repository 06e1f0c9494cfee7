// Package scan composes the matcher, the eligibility resolver and the
// attendance recorder into the end-to-end kiosk scan operation.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aseyam/attendsystem/internal/attendance"
	"github.com/aseyam/attendsystem/internal/database"
	"github.com/aseyam/attendsystem/internal/embedding"
	"github.com/aseyam/attendsystem/internal/gallery"
)

// ProbeExtractor turns a probe image into an embedding vector.
type ProbeExtractor interface {
	ExtractProbe(ctx context.Context, imageData []byte) ([]float32, error)
}

// Outcome labels carried in scan responses.
const (
	OutcomeEligible      = "eligible"
	OutcomeAlreadyMarked = "already_marked"
	OutcomeUnidentified  = "unidentified"
	OutcomeGalleryEmpty  = "gallery_empty"
	OutcomeNoFace        = "no_face_detected"
	OutcomeNoSessions    = "no_sessions_today"
	OutcomeMismatch      = "mismatch"
)

// Result is the response payload for one scan.
type Result struct {
	Success     bool     `json:"success"`
	Outcome     string   `json:"outcome"`
	StudentID   string   `json:"student_id,omitempty"`
	StudentName string   `json:"student_name,omitempty"`
	Score       float64  `json:"score,omitempty"`
	Message     string   `json:"message"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// Scanner runs the scan decision flow. Each request is handled end-to-end
// by one goroutine; the only shared state is the gallery store, which hands
// out immutable snapshots.
type Scanner struct {
	store     *gallery.Store
	extractor ProbeExtractor
	sessions  database.SessionReader
	recorder  database.AttendanceMarker
	source    database.GallerySource
	threshold float64
	now       func() time.Time
}

// NewScanner wires the decision flow together. threshold is the minimum
// cosine similarity for a positive identification.
func NewScanner(
	store *gallery.Store,
	extractor ProbeExtractor,
	sessions database.SessionReader,
	recorder database.AttendanceMarker,
	source database.GallerySource,
	threshold float64,
) *Scanner {
	return &Scanner{
		store:     store,
		extractor: extractor,
		sessions:  sessions,
		recorder:  recorder,
		source:    source,
		threshold: threshold,
		now:       time.Now,
	}
}

// SetClock overrides the scanner's clock. Used by tests.
func (s *Scanner) SetClock(now func() time.Time) {
	s.now = now
}

// ReloadGallery re-reads the gallery source and atomically swaps the
// in-memory set. Returns the number of enrolled students published.
func (s *Scanner) ReloadGallery(ctx context.Context) (int, error) {
	entries, err := s.source.ListStudents(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading gallery source: %w", err)
	}
	if err := s.store.Load(entries); err != nil {
		return 0, fmt.Errorf("loading gallery: %w", err)
	}
	log.Printf("Gallery reloaded: %d enrolled students", len(entries))
	return len(entries), nil
}

// ScanImage runs the full flow starting from a probe image: extract the
// embedding of the largest face, then identify and resolve eligibility.
// A probe with no detectable face is a negative result, not an error.
func (s *Scanner) ScanImage(ctx context.Context, imageData []byte, roomID string) (Result, error) {
	probe, err := s.extractor.ExtractProbe(ctx, imageData)
	if err != nil {
		if errors.Is(err, embedding.ErrNoFaceDetected) {
			return Result{
				Outcome: OutcomeNoFace,
				Message: attendance.NoFaceMessage(),
			}, nil
		}
		return Result{}, fmt.Errorf("extracting probe embedding: %w", err)
	}
	return s.ScanEmbedding(ctx, probe, roomID)
}

// ScanEmbedding identifies the probe against the gallery, resolves
// eligibility for the room and current time, and records the presence mark
// when eligible. No writes happen on any negative path.
func (s *Scanner) ScanEmbedding(ctx context.Context, probe []float32, roomID string) (Result, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return Result{}, fmt.Errorf("gallery unavailable: %w", err)
	}

	match, err := snap.Match(probe, s.threshold)
	if err != nil {
		if errors.Is(err, gallery.ErrEmpty) {
			return Result{
				Outcome: OutcomeGalleryEmpty,
				Message: attendance.GalleryEmptyMessage(),
			}, nil
		}
		// Dimension mismatch or zero-magnitude probe: input error.
		return Result{}, err
	}

	if !match.Matched() {
		log.Printf("Unidentified probe in room %s (best score %.3f)", roomID, match.Score)
		return Result{
			Outcome: OutcomeUnidentified,
			Score:   match.Score,
			Message: attendance.UnidentifiedMessage(),
		}, nil
	}

	student := match.Identity
	now := s.now()

	sessions, err := s.sessions.TodaysSessions(ctx, student.StudentID, now)
	if err != nil {
		return Result{}, fmt.Errorf("reading today's sessions: %w", err)
	}

	outcome := attendance.Resolve(roomID, sessions, now)
	result := Result{
		StudentID:   student.StudentID,
		StudentName: student.DisplayName,
		Score:       match.Score,
	}

	switch outcome.Kind {
	case attendance.OutcomeEligible:
		mark, err := s.recorder.MarkPresent(ctx, outcome.Session.ID, student.StudentID)
		if err != nil {
			return Result{}, fmt.Errorf("recording attendance: %w", err)
		}
		if mark.Created {
			result.Success = true
			result.Outcome = OutcomeEligible
			result.Message = attendance.EligibleMessage(student.DisplayName, outcome.Session)
		} else {
			result.Success = true
			result.Outcome = OutcomeAlreadyMarked
			result.Message = attendance.AlreadyMarkedMessage(outcome.Session, mark.MarkedAt)
		}

	case attendance.OutcomeNoSessionsToday:
		result.Outcome = OutcomeNoSessions
		result.Message = attendance.NoSessionsMessage()

	case attendance.OutcomeMismatch:
		result.Outcome = OutcomeMismatch
		for _, d := range outcome.Diagnostics {
			result.Diagnostics = append(result.Diagnostics, d.Message())
		}
		result.Message = result.Diagnostics[0]
	}

	return result, nil
}
