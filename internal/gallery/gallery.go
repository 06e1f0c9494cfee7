// Package gallery holds the in-memory set of enrolled students available
// for identity matching. The set is replaced wholesale on reload; matches
// run against an immutable snapshot so a concurrent reload can never
// corrupt an in-flight comparison.
package gallery

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aseyam/attendsystem/internal/embedding"
)

var (
	// ErrNotLoaded is returned when no gallery has ever been loaded.
	ErrNotLoaded = errors.New("gallery not loaded")

	// ErrEmpty is returned when the gallery was loaded but contains no
	// enrolled students. Distinct from ErrNotLoaded so operators can tell
	// "nobody enrolled yet" from "reload never ran".
	ErrEmpty = errors.New("gallery empty")

	// ErrDimensionMismatch is returned when a vector's dimensionality does
	// not match the gallery's.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Entry is one enrolled student with their facial encoding. The embedding
// is unit-normalized at load time.
type Entry struct {
	StudentID   string
	DisplayName string
	Embedding   []float32
}

// Snapshot is an immutable view of the gallery taken for the duration of
// one match operation.
type Snapshot struct {
	entries []Entry
	dim     int
}

// Store owns the gallery. Load replaces the whole set atomically: the new
// snapshot is built fully before being published, so readers see either the
// fully-old or fully-new set, never a mix.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
	dim     int
}

// NewStore creates an empty, not-yet-loaded store for embeddings of the
// given dimensionality.
func NewStore(dim int) *Store {
	return &Store{dim: dim}
}

// Load validates and normalizes the given entries, then swaps them in as
// the new gallery. On any validation error the previous snapshot stays
// visible untouched.
func (s *Store) Load(entries []Entry) error {
	snapshot := &Snapshot{
		entries: make([]Entry, 0, len(entries)),
		dim:     s.dim,
	}

	for i, e := range entries {
		if len(e.Embedding) != s.dim {
			return fmt.Errorf("student %q (index %d): %w: got %d, want %d",
				e.StudentID, i, ErrDimensionMismatch, len(e.Embedding), s.dim)
		}
		normalized, err := embedding.Normalize(e.Embedding)
		if err != nil {
			return fmt.Errorf("student %q (index %d): %w", e.StudentID, i, err)
		}
		snapshot.entries = append(snapshot.entries, Entry{
			StudentID:   e.StudentID,
			DisplayName: e.DisplayName,
			Embedding:   normalized,
		})
	}

	s.mu.Lock()
	s.current = snapshot
	s.mu.Unlock()
	return nil
}

// Snapshot returns the current immutable gallery view, or ErrNotLoaded if
// Load has never succeeded.
func (s *Store) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()

	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Loaded reports whether a gallery has been published.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Size returns the number of enrolled students in the snapshot.
func (snap *Snapshot) Size() int {
	return len(snap.entries)
}

// Dim returns the embedding dimensionality of the snapshot.
func (snap *Snapshot) Dim() int {
	return snap.dim
}
