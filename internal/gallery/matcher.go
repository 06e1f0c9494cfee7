package gallery

import (
	"fmt"

	"github.com/aseyam/attendsystem/internal/embedding"
)

// MatchResult is the outcome of comparing one probe against the gallery.
// When no entry scores above the threshold, Identity is nil and Score still
// carries the best sub-threshold similarity for diagnostics.
type MatchResult struct {
	Identity *Entry
	Score    float64
}

// Matched reports whether an identity cleared the threshold.
func (r MatchResult) Matched() bool {
	return r.Identity != nil
}

// Match compares the probe against every enrolled embedding and returns the
// best match if its cosine similarity is strictly greater than threshold.
//
// Gallery embeddings are unit vectors, so the probe is normalized once and
// each comparison reduces to a dot product. The scan is linear and exact;
// at tens to low thousands of enrolled students an index buys nothing.
// Ties are broken by the lowest gallery index, so repeated calls with the
// same snapshot and probe always pick the same entry.
func (snap *Snapshot) Match(probe []float32, threshold float64) (MatchResult, error) {
	if len(probe) != snap.dim {
		return MatchResult{}, fmt.Errorf("probe: %w: got %d, want %d",
			ErrDimensionMismatch, len(probe), snap.dim)
	}
	if len(snap.entries) == 0 {
		return MatchResult{}, ErrEmpty
	}

	unit, err := embedding.Normalize(probe)
	if err != nil {
		return MatchResult{}, fmt.Errorf("probe: %w", err)
	}

	bestIdx := -1
	bestScore := -2.0 // below any cosine similarity
	for i := range snap.entries {
		score := embedding.Dot(unit, snap.entries[i].Embedding)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestScore > threshold {
		return MatchResult{Identity: &snap.entries[bestIdx], Score: bestScore}, nil
	}
	return MatchResult{Score: bestScore}, nil
}
