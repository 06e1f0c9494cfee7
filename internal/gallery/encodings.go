package gallery

import (
	"encoding/json"
	"fmt"
	"os"
)

// encodingsFile is the offline trainer's output: two parallel arrays, one
// label and one embedding per learned image. Labels follow the
// "First Last - 20225389" convention.
type encodingsFile struct {
	Names      []string    `json:"names"`
	Embeddings [][]float32 `json:"embeddings"`
}

// LoadEncodingsFile reads an offline-built encodings file into gallery
// entries. Multiple images of the same person collapse to the first
// occurrence, matching a linear first-seen scan over the trainer's arrays.
// Entries produced here match exactly like entries loaded from the
// relational store.
func LoadEncodingsFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read encodings file: %w", err)
	}

	var file encodingsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse encodings file: %w", err)
	}
	if len(file.Names) != len(file.Embeddings) {
		return nil, fmt.Errorf("encodings file corrupt: %d names vs %d embeddings",
			len(file.Names), len(file.Embeddings))
	}

	seen := make(map[string]bool)
	var entries []Entry
	for i, label := range file.Names {
		displayName, studentID := SplitLabel(label)
		if studentID == "" {
			return nil, fmt.Errorf("label %q (index %d): missing student id", label, i)
		}
		if seen[studentID] {
			continue
		}
		seen[studentID] = true
		entries = append(entries, Entry{
			StudentID:   studentID,
			DisplayName: displayName,
			Embedding:   file.Embeddings[i],
		})
	}
	return entries, nil
}
