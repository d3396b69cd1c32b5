// Package storage persists the working set of books while it is enriched.
package storage

import (
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/coverscout/internal/dataset"
)

// Store writes snapshots of the working set to one or more files. The format
// of each file follows its extension.
type Store struct {
	paths []string
}

func New(paths ...string) *Store {
	var p []string
	for _, path := range paths {
		if path != "" {
			p = append(p, path)
		}
	}
	return &Store{paths: p}
}

// Save writes books to every configured path.
func (s *Store) Save(books []dataset.Book) error {
	for _, path := range s.paths {
		if err := dataset.Save(path, books); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}
		slog.Debug("Saved snapshot", "path", path, "rows", len(books))
	}
	return nil
}
