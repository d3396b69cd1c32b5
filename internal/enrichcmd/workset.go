package enrichcmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/coverscout/internal/config"
	"github.com/lehigh-university-libraries/coverscout/internal/dataset"
)

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// loadWorkingSet picks the progress file, then the cleaned file, then the
// raw export. Rows from the cleaned or raw file start without an Image_URL.
func loadWorkingSet(files config.FilesConfig) ([]dataset.Book, string, error) {
	switch {
	case exists(files.Progress):
		slog.Info("Loading existing progress file", "path", files.Progress)
		books, err := dataset.NewLoader(files.Progress).Load()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load progress file: %w", err)
		}
		return books, files.Progress, nil

	case exists(files.Cleaned):
		slog.Info("Loading cleaned file", "path", files.Cleaned)
		books, err := dataset.NewLoader(files.Cleaned).Load()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load cleaned file: %w", err)
		}
		dataset.ResetImages(books)
		return books, files.Cleaned, nil

	case exists(files.Raw):
		slog.Info("No clean file found, loading and cleaning raw file", "path", files.Raw)
		books, err := dataset.NewLoader(files.Raw).Load()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load raw file: %w", err)
		}
		books = dataset.Clean(books)
		dataset.ResetImages(books)
		return books, files.Raw, nil
	}

	return nil, "", fmt.Errorf("no input found, ensure %s or %s exists: %w", files.Raw, files.Cleaned, os.ErrNotExist)
}

// resetNotFound clears NOT_FOUND markers and returns how many were cleared.
func resetNotFound(books []dataset.Book) int {
	n := 0
	for i := range books {
		if books[i].ImageURL == dataset.NotFound {
			books[i].ImageURL = ""
			n++
		}
	}
	return n
}
