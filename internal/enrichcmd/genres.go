package enrichcmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lehigh-university-libraries/coverscout/internal/dataset"
	"github.com/lehigh-university-libraries/coverscout/internal/genres"
)

const genresFile = "genres.json"

func executeGenres(input, output, clientDir string) error {
	books, err := dataset.NewLoader(input).Load()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	fixed, options := genres.Expand(books)
	slog.Info("Parsed genres", "books", len(fixed), "genres", len(options))

	if err := dataset.WriteJSONFile(output, fixed); err != nil {
		return fmt.Errorf("failed to write books: %w", err)
	}

	genresPath := filepath.Join(clientDir, genresFile)
	if err := dataset.WriteJSONFile(genresPath, options); err != nil {
		return fmt.Errorf("failed to write genres: %w", err)
	}

	fmt.Printf("\n=== Genre Results ===\n")
	fmt.Printf("Books:           %d\n", len(fixed))
	fmt.Printf("Distinct genres: %d\n", len(options))
	fmt.Printf("\nFixed books saved to: %s\n", output)
	fmt.Printf("Genres saved to: %s\n", genresPath)

	return nil
}
