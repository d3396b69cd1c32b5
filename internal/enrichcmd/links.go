package enrichcmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lehigh-university-libraries/coverscout/internal/config"
	"github.com/lehigh-university-libraries/coverscout/internal/dataset"
	"github.com/lehigh-university-libraries/coverscout/internal/links"
	"github.com/lehigh-university-libraries/coverscout/internal/storage"
)

const clientBooksFile = "books_full.json"

func executeLinks(cfg *config.Config) error {
	books, source, err := loadLinkSource(cfg.Files)
	if err != nil {
		return err
	}
	slog.Info("Adding Amazon URLs", "source", source, "books", len(books))

	added := links.Apply(books)

	clientPath := filepath.Join(cfg.Files.ClientDir, clientBooksFile)
	if err := dataset.WriteJSONFile(clientPath, links.ClientRecords(books)); err != nil {
		slog.Warn("Failed to write client dataset", "path", clientPath, "error", err)
		clientPath = ""
	}

	if err := storage.New(cfg.Files.Progress, cfg.Files.OutputJSON).Save(books); err != nil {
		return err
	}

	fmt.Printf("\n=== Link Results ===\n")
	fmt.Printf("Books:              %d\n", len(books))
	fmt.Printf("Amazon links added: %d\n", added)
	if clientPath != "" {
		fmt.Printf("\nClient dataset saved to: %s\n", clientPath)
	}
	fmt.Printf("Spreadsheet saved to: %s\n", cfg.Files.Progress)

	return nil
}

// loadLinkSource reads the first of the progress, cleaned and raw files
// that exists, without altering image columns.
func loadLinkSource(files config.FilesConfig) ([]dataset.Book, string, error) {
	for _, path := range []string{files.Progress, files.Cleaned, files.Raw} {
		if !exists(path) {
			continue
		}
		books, err := dataset.NewLoader(path).Load()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load %s: %w", path, err)
		}
		return books, path, nil
	}
	return nil, "", fmt.Errorf("no input found, ensure %s exists", files.Raw)
}
