package enrichcmd

import (
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/coverscout/internal/dataset"
)

func executeClean(input, output string) error {
	slog.Info("Loading raw dataset", "path", input)

	books, err := dataset.NewLoader(input).Load()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	cleaned := dataset.Clean(books)
	dataset.ResetImages(cleaned)

	if err := dataset.Save(output, cleaned); err != nil {
		return fmt.Errorf("failed to save cleaned dataset: %w", err)
	}

	fmt.Printf("\n=== Clean Results ===\n")
	fmt.Printf("Rows read:          %d\n", len(books))
	fmt.Printf("Duplicates dropped: %d\n", len(books)-len(cleaned))
	fmt.Printf("Rows written:       %d\n", len(cleaned))
	fmt.Printf("\nCleaned dataset saved to: %s\n", output)

	return nil
}
