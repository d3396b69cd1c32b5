package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/coverscout/internal/dataset"
)

func TestStoreSave(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "progress.xlsx")
	jsonPath := filepath.Join(dir, "out", "books.json")

	store := New(xlsx, "", jsonPath)

	books := []dataset.Book{
		{Title: "Dune", ImageURL: "https://example.org/dune.jpg"},
		{Title: "Emma", ImageURL: dataset.NotFound},
	}

	if err := store.Save(books); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	for _, path := range []string{xlsx, jsonPath} {
		loaded, err := dataset.NewLoader(path).Load()
		if err != nil {
			t.Fatalf("Load %s failed: %v", path, err)
		}
		if len(loaded) != 2 || loaded[1].ImageURL != dataset.NotFound {
			t.Errorf("Unexpected contents in %s: %+v", path, loaded)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected progress.xlsx and out/, found %d entries", len(entries))
	}
}

func TestStoreSaveError(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "progress.csv"))

	if err := store.Save(nil); err == nil {
		t.Fatal("Expected error for unsupported format")
	}
}

func TestStoreWithoutPaths(t *testing.T) {
	if err := New("", "").Save([]dataset.Book{{Title: "Dune"}}); err != nil {
		t.Errorf("Expected no error without paths, got %v", err)
	}
}
