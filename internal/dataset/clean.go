package dataset

import "log/slog"

// Clean prepares a raw export for enrichment: missing descriptions become
// the literal "null" and later rows repeating an earlier title are dropped.
func Clean(books []Book) []Book {
	seen := make(map[string]bool, len(books))
	cleaned := make([]Book, 0, len(books))

	for _, b := range books {
		if seen[b.Title] {
			continue
		}
		seen[b.Title] = true

		if b.Description == "" {
			b.Description = "null"
		}
		cleaned = append(cleaned, b)
	}

	slog.Debug("Cleaned dataset", "rows_in", len(books), "rows_out", len(cleaned))
	return cleaned
}

// ResetImages clears every Image_URL so all rows are looked up again.
func ResetImages(books []Book) {
	for i := range books {
		books[i].ImageURL = ""
	}
}

// Pending returns the indexes of rows that still need a cover lookup.
func Pending(books []Book) []int {
	var idx []int
	for i := range books {
		if books[i].NeedsImage() {
			idx = append(idx, i)
		}
	}
	return idx
}
