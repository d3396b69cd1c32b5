package links

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/coverscout/internal/dataset"
)

func TestAmazonSearchURL(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		author   string
		expected string
	}{
		{"title and author", "The Hobbit", "J.R.R. Tolkien", "https://www.amazon.in/s?k=The+Hobbit+J.R.R.+Tolkien"},
		{"no author", "Dune", "", "https://www.amazon.in/s?k=Dune"},
		{"no title", "  ", "Anonymous", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AmazonSearchURL(tt.title, tt.author); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestApply(t *testing.T) {
	books := []dataset.Book{
		{Title: "Dune", Author: "Frank Herbert", URL: "https://www.goodreads.com/dune"},
		{Title: "Emma", Author: "Jane Austen", AmazonURL: "https://www.amazon.in/dp/123"},
		{Title: "", Author: "Nobody"},
	}

	added := Apply(books)

	if added != 1 {
		t.Errorf("Expected 1 link added, got %d", added)
	}
	if books[0].AmazonURL != "https://www.amazon.in/s?k=Dune+Frank+Herbert" {
		t.Errorf("Unexpected Amazon_URL %s", books[0].AmazonURL)
	}
	if books[0].URL != books[0].AmazonURL {
		t.Errorf("Expected URL to be replaced, got %s", books[0].URL)
	}
	if books[1].URL != "https://www.amazon.in/dp/123" {
		t.Errorf("Expected existing Amazon_URL to be kept, got %s", books[1].URL)
	}
	if books[2].URL != "" {
		t.Errorf("Expected empty URL for untitled book, got %s", books[2].URL)
	}
}

func TestClientRecordsColumnOrder(t *testing.T) {
	records := ClientRecords([]dataset.Book{{Title: "Dune", ImageURL: dataset.NotFound}})

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}

	s := string(data)
	order := []string{`"Book"`, `"Author"`, `"Description"`, `"Genres"`, `"Avg_Rating"`, `"Num_Ratings"`, `"Image_URL"`, `"URL"`, `"Amazon_URL"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		if idx <= last {
			t.Fatalf("Expected %s after previous column in %s", key, s)
		}
		last = idx
	}
}
