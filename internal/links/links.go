// Package links adds store search links to book records.
package links

import (
	"strings"

	"github.com/lehigh-university-libraries/coverscout/internal/dataset"
)

const amazonSearch = "https://www.amazon.in/s?k="

// AmazonSearchURL builds a search link from the title and author with spaces
// replaced by "+". It returns "" when the title is empty.
func AmazonSearchURL(title, author string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}

	u := amazonSearch + strings.ReplaceAll(title, " ", "+")
	if author = strings.TrimSpace(author); author != "" {
		u += "+" + strings.ReplaceAll(author, " ", "+")
	}
	return u
}

// Apply fills Amazon_URL where it is missing and then replaces URL with it.
// It returns how many links were added.
func Apply(books []dataset.Book) int {
	added := 0
	for i := range books {
		b := &books[i]
		if strings.TrimSpace(b.AmazonURL) == "" {
			b.AmazonURL = AmazonSearchURL(b.Title, b.Author)
			if b.AmazonURL != "" {
				added++
			}
		}
		b.URL = b.AmazonURL
	}
	return added
}

// ClientRecord is the column subset shipped to the web client.
type ClientRecord struct {
	Title       string  `json:"Book"`
	Author      string  `json:"Author"`
	Description string  `json:"Description"`
	Genres      string  `json:"Genres"`
	AvgRating   float64 `json:"Avg_Rating"`
	NumRatings  string  `json:"Num_Ratings"`
	ImageURL    string  `json:"Image_URL"`
	URL         string  `json:"URL"`
	AmazonURL   string  `json:"Amazon_URL"`
}

// ClientRecords projects books onto the client columns.
func ClientRecords(books []dataset.Book) []ClientRecord {
	out := make([]ClientRecord, 0, len(books))
	for _, b := range books {
		out = append(out, ClientRecord{
			Title:       b.Title,
			Author:      b.Author,
			Description: b.Description,
			Genres:      b.Genres,
			AvgRating:   b.AvgRating,
			NumRatings:  b.NumRatings,
			ImageURL:    b.ImageURL,
			URL:         b.URL,
			AmazonURL:   b.AmazonURL,
		})
	}
	return out
}
