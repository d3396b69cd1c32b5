// Package genres turns the free-form Genres column into lists and builds the
// dropdown taxonomy the web client filters on.
package genres

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/coverscout/internal/dataset"
)

var (
	quotedItem = regexp.MustCompile(`'([^']+)'`)
	separator  = regexp.MustCompile(`[,;]`)
)

// Option is one entry of the genre dropdown.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ClientBook is a record with Genres expanded into a list.
type ClientBook struct {
	Title       string   `json:"Book"`
	Author      string   `json:"Author"`
	Description string   `json:"Description"`
	Genres      []string `json:"Genres"`
	AvgRating   float64  `json:"Avg_Rating"`
	NumRatings  string   `json:"Num_Ratings"`
	URL         string   `json:"URL"`
	ImageURL    string   `json:"Image_URL"`
	AmazonURL   string   `json:"Amazon_URL"`
}

// Parse splits a raw Genres value. Values shaped like a list literal are
// read as JSON, with single quotes accepted. When that fails the quoted
// items are extracted, and anything else is split on commas and semicolons.
func Parse(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return []string{}
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var items []interface{}
		if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &items); err == nil {
			out := make([]string, 0, len(items))
			for _, it := range items {
				if it == nil {
					continue
				}
				text := strings.TrimSpace(fmt.Sprint(it))
				if text != "" {
					out = append(out, text)
				}
			}
			return out
		}

		if matches := quotedItem.FindAllStringSubmatch(s, -1); len(matches) > 0 {
			out := make([]string, 0, len(matches))
			for _, m := range matches {
				out = append(out, strings.TrimSpace(m[1]))
			}
			return out
		}
	}

	var out []string
	for _, part := range separator.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

// Taxonomy collects every distinct genre. Internal whitespace is collapsed,
// the first spelling of a genre wins and the result is sorted
// case-insensitively.
func Taxonomy(lists [][]string) []Option {
	seen := make(map[string]bool)
	var labels []string

	for _, items := range lists {
		for _, it := range items {
			label := strings.Join(strings.Fields(it), " ")
			key := strings.ToLower(label)
			if label == "" || seen[key] {
				continue
			}
			seen[key] = true
			labels = append(labels, label)
		}
	}

	sort.SliceStable(labels, func(i, j int) bool {
		return strings.ToLower(labels[i]) < strings.ToLower(labels[j])
	})

	options := make([]Option, 0, len(labels))
	for _, l := range labels {
		options = append(options, Option{Value: strings.ToLower(l), Label: l})
	}
	return options
}

// Expand parses the Genres column of every book and returns the client
// records together with the taxonomy built from them.
func Expand(books []dataset.Book) ([]ClientBook, []Option) {
	out := make([]ClientBook, 0, len(books))
	lists := make([][]string, 0, len(books))

	for _, b := range books {
		items := Parse(b.Genres)
		lists = append(lists, items)
		out = append(out, ClientBook{
			Title:       b.Title,
			Author:      b.Author,
			Description: b.Description,
			Genres:      items,
			AvgRating:   b.AvgRating,
			NumRatings:  b.NumRatings,
			URL:         b.URL,
			ImageURL:    b.ImageURL,
			AmazonURL:   b.AmazonURL,
		})
	}

	return out, Taxonomy(lists)
}
