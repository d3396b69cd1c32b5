package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NotFound marks a row whose cover lookup finished without a usable image.
const NotFound = "NOT_FOUND"

// Columns is the column order used for every tabular output.
var Columns = []string{
	"Book",
	"Author",
	"Description",
	"Genres",
	"Avg_Rating",
	"Num_Ratings",
	"URL",
	"Image_URL",
	"Amazon_URL",
}

// Book is one row of the Goodreads export.
type Book struct {
	Title       string  `json:"Book" parquet:"book"`
	Author      string  `json:"Author" parquet:"author"`
	Description string  `json:"Description" parquet:"description"`
	Genres      string  `json:"Genres" parquet:"genres"` // Raw field, usually a Python-style list
	AvgRating   float64 `json:"Avg_Rating" parquet:"avg_rating"`
	NumRatings  string  `json:"Num_Ratings" parquet:"num_ratings"` // Kept as text, exports use "1,234" style
	URL         string  `json:"URL" parquet:"url"`
	ImageURL    string  `json:"Image_URL" parquet:"image_url"` // Empty, a URL, or NotFound
	AmazonURL   string  `json:"Amazon_URL" parquet:"amazon_url"`
}

// NeedsImage reports whether the row has not been looked up yet.
func (b *Book) NeedsImage() bool {
	return strings.TrimSpace(b.ImageURL) == ""
}

// Set assigns a column from its text form. It reports false for columns the
// schema does not know.
func (b *Book) Set(column, value string) bool {
	switch column {
	case "Book":
		b.Title = value
	case "Author":
		b.Author = value
	case "Description":
		b.Description = value
	case "Genres":
		b.Genres = value
	case "Avg_Rating":
		b.AvgRating, _ = strconv.ParseFloat(strings.TrimSpace(value), 64)
	case "Num_Ratings":
		b.NumRatings = value
	case "URL":
		b.URL = value
	case "Image_URL":
		b.ImageURL = value
	case "Amazon_URL":
		b.AmazonURL = value
	default:
		return false
	}
	return true
}

// row returns the values in Columns order.
func (b *Book) row() []interface{} {
	return []interface{}{
		b.Title,
		b.Author,
		b.Description,
		b.Genres,
		b.AvgRating,
		b.NumRatings,
		b.URL,
		b.ImageURL,
		b.AmazonURL,
	}
}

// UnmarshalJSON accepts records written by pandas, where numbers, nulls and
// lists can appear in any column.
func (b *Book) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*b = Book{}
	for column, value := range raw {
		text, err := textValue(value)
		if err != nil {
			return fmt.Errorf("column %s: %w", column, err)
		}
		b.Set(column, text)
	}
	return nil
}

func textValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case []interface{}:
		encoded, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	default:
		return "", fmt.Errorf("unsupported value %T", v)
	}
}
