package images

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// DefaultCoverURL is the Google Books cover endpoint. The first verb is the
// volume id, the second the zoom level.
const DefaultCoverURL = "https://books.google.com/books/content?id=%s&printsec=frontcover&img=1&zoom=%d&source=gbs_api"

// Checker accepts or rejects a candidate image URL.
type Checker interface {
	Validate(ctx context.Context, url string) bool
}

// Resolver finds the best cover rendering for a volume by probing zoom levels
// from MaxZoom down to MinZoom.
type Resolver struct {
	Checker  Checker
	Template string
	MaxZoom  int
	MinZoom  int
}

// NewResolver creates a resolver probing zoom 6 through 1 on the Google Books
// cover endpoint.
func NewResolver(checker Checker) *Resolver {
	return &Resolver{
		Checker:  checker,
		Template: DefaultCoverURL,
		MaxZoom:  6,
		MinZoom:  1,
	}
}

// CoverURL builds the cover URL for a volume at one zoom level.
func (r *Resolver) CoverURL(volumeID string, zoom int) string {
	template := r.Template
	if template == "" {
		template = DefaultCoverURL
	}
	return fmt.Sprintf(template, url.QueryEscape(volumeID), zoom)
}

// Resolve returns the first zoom level URL the checker accepts, highest zoom
// first. ok is false when no level passes.
func (r *Resolver) Resolve(ctx context.Context, volumeID string) (string, bool) {
	for zoom := r.MaxZoom; zoom >= r.MinZoom; zoom-- {
		if ctx.Err() != nil {
			return "", false
		}

		candidate := r.CoverURL(volumeID, zoom)
		if r.Checker.Validate(ctx, candidate) {
			slog.Debug("Accepted cover", "volume_id", volumeID, "zoom", zoom)
			return candidate, true
		}
	}

	slog.Debug("No zoom level produced a usable cover", "volume_id", volumeID)
	return "", false
}
