// Package enrich walks the working set and fills in cover URLs one row at a
// time.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/coverscout/internal/dataset"
	"github.com/lehigh-university-libraries/coverscout/internal/lookup"
	"github.com/lehigh-university-libraries/coverscout/internal/metrics"
	"golang.org/x/time/rate"
)

// Finder resolves a title to a cover URL.
type Finder interface {
	Find(ctx context.Context, title string) (lookup.Result, error)
}

// Checkpointer persists the working set.
type Checkpointer interface {
	Save(books []dataset.Book) error
}

// Options controls pacing and checkpointing.
type Options struct {
	// RowDelay is the minimum interval between the starts of two lookups.
	// A lookup that runs longer than RowDelay is followed immediately by the
	// next one. Zero disables it.
	RowDelay time.Duration
	// CheckpointEvery saves after this many processed rows. Zero disables
	// intermediate saves.
	CheckpointEvery int
}

func DefaultOptions() Options {
	return Options{
		RowDelay:        2500 * time.Millisecond,
		CheckpointEvery: 50,
	}
}

// Summary describes one run.
type Summary struct {
	Total       int           `yaml:"total"`
	Pending     int           `yaml:"pending"`
	Processed   int           `yaml:"processed"`
	Covers      int           `yaml:"covers"`
	Thumbnails  int           `yaml:"thumbnails"`
	NotFound    int           `yaml:"not_found"`
	Checkpoints int           `yaml:"checkpoints"`
	Interrupted bool          `yaml:"interrupted"`
	Exhausted   bool          `yaml:"exhausted"`
	StartedAt   time.Time     `yaml:"started_at"`
	Duration    time.Duration `yaml:"duration"`
	Rows        []Row         `yaml:"rows"`
}

// Row records the outcome of one processed title.
type Row struct {
	Title  string        `yaml:"title"`
	Source lookup.Source `yaml:"source"`
	URL    string        `yaml:"url,omitempty"`
}

// Resolved returns the number of rows that received a URL.
func (s *Summary) Resolved() int {
	return s.Covers + s.Thumbnails
}

// Driver runs lookups for every row still missing an Image_URL.
type Driver struct {
	finder  Finder
	store   Checkpointer
	limiter *rate.Limiter
	opts    Options
	metrics *metrics.Metrics
}

// New creates a Driver. m may be nil.
func New(finder Finder, store Checkpointer, opts Options, m *metrics.Metrics) *Driver {
	limit := rate.Inf
	if opts.RowDelay > 0 {
		limit = rate.Every(opts.RowDelay)
	}
	return &Driver{
		finder:  finder,
		store:   store,
		limiter: rate.NewLimiter(limit, 1),
		opts:    opts,
		metrics: m,
	}
}

// Run enriches books in place and saves them when it stops. Rows that
// already carry a URL or NOT_FOUND are skipped. A cancelled context or an
// exhausted lookup ends the run early; completed rows are still saved and
// the summary is returned together with the error.
func (d *Driver) Run(ctx context.Context, books []dataset.Book) (*Summary, error) {
	pending := dataset.Pending(books)
	summary := &Summary{
		Total:     len(books),
		Pending:   len(pending),
		StartedAt: time.Now(),
	}

	slog.Info("Starting cover enrichment", "total", len(books), "pending", len(pending))

	runErr := d.process(ctx, books, pending, summary)

	if err := d.store.Save(books); err != nil {
		if runErr == nil {
			runErr = err
		}
		slog.Error("Final save failed", "error", err)
	}
	summary.Duration = time.Since(summary.StartedAt)

	return summary, runErr
}

func (d *Driver) process(ctx context.Context, books []dataset.Book, pending []int, summary *Summary) error {
	for n, i := range pending {
		b := &books[i]

		res := lookup.Result{Source: lookup.SourceNone}
		if strings.TrimSpace(b.Title) == "" {
			slog.Warn("Skipping book without a title", "index", n+1, "total", len(pending))
		} else {
			if err := d.limiter.Wait(ctx); err != nil {
				summary.Interrupted = true
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return fmt.Errorf("failed to wait for next row: %w", err)
			}

			slog.Info("Processing book", "index", n+1, "total", len(pending), "title", b.Title)

			var err error
			res, err = d.finder.Find(ctx, b.Title)
			if err != nil {
				switch {
				case errors.Is(err, lookup.ErrExhausted):
					summary.Exhausted = true
					slog.Warn("Stopping run, API keys exhausted", "title", b.Title)
				default:
					summary.Interrupted = true
					slog.Warn("Run interrupted", "title", b.Title, "processed", summary.Processed)
				}
				return err
			}
		}

		switch res.Source {
		case lookup.SourceCover:
			b.ImageURL = res.URL
			summary.Covers++
		case lookup.SourceThumbnail:
			b.ImageURL = res.URL
			summary.Thumbnails++
		default:
			b.ImageURL = dataset.NotFound
			summary.NotFound++
		}
		summary.Processed++
		summary.Rows = append(summary.Rows, Row{Title: b.Title, Source: res.Source, URL: res.URL})
		d.metrics.ObserveRow(string(res.Source))

		slog.Debug("Resolved book", "title", b.Title, "source", res.Source, "url", b.ImageURL)

		if d.opts.CheckpointEvery > 0 && summary.Processed%d.opts.CheckpointEvery == 0 {
			if err := d.store.Save(books); err != nil {
				slog.Warn("Checkpoint failed", "processed", summary.Processed, "error", err)
				continue
			}
			summary.Checkpoints++
			slog.Info("Checkpoint saved", "processed", summary.Processed)
		}
	}
	return nil
}
