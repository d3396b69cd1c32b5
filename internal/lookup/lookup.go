// Package lookup turns a free-text book title into a cover image URL.
//
// A lookup runs in passes. Each pass tries every API key once: a successful
// search is resolved to a cover and returned, a rate limited or failed search
// backs off and moves to the next key. When a whole pass fails the lookup
// cools down and starts over. Passes are unbounded unless MaxPasses or
// MaxDuration is set.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/coverscout/internal/googlebooks"
	"github.com/lehigh-university-libraries/coverscout/internal/keyring"
	"github.com/lehigh-university-libraries/coverscout/internal/metrics"
)

// ErrExhausted is returned when a configured pass or time bound runs out
// before any key produced a usable search response.
var ErrExhausted = errors.New("lookup gave up after repeated API key exhaustion")

// Source says where a result URL came from.
type Source string

const (
	SourceNone      Source = "not_found"
	SourceCover     Source = "cover"
	SourceThumbnail Source = "thumbnail"
)

// Result is the outcome of one title lookup.
type Result struct {
	URL      string
	Source   Source
	VolumeID string
}

// Found reports whether the lookup produced a URL.
func (r Result) Found() bool {
	return r.URL != ""
}

// Searcher queries the metadata API with one key.
type Searcher interface {
	Search(ctx context.Context, key, title string) (*googlebooks.Volume, error)
}

// CoverResolver picks a validated cover URL for a volume.
type CoverResolver interface {
	Resolve(ctx context.Context, volumeID string) (string, bool)
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options holds the timing and bounds of a Lookup.
type Options struct {
	RateLimitBackoff time.Duration
	ErrorBackoff     time.Duration
	Cooldown         time.Duration

	// Zero means unbounded.
	MaxPasses   int
	MaxDuration time.Duration
}

// DefaultOptions returns 10s / 5s / 15m backoffs with no bound.
func DefaultOptions() Options {
	return Options{
		RateLimitBackoff: 10 * time.Second,
		ErrorBackoff:     5 * time.Second,
		Cooldown:         15 * time.Minute,
	}
}

// Lookup owns a key ring and resolves titles one at a time.
type Lookup struct {
	search   Searcher
	resolver CoverResolver
	keys     *keyring.Ring
	opts     Options
	metrics  *metrics.Metrics

	// Sleep and Now are replaceable for tests.
	Sleep SleepFunc
	Now   func() time.Time
}

// New creates a Lookup. m may be nil.
func New(search Searcher, resolver CoverResolver, keys *keyring.Ring, opts Options, m *metrics.Metrics) *Lookup {
	return &Lookup{
		search:   search,
		resolver: resolver,
		keys:     keys,
		opts:     opts,
		metrics:  m,
		Sleep:    Sleep,
		Now:      time.Now,
	}
}

// Find resolves title to a cover URL. A result with Source SourceNone means
// no usable image exists. Errors are limited to context cancellation and
// ErrExhausted.
func (l *Lookup) Find(ctx context.Context, title string) (Result, error) {
	start := l.Now()

	for pass := 1; ; pass++ {
		res, done, err := l.pass(ctx, title)
		if err != nil {
			return Result{}, err
		}
		if done {
			return res, nil
		}

		if l.opts.MaxPasses > 0 && pass >= l.opts.MaxPasses {
			return Result{}, fmt.Errorf("%w: %d passes for %q", ErrExhausted, pass, title)
		}
		if l.opts.MaxDuration > 0 && l.Now().Sub(start) >= l.opts.MaxDuration {
			return Result{}, fmt.Errorf("%w: %s elapsed for %q", ErrExhausted, l.Now().Sub(start), title)
		}

		slog.Warn("All API keys throttled, cooling down",
			"title", title,
			"pass", pass,
			"keys", l.keys.Len(),
			"cooldown", l.opts.Cooldown)
		l.metrics.ObserveCooldown()

		if err := l.Sleep(ctx, l.opts.Cooldown); err != nil {
			return Result{}, err
		}
	}
}

// pass tries each key once. done is false when every attempt was rate
// limited or failed.
func (l *Lookup) pass(ctx context.Context, title string) (Result, bool, error) {
	n := l.keys.Len()

	for attempt := 1; attempt <= n; attempt++ {
		key := l.keys.Next()

		vol, err := l.search.Search(ctx, key, title)
		if err == nil {
			l.metrics.ObserveSearch("ok")
			res := l.resolve(ctx, title, vol)
			// A probe cut short by cancellation must not be reported as not found
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, false, ctxErr
			}
			return res, true, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, false, ctxErr
		}

		backoff := l.opts.ErrorBackoff
		if errors.Is(err, googlebooks.ErrRateLimited) {
			backoff = l.opts.RateLimitBackoff
			l.metrics.ObserveSearch("rate_limited")
			slog.Warn("API key hit rate limit, trying next key",
				"key", fmt.Sprintf("%d/%d", attempt, n),
				"backoff", backoff)
		} else {
			l.metrics.ObserveSearch("error")
			slog.Warn("Search failed",
				"title", title,
				"key", fmt.Sprintf("%d/%d", attempt, n),
				"backoff", backoff,
				"error", err)
		}

		if err := l.Sleep(ctx, backoff); err != nil {
			return Result{}, false, err
		}
	}

	return Result{}, false, nil
}

// resolve prefers a validated zoom rendering and falls back to the thumbnail
// the API declared for the volume.
func (l *Lookup) resolve(ctx context.Context, title string, vol *googlebooks.Volume) Result {
	if vol == nil {
		slog.Debug("No search results", "title", title)
		return Result{Source: SourceNone}
	}

	if vol.ID != "" {
		if url, ok := l.resolver.Resolve(ctx, vol.ID); ok {
			return Result{URL: url, Source: SourceCover, VolumeID: vol.ID}
		}
	}

	if vol.Thumbnail != "" {
		return Result{URL: vol.Thumbnail, Source: SourceThumbnail, VolumeID: vol.ID}
	}

	return Result{Source: SourceNone, VolumeID: vol.ID}
}

// Sleep waits for d unless ctx is cancelled first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
