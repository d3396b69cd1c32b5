package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 10 * 1024 * 1024
	userAgent       = "coverscout/0.1 (+https://github.com/lehigh-university-libraries/coverscout)"
)

var (
	errStatus      = errors.New("unexpected status")
	errContentType = errors.New("not an image")
)

// Fetcher downloads candidate cover images.
type Fetcher struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	MaxBytes   int64
}

// NewFetcher creates a fetcher with a 10 second per-request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		Timeout:  defaultTimeout,
		MaxBytes: defaultMaxBytes,
	}
}

// Fetch downloads url and returns the body. Non-200 responses and responses
// whose Content-Type does not start with "image" are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBytes := f.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errStatus, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image") {
		return nil, fmt.Errorf("%w: content type %q", errContentType, ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return data, nil
}
