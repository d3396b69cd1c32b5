// Package googlebooks searches the Google Books volumes API with a caller
// supplied API key on every request.
package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	books "google.golang.org/api/books/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrRateLimited is returned when the API answers with HTTP 429.
var ErrRateLimited = errors.New("google books rate limit exceeded")

// Volume is the subset of a search hit needed to find a cover.
type Volume struct {
	ID        string
	Title     string
	Thumbnail string
}

// Client wraps the generated Books service.
type Client struct {
	service *books.Service
}

// Config configures the client. Endpoint overrides the API base URL and is
// mainly useful against a local stub.
type Config struct {
	Endpoint   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient creates a client. Keys are attached per call, so the service
// itself is built without credentials.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	opts := []option.ClientOption{
		option.WithoutAuthentication(),
		option.WithHTTPClient(httpClient),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := books.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create books service: %w", err)
	}

	return &Client{service: service}, nil
}

// Search looks up title with key and returns the first hit, or nil when the
// search has no results.
func (c *Client) Search(ctx context.Context, key, title string) (*Volume, error) {
	resp, err := c.service.Volumes.List("intitle:" + title).
		MaxResults(1).
		Context(ctx).
		Do(googleapi.QueryParameter("key", key))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		}
		return nil, fmt.Errorf("failed to search volumes: %w", err)
	}

	if len(resp.Items) == 0 || resp.Items[0] == nil {
		return nil, nil
	}

	item := resp.Items[0]
	vol := &Volume{ID: item.Id}
	if info := item.VolumeInfo; info != nil {
		vol.Title = info.Title
		if info.ImageLinks != nil {
			vol.Thumbnail = info.ImageLinks.Thumbnail
		}
	}

	return vol, nil
}
