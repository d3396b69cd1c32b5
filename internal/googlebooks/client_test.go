package googlebooks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newStub(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), Config{
		Endpoint:   srv.URL + "/",
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestSearchReturnsFirstVolume(t *testing.T) {
	var gotKey, gotQuery, gotMax string
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotQuery = r.URL.Query().Get("q")
		gotMax = r.URL.Query().Get("maxResults")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"books#volumes","totalItems":1,"items":[{"id":"abc123","volumeInfo":{"title":"Dune","imageLinks":{"thumbnail":"http://books.google.com/thumb?id=abc123"}}}]}`))
	})

	vol, err := client.Search(context.Background(), "K1", "Dune")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if vol == nil {
		t.Fatal("Expected a volume, got nil")
	}

	if vol.ID != "abc123" {
		t.Errorf("Expected id abc123, got %s", vol.ID)
	}
	if vol.Title != "Dune" {
		t.Errorf("Expected title Dune, got %s", vol.Title)
	}
	if vol.Thumbnail != "http://books.google.com/thumb?id=abc123" {
		t.Errorf("Unexpected thumbnail %s", vol.Thumbnail)
	}
	if gotKey != "K1" {
		t.Errorf("Expected key K1, got %s", gotKey)
	}
	if gotQuery != "intitle:Dune" {
		t.Errorf("Expected query intitle:Dune, got %s", gotQuery)
	}
	if gotMax != "1" {
		t.Errorf("Expected maxResults 1, got %s", gotMax)
	}
}

func TestSearchNoItems(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"books#volumes","totalItems":0}`))
	})

	vol, err := client.Search(context.Background(), "K1", "Nothing Here")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if vol != nil {
		t.Errorf("Expected nil volume, got %+v", vol)
	}
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		rateLimited bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, rateLimited: true},
		{name: "forbidden", status: http.StatusForbidden},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
			})

			_, err := client.Search(context.Background(), "K1", "Dune")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if got := errors.Is(err, ErrRateLimited); got != tt.rateLimited {
				t.Errorf("Expected rate limited %v, got %v (%v)", tt.rateLimited, got, err)
			}
		})
	}
}

func TestSearchMalformedJSON(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{not json`))
	})

	if _, err := client.Search(context.Background(), "K1", "Dune"); err == nil {
		t.Error("Expected decode error, got nil")
	}
}
