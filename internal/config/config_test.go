package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_BOOKS_KEYS", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Lookup.RateLimitBackoff != 10*time.Second {
		t.Errorf("Expected 10s rate limit backoff, got %v", cfg.Lookup.RateLimitBackoff)
	}
	if cfg.Lookup.ErrorBackoff != 5*time.Second {
		t.Errorf("Expected 5s error backoff, got %v", cfg.Lookup.ErrorBackoff)
	}
	if cfg.Lookup.Cooldown != 15*time.Minute {
		t.Errorf("Expected 15m cooldown, got %v", cfg.Lookup.Cooldown)
	}
	if cfg.Driver.RowDelay != 2500*time.Millisecond {
		t.Errorf("Expected 2.5s row delay, got %v", cfg.Driver.RowDelay)
	}
	if cfg.Images.MaxZoom != 6 || cfg.Images.MinZoom != 1 {
		t.Errorf("Expected zoom 6..1, got %d..%d", cfg.Images.MaxZoom, cfg.Images.MinZoom)
	}
	if cfg.Images.BrightnessThreshold != 150 {
		t.Errorf("Expected brightness threshold 150, got %d", cfg.Images.BrightnessThreshold)
	}
	if cfg.Images.MaxPixels != 50_000_000 {
		t.Errorf("Expected max pixels 50000000, got %d", cfg.Images.MaxPixels)
	}
	if cfg.Files.Progress != "final_book_data.xlsx" {
		t.Errorf("Expected default progress file, got %s", cfg.Files.Progress)
	}

	if err := cfg.Validate(); !errors.Is(err, ErrNoKeys) {
		t.Errorf("Expected ErrNoKeys, got %v", err)
	}
}

func TestLoadKeysFromEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		value    string
		expected []string
	}{
		{"google variable", "GOOGLE_BOOKS_KEYS", "K1, K2,,K3 ", []string{"K1", "K2", "K3"}},
		{"prefixed variable", "COVERSCOUT_BOOKS_KEYS", "only", []string{"only"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOOGLE_BOOKS_KEYS", "")
			t.Setenv("COVERSCOUT_BOOKS_KEYS", "")
			t.Setenv(tt.env, tt.value)

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !reflect.DeepEqual(cfg.Books.Keys, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, cfg.Books.Keys)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("GOOGLE_BOOKS_KEYS", "")
	t.Setenv("COVERSCOUT_LOOKUP_COOLDOWN", "2m")

	path := filepath.Join(t.TempDir(), "coverscout.yaml")
	content := `books:
  keys: [K1, K2]
lookup:
  cooldown: 1m
  max_passes: 3
images:
  max_zoom: 4
  max_pixels: 1000000
  placeholder_hashes:
    - "d:0000000000000000"
driver:
  row_delay: 0s
  checkpoint_every: 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.Books.Keys, []string{"K1", "K2"}) {
		t.Errorf("Expected keys from file, got %v", cfg.Books.Keys)
	}
	if cfg.Lookup.Cooldown != 2*time.Minute {
		t.Errorf("Expected environment to override file, got %v", cfg.Lookup.Cooldown)
	}
	if cfg.Lookup.MaxPasses != 3 {
		t.Errorf("Expected max passes 3, got %d", cfg.Lookup.MaxPasses)
	}
	if cfg.Driver.RowDelay != 0 || cfg.Driver.CheckpointEvery != 10 {
		t.Errorf("Unexpected driver config %+v", cfg.Driver)
	}

	opts, err := cfg.ImageOptions()
	if err != nil {
		t.Fatalf("ImageOptions failed: %v", err)
	}
	if opts.MaxPixels != 1000000 {
		t.Errorf("Expected max pixels 1000000, got %d", opts.MaxPixels)
	}
	if len(opts.PlaceholderHashes) != 1 {
		t.Errorf("Expected 1 placeholder hash, got %d", len(opts.PlaceholderHashes))
	}

	r := cfg.Resolver(nil)
	if r.MaxZoom != 4 || r.MinZoom != 1 {
		t.Errorf("Expected resolver zoom 4..1, got %d..%d", r.MaxZoom, r.MinZoom)
	}

	if got := cfg.LookupOptions(); got.MaxPasses != 3 || got.RateLimitBackoff != 10*time.Second {
		t.Errorf("Unexpected lookup options %+v", got)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestValidateZoomRange(t *testing.T) {
	cfg := &Config{
		Books:  BooksConfig{Keys: []string{"K1"}},
		Images: ImagesConfig{MaxZoom: 1, MinZoom: 3},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for inverted zoom range")
	}
}

func TestImageOptionsInvalidHash(t *testing.T) {
	cfg := &Config{Images: ImagesConfig{PlaceholderHashes: []string{"not-a-hash"}}}
	if _, err := cfg.ImageOptions(); err == nil {
		t.Fatal("Expected error for invalid placeholder hash")
	}
}
