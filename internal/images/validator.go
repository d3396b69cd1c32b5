package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/lehigh-university-libraries/coverscout/internal/metrics"
	"github.com/patrickmn/go-cache"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Verdict is the outcome of validating one candidate image.
type Verdict string

const (
	Accepted            Verdict = "accepted"
	RejectedFetch       Verdict = "fetch_failed"
	RejectedStatus      Verdict = "bad_status"
	RejectedContentType Verdict = "not_image"
	RejectedDecode      Verdict = "undecodable"
	RejectedPlaceholder Verdict = "placeholder"
	RejectedTooSmall    Verdict = "too_small"
	RejectedTooLarge    Verdict = "too_large"
	RejectedFingerprint Verdict = "known_placeholder"
)

// Options tunes the acceptance heuristics.
type Options struct {
	// An image whose darkest pixel is brighter than this is treated as a
	// "no cover available" graphic.
	BrightnessThreshold int
	MinWidth            int
	MinHeight           int
	// MaxPixels caps width*height, read from the image header before the
	// pixels are decoded. Zero disables the cap.
	MaxPixels int

	// PlaceholderHashes are dHashes of known placeholder graphics. Images
	// closer than HashDistance to any of them are rejected.
	PlaceholderHashes []*goimagehash.ImageHash
	HashDistance      int

	// CacheTTL keeps verdicts per URL. Zero disables the cache.
	CacheTTL time.Duration
}

// DefaultOptions returns the thresholds used against Google Books covers.
func DefaultOptions() Options {
	return Options{
		BrightnessThreshold: 150,
		MinWidth:            100,
		MinHeight:           150,
		MaxPixels:           50_000_000,
		HashDistance:        10,
		CacheTTL:            time.Hour,
	}
}

// Validator decides whether a URL points at a usable cover image.
type Validator struct {
	fetcher *Fetcher
	opts    Options
	cache   *cache.Cache
	metrics *metrics.Metrics
}

// NewValidator creates a validator. m may be nil.
func NewValidator(fetcher *Fetcher, opts Options, m *metrics.Metrics) *Validator {
	if fetcher == nil {
		fetcher = NewFetcher()
	}
	v := &Validator{
		fetcher: fetcher,
		opts:    opts,
		metrics: m,
	}
	if opts.CacheTTL > 0 {
		v.cache = cache.New(opts.CacheTTL, opts.CacheTTL*2)
	}
	return v
}

// Validate reports whether url serves an acceptable cover. Every failure is a
// rejection; nothing is returned as an error.
func (v *Validator) Validate(ctx context.Context, url string) bool {
	if v.cache != nil {
		if cached, found := v.cache.Get(url); found {
			if verdict, ok := cached.(Verdict); ok {
				v.metrics.ObserveCacheHit()
				return verdict == Accepted
			}
		}
	}

	start := time.Now()
	verdict := v.check(ctx, url)
	v.metrics.ObserveProbe(string(verdict), time.Since(start).Seconds())

	slog.Debug("Validated candidate image", "url", url, "verdict", verdict)

	// Fetch failures may be transient, so only content verdicts are cached
	if v.cache != nil && verdict != RejectedFetch {
		v.cache.Set(url, verdict, cache.DefaultExpiration)
	}

	return verdict == Accepted
}

func (v *Validator) check(ctx context.Context, url string) Verdict {
	data, err := v.fetcher.Fetch(ctx, url)
	switch {
	case errors.Is(err, errStatus):
		return RejectedStatus
	case errors.Is(err, errContentType):
		return RejectedContentType
	case err != nil:
		return RejectedFetch
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return RejectedDecode
	}
	if v.opts.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(v.opts.MaxPixels) {
		slog.Debug("Image too large to decode", "url", url, "width", cfg.Width, "height", cfg.Height)
		return RejectedTooLarge
	}
	if cfg.Width < v.opts.MinWidth || cfg.Height < v.opts.MinHeight {
		return RejectedTooSmall
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return RejectedDecode
	}

	return v.Inspect(img)
}

// Inspect applies the pixel heuristics to a decoded image.
func (v *Validator) Inspect(img image.Image) Verdict {
	if int(MinLuminance(img)) > v.opts.BrightnessThreshold {
		return RejectedPlaceholder
	}

	b := img.Bounds()
	if b.Dx() < v.opts.MinWidth || b.Dy() < v.opts.MinHeight {
		return RejectedTooSmall
	}

	if len(v.opts.PlaceholderHashes) > 0 {
		hash, err := goimagehash.DifferenceHash(img)
		if err == nil {
			for _, known := range v.opts.PlaceholderHashes {
				if dist, err := hash.Distance(known); err == nil && dist < v.opts.HashDistance {
					return RejectedFingerprint
				}
			}
		}
	}

	return Accepted
}

// MinLuminance returns the darkest 8-bit luma value in img. An empty image
// reports 255.
func MinLuminance(img image.Image) uint8 {
	b := img.Bounds()
	darkest := uint8(255)

	switch src := img.(type) {
	case *image.YCbCr:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.YOffset(b.Min.X, y)
			for _, l := range src.Y[off : off+b.Dx()] {
				if l < darkest {
					darkest = l
				}
			}
			if darkest == 0 {
				return 0
			}
		}
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			for _, l := range src.Pix[off : off+b.Dx()] {
				if l < darkest {
					darkest = l
				}
			}
			if darkest == 0 {
				return 0
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				if l := luma(c.R, c.G, c.B); l < darkest {
					darkest = l
				}
			}
			if darkest == 0 {
				return 0
			}
		}
	}

	return darkest
}

// luma uses the ITU-R 601-2 weights, rounded to the nearest integer.
func luma(r, g, b uint8) uint8 {
	return uint8((19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16)
}

// ParsePlaceholderHashes decodes hashes written by goimagehash's ToString,
// e.g. "d:ffe0c0c0c0e0f0ff".
func ParsePlaceholderHashes(values []string) ([]*goimagehash.ImageHash, error) {
	hashes := make([]*goimagehash.ImageHash, 0, len(values))
	for _, s := range values {
		h, err := goimagehash.ImageHashFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid placeholder hash %q: %w", s, err)
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}
