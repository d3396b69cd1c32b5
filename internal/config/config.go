// Package config loads coverscout settings from defaults, an optional YAML
// file and COVERSCOUT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/coverscout/internal/enrich"
	"github.com/lehigh-university-libraries/coverscout/internal/googlebooks"
	"github.com/lehigh-university-libraries/coverscout/internal/images"
	"github.com/lehigh-university-libraries/coverscout/internal/lookup"
	"github.com/spf13/viper"
)

// ErrNoKeys is returned by Validate when no Google Books API key is set.
var ErrNoKeys = errors.New("no Google Books API keys configured (set GOOGLE_BOOKS_KEYS or books.keys)")

const envPrefix = "COVERSCOUT"

type Config struct {
	Books       BooksConfig  `mapstructure:"books"`
	Files       FilesConfig  `mapstructure:"files"`
	Lookup      LookupConfig `mapstructure:"lookup"`
	Images      ImagesConfig `mapstructure:"images"`
	Driver      DriverConfig `mapstructure:"driver"`
	ReportDir   string       `mapstructure:"report_dir"`
	MetricsAddr string       `mapstructure:"metrics_addr"`
}

type BooksConfig struct {
	Keys           []string      `mapstructure:"keys"`
	Endpoint       string        `mapstructure:"endpoint"`
	CoverURL       string        `mapstructure:"cover_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// FilesConfig names the spreadsheets and exports. Progress is read first
// when it exists, then Cleaned, then Raw.
type FilesConfig struct {
	Raw        string `mapstructure:"raw"`
	Cleaned    string `mapstructure:"cleaned"`
	Progress   string `mapstructure:"progress"`
	OutputJSON string `mapstructure:"output_json"`
	Parquet    string `mapstructure:"parquet"`
	ClientDir  string `mapstructure:"client_dir"`
}

type LookupConfig struct {
	RateLimitBackoff time.Duration `mapstructure:"rate_limit_backoff"`
	ErrorBackoff     time.Duration `mapstructure:"error_backoff"`
	Cooldown         time.Duration `mapstructure:"cooldown"`
	MaxPasses        int           `mapstructure:"max_passes"`
	MaxDuration      time.Duration `mapstructure:"max_duration"`
}

type ImagesConfig struct {
	MaxZoom             int           `mapstructure:"max_zoom"`
	MinZoom             int           `mapstructure:"min_zoom"`
	BrightnessThreshold int           `mapstructure:"brightness_threshold"`
	MinWidth            int           `mapstructure:"min_width"`
	MinHeight           int           `mapstructure:"min_height"`
	MaxPixels           int           `mapstructure:"max_pixels"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxBytes            int64         `mapstructure:"max_bytes"`
	PlaceholderHashes   []string      `mapstructure:"placeholder_hashes"`
	HashDistance        int           `mapstructure:"hash_distance"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

type DriverConfig struct {
	RowDelay        time.Duration `mapstructure:"row_delay"`
	CheckpointEvery int           `mapstructure:"checkpoint_every"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("books.keys", []string{})
	v.SetDefault("books.endpoint", "")
	v.SetDefault("books.cover_url", images.DefaultCoverURL)
	v.SetDefault("books.request_timeout", 10*time.Second)

	v.SetDefault("files.raw", "goodreads_data.xlsx")
	v.SetDefault("files.cleaned", "updated_goodreads_data.xlsx")
	v.SetDefault("files.progress", "final_book_data.xlsx")
	v.SetDefault("files.output_json", "final_book_data.json")
	v.SetDefault("files.parquet", "")
	v.SetDefault("files.client_dir", "client/public")

	lookupDefaults := lookup.DefaultOptions()
	v.SetDefault("lookup.rate_limit_backoff", lookupDefaults.RateLimitBackoff)
	v.SetDefault("lookup.error_backoff", lookupDefaults.ErrorBackoff)
	v.SetDefault("lookup.cooldown", lookupDefaults.Cooldown)
	v.SetDefault("lookup.max_passes", 0)
	v.SetDefault("lookup.max_duration", time.Duration(0))

	imageDefaults := images.DefaultOptions()
	v.SetDefault("images.max_zoom", 6)
	v.SetDefault("images.min_zoom", 1)
	v.SetDefault("images.brightness_threshold", imageDefaults.BrightnessThreshold)
	v.SetDefault("images.min_width", imageDefaults.MinWidth)
	v.SetDefault("images.min_height", imageDefaults.MinHeight)
	v.SetDefault("images.max_pixels", imageDefaults.MaxPixels)
	v.SetDefault("images.timeout", 10*time.Second)
	v.SetDefault("images.max_bytes", int64(10*1024*1024))
	v.SetDefault("images.placeholder_hashes", []string{})
	v.SetDefault("images.hash_distance", imageDefaults.HashDistance)
	v.SetDefault("images.cache_ttl", imageDefaults.CacheTTL)

	driverDefaults := enrich.DefaultOptions()
	v.SetDefault("driver.row_delay", driverDefaults.RowDelay)
	v.SetDefault("driver.checkpoint_every", driverDefaults.CheckpointEvery)

	v.SetDefault("report_dir", "reports")
	v.SetDefault("metrics_addr", "")
}

// Load reads configuration. An explicit configFile must exist; otherwise
// coverscout.yaml in the working directory is used when present.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("books.keys", envPrefix+"_BOOKS_KEYS", "GOOGLE_BOOKS_KEYS"); err != nil {
		return nil, fmt.Errorf("failed to bind key environment: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("coverscout")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if used := v.ConfigFileUsed(); used != "" {
		slog.Debug("Loaded config file", "path", used)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Books.Keys = trim(cfg.Books.Keys)
	cfg.Images.PlaceholderHashes = trim(cfg.Images.PlaceholderHashes)

	return cfg, nil
}

func trim(values []string) []string {
	out := make([]string, 0, len(values))
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the settings needed for cover lookups.
func (c *Config) Validate() error {
	if len(c.Books.Keys) == 0 {
		return ErrNoKeys
	}
	if c.Images.MinZoom < 1 || c.Images.MaxZoom < c.Images.MinZoom {
		return fmt.Errorf("invalid zoom range %d..%d", c.Images.MaxZoom, c.Images.MinZoom)
	}
	if c.Driver.CheckpointEvery < 0 {
		return fmt.Errorf("checkpoint_every must not be negative")
	}
	return nil
}

// ImageOptions converts the images section, parsing placeholder hashes.
func (c *Config) ImageOptions() (images.Options, error) {
	hashes, err := images.ParsePlaceholderHashes(c.Images.PlaceholderHashes)
	if err != nil {
		return images.Options{}, err
	}
	return images.Options{
		BrightnessThreshold: c.Images.BrightnessThreshold,
		MinWidth:            c.Images.MinWidth,
		MinHeight:           c.Images.MinHeight,
		MaxPixels:           c.Images.MaxPixels,
		PlaceholderHashes:   hashes,
		HashDistance:        c.Images.HashDistance,
		CacheTTL:            c.Images.CacheTTL,
	}, nil
}

// Fetcher builds the image downloader.
func (c *Config) Fetcher() *images.Fetcher {
	f := images.NewFetcher()
	if c.Images.Timeout > 0 {
		f.Timeout = c.Images.Timeout
		f.HTTPClient.Timeout = c.Images.Timeout
	}
	if c.Images.MaxBytes > 0 {
		f.MaxBytes = c.Images.MaxBytes
	}
	return f
}

// Resolver builds the zoom prober around checker.
func (c *Config) Resolver(checker images.Checker) *images.Resolver {
	r := images.NewResolver(checker)
	r.MaxZoom = c.Images.MaxZoom
	r.MinZoom = c.Images.MinZoom
	if c.Books.CoverURL != "" {
		r.Template = c.Books.CoverURL
	}
	return r
}

func (c *Config) BooksClient() googlebooks.Config {
	return googlebooks.Config{
		Endpoint: c.Books.Endpoint,
		Timeout:  c.Books.RequestTimeout,
	}
}

func (c *Config) LookupOptions() lookup.Options {
	return lookup.Options{
		RateLimitBackoff: c.Lookup.RateLimitBackoff,
		ErrorBackoff:     c.Lookup.ErrorBackoff,
		Cooldown:         c.Lookup.Cooldown,
		MaxPasses:        c.Lookup.MaxPasses,
		MaxDuration:      c.Lookup.MaxDuration,
	}
}

func (c *Config) DriverOptions() enrich.Options {
	return enrich.Options{
		RowDelay:        c.Driver.RowDelay,
		CheckpointEvery: c.Driver.CheckpointEvery,
	}
}
