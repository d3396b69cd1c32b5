// Package metrics exposes Prometheus counters for a cover enrichment run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters updated by the lookup pipeline. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Searches      *prometheus.CounterVec
	RateLimited   prometheus.Counter
	SearchErrors  prometheus.Counter
	Cooldowns     prometheus.Counter
	ImageProbes   *prometheus.CounterVec
	CacheHits     prometheus.Counter
	Rows          *prometheus.CounterVec
	ProbeDuration prometheus.Histogram
	registry      *prometheus.Registry
}

// New creates the metrics and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.init()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) init() {
	m.Searches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverscout_searches_total",
		Help: "Metadata search calls by outcome.",
	}, []string{"outcome"})

	m.RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverscout_rate_limited_total",
		Help: "Search calls rejected with HTTP 429.",
	})

	m.SearchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverscout_search_errors_total",
		Help: "Search calls that failed for reasons other than rate limiting.",
	})

	m.Cooldowns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverscout_cooldowns_total",
		Help: "Times every API key was exhausted in one pass.",
	})

	m.ImageProbes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverscout_image_probes_total",
		Help: "Candidate image validations by verdict.",
	}, []string{"verdict"})

	m.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverscout_image_cache_hits_total",
		Help: "Image validations answered from the verdict cache.",
	})

	m.Rows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverscout_rows_total",
		Help: "Processed rows by result source.",
	}, []string{"source"})

	m.ProbeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "coverscout_image_probe_duration_seconds",
		Help:    "Time spent downloading and decoding candidate images.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
}

// ObserveSearch counts a search call ("ok", "rate_limited" or "error").
func (m *Metrics) ObserveSearch(outcome string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(outcome).Inc()
	switch outcome {
	case "rate_limited":
		m.RateLimited.Inc()
	case "error":
		m.SearchErrors.Inc()
	}
}

func (m *Metrics) ObserveCooldown() {
	if m == nil {
		return
	}
	m.Cooldowns.Inc()
}

// ObserveProbe records a validator verdict and how long the probe took.
func (m *Metrics) ObserveProbe(verdict string, seconds float64) {
	if m == nil {
		return
	}
	m.ImageProbes.WithLabelValues(verdict).Inc()
	m.ProbeDuration.Observe(seconds)
}

func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// ObserveRow counts a finished row by where its URL came from.
func (m *Metrics) ObserveRow(source string) {
	if m == nil {
		return
	}
	m.Rows.WithLabelValues(source).Inc()
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.Searches.Describe(ch)
	ch <- m.RateLimited.Desc()
	ch <- m.SearchErrors.Desc()
	ch <- m.Cooldowns.Desc()
	m.ImageProbes.Describe(ch)
	ch <- m.CacheHits.Desc()
	m.Rows.Describe(ch)
	ch <- m.ProbeDuration.Desc()
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.Searches.Collect(ch)
	ch <- m.RateLimited
	ch <- m.SearchErrors
	ch <- m.Cooldowns
	m.ImageProbes.Collect(ch)
	ch <- m.CacheHits
	m.Rows.Collect(ch)
	ch <- m.ProbeDuration
}
