// Package report writes a YAML record of each enrichment run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/coverscout/internal/enrich"
	"gopkg.in/yaml.v3"
)

// RunConfig describes the inputs of a run.
type RunConfig struct {
	RunID           string        `yaml:"runid"`
	Dataset         string        `yaml:"dataset"`
	Keys            int           `yaml:"keys"`
	RowDelay        time.Duration `yaml:"rowdelay"`
	CheckpointEvery int           `yaml:"checkpointevery"`
	Cooldown        time.Duration `yaml:"cooldown"`
	Timestamp       string        `yaml:"timestamp"`
}

// Report is the complete run record.
type Report struct {
	Config  RunConfig       `yaml:"config"`
	Summary *enrich.Summary `yaml:"summary"`
	Error   string          `yaml:"error,omitempty"`
}

// New creates a report with a fresh run id.
func New(cfg RunConfig, summary *enrich.Summary, runErr error) *Report {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	r := &Report{Config: cfg, Summary: summary}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	return r
}

// SaveToYAML writes the report to dir and returns the file path.
func (r *Report) SaveToYAML(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("covers_%s_%s.yaml", r.Config.Timestamp, shortID(r.Config.RunID)))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// shortID returns the first eight characters of id, or all of it when
// shorter.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
