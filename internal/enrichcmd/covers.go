package enrichcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/coverscout/internal/config"
	"github.com/lehigh-university-libraries/coverscout/internal/dataset"
	"github.com/lehigh-university-libraries/coverscout/internal/enrich"
	"github.com/lehigh-university-libraries/coverscout/internal/googlebooks"
	"github.com/lehigh-university-libraries/coverscout/internal/images"
	"github.com/lehigh-university-libraries/coverscout/internal/keyring"
	"github.com/lehigh-university-libraries/coverscout/internal/lookup"
	"github.com/lehigh-university-libraries/coverscout/internal/metrics"
	"github.com/lehigh-university-libraries/coverscout/internal/report"
	"github.com/lehigh-university-libraries/coverscout/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

func executeCovers(ctx context.Context, cfg *config.Config, retryNotFound bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ring, err := keyring.New(cfg.Books.Keys)
	if err != nil {
		return fmt.Errorf("failed to load API keys: %w", err)
	}
	slog.Info("Loaded API keys", "count", ring.Len())

	books, source, err := loadWorkingSet(cfg.Files)
	if err != nil {
		return err
	}

	if retryNotFound {
		n := resetNotFound(books)
		slog.Info("Retrying books marked not found", "count", n)
	}

	pending := dataset.Pending(books)
	if len(pending) == 0 {
		fmt.Println("All books already processed.")
		return nil
	}
	slog.Info("Resuming image fetch", "source", source, "total", len(books), "pending", len(pending))

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(runCtx, cfg.MetricsAddr, registry); err != nil {
				slog.Error("Metrics server failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	client, err := googlebooks.NewClient(runCtx, cfg.BooksClient())
	if err != nil {
		return err
	}

	imageOpts, err := cfg.ImageOptions()
	if err != nil {
		return err
	}
	validator := images.NewValidator(cfg.Fetcher(), imageOpts, m)
	finder := lookup.New(client, cfg.Resolver(validator), ring, cfg.LookupOptions(), m)
	driver := enrich.New(finder, storage.New(cfg.Files.Progress), cfg.DriverOptions(), m)

	summary, runErr := driver.Run(runCtx, books)

	if err := storage.New(cfg.Files.OutputJSON, cfg.Files.Parquet).Save(books); err != nil {
		slog.Error("Failed to write exports", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	rep := report.New(report.RunConfig{
		Dataset:         source,
		Keys:            ring.Len(),
		RowDelay:        cfg.Driver.RowDelay,
		CheckpointEvery: cfg.Driver.CheckpointEvery,
		Cooldown:        cfg.Lookup.Cooldown,
	}, summary, runErr)
	reportPath, err := rep.SaveToYAML(cfg.ReportDir)
	if err != nil {
		slog.Warn("Failed to save run report", "error", err)
	}

	printCoversSummary(summary, cfg, reportPath)

	if errors.Is(runErr, context.Canceled) {
		fmt.Println("\nRun interrupted. Progress saved; rerun to resume.")
		return nil
	}
	return runErr
}

func printCoversSummary(s *enrich.Summary, cfg *config.Config, reportPath string) {
	fmt.Printf("\n=== Cover Enrichment Results ===\n")
	fmt.Printf("Books in dataset: %d\n", s.Total)
	fmt.Printf("Pending at start: %d\n", s.Pending)
	fmt.Printf("Processed:        %d\n", s.Processed)
	fmt.Printf("  Covers:         %d\n", s.Covers)
	fmt.Printf("  Thumbnails:     %d\n", s.Thumbnails)
	fmt.Printf("  Not found:      %d\n", s.NotFound)
	fmt.Printf("Checkpoints:      %d\n", s.Checkpoints)
	fmt.Printf("Duration:         %s\n", s.Duration.Round(time.Second))
	fmt.Printf("\nProgress saved to: %s\n", cfg.Files.Progress)
	if cfg.Files.OutputJSON != "" {
		fmt.Printf("JSON saved to: %s\n", cfg.Files.OutputJSON)
	}
	if cfg.Files.Parquet != "" {
		fmt.Printf("Parquet saved to: %s\n", cfg.Files.Parquet)
	}
	if reportPath != "" {
		fmt.Printf("Run report saved to: %s\n", reportPath)
	}
}
