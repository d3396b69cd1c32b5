package enrichcmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/coverscout/internal/config"
	"github.com/spf13/cobra"
)

// loadConfig reads the file named by the inherited --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := ""
	if f := cmd.Flag("config"); f != nil {
		path = f.Value.String()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// NewCleanCmd creates the clean command
func NewCleanCmd() *cobra.Command {
	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the raw Goodreads export",
		Long: `Load the raw spreadsheet, fill missing descriptions with "null", drop rows
repeating an earlier title and clear Image_URL so every row is looked up again.`,
		Example: `  # Clean the default raw file into the default cleaned file
  coverscout clean

  # Clean a specific export
  coverscout clean --input goodreads_data.xlsx --output updated_goodreads_data.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if input == "" {
				input = cfg.Files.Raw
			}
			if output == "" {
				output = cfg.Files.Cleaned
			}
			return executeClean(input, output)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Raw spreadsheet (defaults to files.raw)")
	cmd.Flags().StringVar(&output, "output", "", "Cleaned spreadsheet (defaults to files.cleaned)")

	return cmd
}

// NewCoversCmd creates the covers command
func NewCoversCmd() *cobra.Command {
	var retryNotFound bool

	cmd := &cobra.Command{
		Use:   "covers",
		Short: "Look up cover images for every unprocessed book",
		Long: `Resolve a cover image URL for each book without one using the Google Books API.

The working set is the progress file when it exists, otherwise the cleaned file,
otherwise the raw export (cleaned on the fly). Candidate covers are probed from the
highest zoom level down and rejected when they are placeholders or too small.
API keys are rotated on rate limits; when every key is throttled the run cools
down and retries. Progress is saved periodically and on interrupt, so a rerun
resumes where the last one stopped.`,
		Example: `  # Enrich with keys from .env
  GOOGLE_BOOKS_KEYS=key1,key2 coverscout covers

  # Retry books previously marked NOT_FOUND and expose metrics
  COVERSCOUT_METRICS_ADDR=:9090 coverscout covers --retry-not-found`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return executeCovers(cmd.Context(), cfg, retryNotFound)
		},
	}

	cmd.Flags().BoolVar(&retryNotFound, "retry-not-found", false, "Look up books marked NOT_FOUND again")

	return cmd
}

// NewLinksCmd creates the links command
func NewLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Add Amazon search links and export the client dataset",
		Long: `Fill Amazon_URL where it is missing, replace URL with it and write
books_full.json to the client directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return executeLinks(cfg)
		},
	}

	return cmd
}

// NewGenresCmd creates the genres command
func NewGenresCmd() *cobra.Command {
	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "genres",
		Short: "Normalize genres and build the genre dropdown",
		Long: `Parse the Genres column of every book into a list, rewrite the book JSON
with the parsed lists and write genres.json ([{value, label}]) to the client
directory.`,
		Example: `  coverscout genres --input final_book_data.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if input == "" {
				input = cfg.Files.OutputJSON
			}
			if output == "" {
				output = input
			}
			return executeGenres(input, output, cfg.Files.ClientDir)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Book JSON to read (defaults to files.output_json)")
	cmd.Flags().StringVar(&output, "output", "", "Book JSON to write (defaults to --input)")

	return cmd
}
