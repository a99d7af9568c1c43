package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/fis-results/internal/config"
	"github.com/pfrederiksen/fis-results/internal/export"
	"github.com/pfrederiksen/fis-results/internal/race"
	"github.com/spf13/cobra"
)

type scrapeOptions struct {
	format  string
	output  string
	schema  string
	retries int
	timeout time.Duration
}

func newScrapeCmd(global *globalOptions) *cobra.Command {
	opts := &scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape <race-id>",
		Short: "Fetch and print the results of one race",
		Long: `Fetch the FIS result page of a race and print its normalized results.

Exits 0 on success, 1 on error and 3 when the race has no published results.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "table", "Output format: table, csv or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write output to this file, or into this directory with a timestamped name")
	cmd.Flags().StringVar(&opts.schema, "schema", "", "Column schema: individual or team")
	cmd.Flags().IntVar(&opts.retries, "retries", 0, "Maximum fetch attempts")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Timeout of a single fetch")

	return cmd
}

func runScrape(cmd *cobra.Command, global *globalOptions, opts *scrapeOptions, arg string) error {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	id, err := race.ParseIdentifier(arg)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(global, func(cfg *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("schema") {
			cfg.Schema = opts.schema
		}
		if flags.Changed("retries") {
			cfg.Retry.Attempts = opts.retries
		}
		if flags.Changed("timeout") {
			cfg.Timeout = opts.timeout
		}
	})
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.service.Scrape(cmd.Context(), id)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		path := outputPath(opts.output, result, format)
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		w = file

		if global.verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "Writing %s output to %s\n", format, path)
		}
	}

	if err := export.Write(w, result, format, global.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if result.Empty() {
		return &exitError{code: ExitEmpty}
	}
	return nil
}

// outputPath resolves --output. A directory receives a timestamped file.
func outputPath(output string, result *race.ScrapeResult, format export.Format) string {
	info, err := os.Stat(output)
	if err != nil || !info.IsDir() {
		return output
	}

	name := export.Filename(result.Source, result.FetchedAt)
	switch format {
	case export.FormatJSON:
		name = strings.TrimSuffix(name, ".csv") + ".json"
	case export.FormatTable:
		name = strings.TrimSuffix(name, ".csv") + ".txt"
	}
	return filepath.Join(output, name)
}
