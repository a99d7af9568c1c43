package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pfrederiksen/fis-results/internal/race"
)

// Format specifies the output format
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'table', 'csv' or 'json')", s)
	}
}

// ContentType returns the MIME type of f
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Summary holds the statistics shown under a result table
type Summary struct {
	Entries   int    `json:"entries"`
	Finishers int    `json:"finishers"`
	BestTime  string `json:"best_time,omitempty"`
	Skipped   int    `json:"skipped"`
	Anomalies int    `json:"anomalies"`
}

// Summarize computes the summary of result
func Summarize(result *race.ScrapeResult) Summary {
	s := Summary{
		Entries:   len(result.Records),
		Finishers: result.Finishers(),
		Skipped:   result.Skipped,
		Anomalies: result.Anomalies,
	}
	if best, ok := result.BestTime(); ok {
		s.BestTime = race.FormatDuration(best)
	}
	return s
}

// Write renders result in the given format
func Write(w io.Writer, result *race.ScrapeResult, format Format, verbose bool) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, result.Records)
	case FormatJSON:
		return WriteJSON(w, result)
	case FormatTable:
		return WriteTable(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteCSV writes a header line followed by one line per record
func WriteCSV(w io.Writer, records []race.ResultRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(race.Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec.Cells()); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonOutput struct {
	*race.ScrapeResult
	Summary Summary `json:"summary"`
}

// WriteJSON writes the records together with the scrape metadata
func WriteJSON(w io.Writer, result *race.ScrapeResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonOutput{ScrapeResult: result, Summary: Summarize(result)})
}

// WriteTable writes a human-readable table with a summary footer
func WriteTable(w io.Writer, result *race.ScrapeResult, verbose bool) error {
	if result.Empty() {
		fmt.Fprintf(w, "No results published for race %s.\n", result.Source)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(race.Columns))
	for i, c := range race.Columns {
		header[i] = c
	}
	t.AppendHeader(header)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	for _, rec := range result.Records {
		cells := rec.Cells()
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}
	t.Render()

	s := Summarize(result)
	fmt.Fprintf(w, "\nEntries: %d   Finishers: %d", s.Entries, s.Finishers)
	if s.BestTime != "" {
		fmt.Fprintf(w, "   Best time: %s", s.BestTime)
	}
	fmt.Fprintln(w)
	if s.Skipped > 0 || s.Anomalies > 0 {
		fmt.Fprintf(w, "Warning: %d row(s) skipped, %d rank anomaly(ies)\n", s.Skipped, s.Anomalies)
	}

	if verbose {
		fmt.Fprintf(w, "Source: %s\n", result.URL)
		fmt.Fprintf(w, "Fetched: %s (%d attempt(s), run %s)\n",
			result.FetchedAt.Format(time.RFC3339), result.Attempts, result.RunID)
		for _, issue := range result.Issues {
			kind := "skipped"
			if issue.Anomaly {
				kind = "anomaly"
			}
			fmt.Fprintf(w, "  row %d %s: %s\n", issue.Row, kind, issue.Reason)
		}
	}
	return nil
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename returns the download name race_<id>_<YYYYmmdd_HHMMSS>.csv
func Filename(id race.Identifier, at time.Time) string {
	safe := strings.Trim(unsafeFilename.ReplaceAllString(id.String(), "-"), "-.")
	if safe == "" {
		safe = "unknown"
	}
	return fmt.Sprintf("race_%s_%s.csv", safe, at.Format("20060102_150405"))
}
