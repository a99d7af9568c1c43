package race

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyIdentifier is returned when a race identifier is blank
var ErrEmptyIdentifier = errors.New("race identifier is empty")

// Identifier is an opaque token selecting one published race result page
type Identifier string

// ParseIdentifier trims s and returns it as an Identifier.
// Blank input yields ErrEmptyIdentifier.
func ParseIdentifier(s string) (Identifier, error) {
	id := Identifier(strings.TrimSpace(s))
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate reports whether the identifier is usable
func (id Identifier) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return ErrEmptyIdentifier
	}
	return nil
}

func (id Identifier) String() string {
	return string(id)
}

// RawRow is the ordered list of cell texts extracted from one table row
type RawRow []string

// Cell returns the text of column i, or "" when the row is shorter
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Blank reports whether every cell is empty
func (r RawRow) Blank() bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// RowIssue describes a row that was skipped or kept with an anomaly
type RowIssue struct {
	Row     int    `json:"row"` // index in the parsed row sequence
	Reason  string `json:"reason"`
	Anomaly bool   `json:"anomaly,omitempty"` // true when the row was kept
}

// ScrapeResult is the outcome of one successful scrape
type ScrapeResult struct {
	Source    Identifier     `json:"source"`
	URL       string         `json:"url"`
	RunID     string         `json:"run_id"`
	FetchedAt time.Time      `json:"fetched_at"`
	Attempts  int            `json:"attempts"`
	Records   []ResultRecord `json:"records"`
	Skipped   int            `json:"skipped"`
	Anomalies int            `json:"anomalies"`
	Issues    []RowIssue     `json:"issues,omitempty"`
}

// Empty reports whether the page was scraped successfully but held no results,
// which is what a cancelled race looks like
func (r *ScrapeResult) Empty() bool {
	return len(r.Records) == 0
}

// Finishers counts records that carry a rank
func (r *ScrapeResult) Finishers() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Finished() {
			n++
		}
	}
	return n
}

// BestTime returns the lowest finishing time, if any finisher has one
func (r *ScrapeResult) BestTime() (time.Duration, bool) {
	var best time.Duration
	found := false
	for _, rec := range r.Records {
		if !rec.Finished() || rec.Time == nil {
			continue
		}
		if !found || *rec.Time < best {
			best = *rec.Time
			found = true
		}
	}
	return best, found
}
