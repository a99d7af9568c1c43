package normalizer

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/fis-results/internal/parser"
	"github.com/pfrederiksen/fis-results/internal/race"
)

// Result is the outcome of normalizing one table
type Result struct {
	Records   []race.ResultRecord
	Skipped   int
	Anomalies int
	Issues    []race.RowIssue

	// Positional is true when columns were mapped by position
	Positional bool
}

// Normalizer maps raw rows onto ResultRecords using a Schema
type Normalizer struct {
	schema Schema
}

// New creates a Normalizer for schema
func New(schema Schema) *Normalizer {
	return &Normalizer{schema: schema}
}

// Schema returns the schema used by n
func (n *Normalizer) Schema() Schema {
	return n.schema
}

// Normalize maps table with the Individual schema
func Normalize(table parser.Table) Result {
	return New(Individual).Normalize(table)
}

// Normalize converts every row of table. It never fails: rows missing
// required fields are skipped and reported in Issues.
func (n *Normalizer) Normalize(table parser.Table) Result {
	mapping, byHeader := n.schema.Map(table.Header)
	result := Result{
		Records:    make([]race.ResultRecord, 0, len(table.Rows)),
		Positional: !byHeader,
	}

	var lastRank int
	seenNonFinisher := false

	for i, row := range table.Rows {
		rowNum := i + 1

		rec, reason := n.record(row, mapping)
		if reason != "" {
			result.Skipped++
			result.Issues = append(result.Issues, race.RowIssue{Row: rowNum, Reason: reason})
			continue
		}

		if rec.Rank != nil {
			switch {
			case *rec.Rank < lastRank:
				result.Anomalies++
				result.Issues = append(result.Issues, race.RowIssue{
					Row:     rowNum,
					Reason:  fmt.Sprintf("rank %d follows rank %d", *rec.Rank, lastRank),
					Anomaly: true,
				})
			case seenNonFinisher:
				result.Anomalies++
				result.Issues = append(result.Issues, race.RowIssue{
					Row:     rowNum,
					Reason:  fmt.Sprintf("rank %d listed after a non-finisher", *rec.Rank),
					Anomaly: true,
				})
			}
			if *rec.Rank > lastRank {
				lastRank = *rec.Rank
			}
		} else if rec.Status != race.StatusFinished {
			seenNonFinisher = true
		}

		result.Records = append(result.Records, rec)
	}

	return result
}

// record coerces one row. A non-empty reason means the row is skipped.
func (n *Normalizer) record(row race.RawRow, m Mapping) (race.ResultRecord, string) {
	cell := func(f Field) string {
		if m[f] < 0 {
			return ""
		}
		return row.Cell(m[f])
	}

	bibText := cell(FieldBib)
	if bibText == "" {
		return race.ResultRecord{}, "missing bib"
	}
	bib, ok := ParseBib(bibText)
	if !ok {
		return race.ResultRecord{}, fmt.Sprintf("invalid bib %q", bibText)
	}

	name := strings.TrimSpace(cell(FieldName))
	if name == "" {
		return race.ResultRecord{}, "missing name"
	}

	rec := race.ResultRecord{
		Bib:    bib,
		Name:   name,
		Nation: strings.ToUpper(strings.TrimSpace(cell(FieldNation))),
	}
	if rec.Nation == "" && n.schema.NationFromName && isNationCode(name) {
		rec.Nation = strings.ToUpper(name)
	}

	rank, status, _ := ParseRank(cell(FieldRank))
	rec.Rank, rec.Status = rank, status
	if rank == nil && status == race.StatusFinished {
		// A blank rank takes the sentinel published in the time column
		if s, ok := race.ParseStatus(cell(FieldTime)); ok {
			rec.Status = s
		}
	}

	if d, ok := ParseTime(cell(FieldTime)); ok {
		rec.Time = &d
	}
	if p, ok := ParsePoints(cell(FieldPoints)); ok {
		rec.Points = &p
	}

	return rec, ""
}

func isNationCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
