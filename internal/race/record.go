package race

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Status is the finishing category of an entrant
type Status int

const (
	StatusFinished Status = iota
	StatusDNF
	StatusDSQ
	StatusDNS
)

func (s Status) String() string {
	switch s {
	case StatusDNF:
		return "DNF"
	case StatusDSQ:
		return "DSQ"
	case StatusDNS:
		return "DNS"
	default:
		return "finished"
	}
}

// MarshalText encodes the status as its sentinel text
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Sentinels accept an optional run number, e.g. "DNF1" or "DSQ 2"
var sentinelPattern = regexp.MustCompile(`(?i)^(DNF|DSQ|DNS)\s*\d?$`)

// ParseStatus recognizes the DNF/DSQ/DNS sentinels
func ParseStatus(text string) (Status, bool) {
	m := sentinelPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return StatusFinished, false
	}
	switch strings.ToUpper(m[1]) {
	case "DNF":
		return StatusDNF, true
	case "DSQ":
		return StatusDSQ, true
	default:
		return StatusDNS, true
	}
}

// Columns is the export column order. It follows the ResultRecord field order.
var Columns = []string{"Rank", "Bib", "Name", "Nation", "Time", "Points"}

// ResultRecord is one athlete's normalized result
type ResultRecord struct {
	Rank   *int // nil for non-finishers
	Bib    int  // always positive
	Name   string
	Nation string         // 3-letter code
	Time   *time.Duration // nil when not published
	Points *float64       // nil when not published
	Status Status
}

// Finished reports whether the record carries a rank
func (r ResultRecord) Finished() bool {
	return r.Status == StatusFinished && r.Rank != nil
}

// RankText returns the rank, or the status sentinel for non-finishers
func (r ResultRecord) RankText() string {
	if r.Rank == nil {
		if r.Status == StatusFinished {
			return ""
		}
		return r.Status.String()
	}
	return strconv.Itoa(*r.Rank)
}

// TimeText returns the time formatted as m:ss.hh, or "" when null
func (r ResultRecord) TimeText() string {
	if r.Time == nil {
		return ""
	}
	return FormatDuration(*r.Time)
}

// PointsText returns the points with two decimals, or "" when null
func (r ResultRecord) PointsText() string {
	if r.Points == nil {
		return ""
	}
	return strconv.FormatFloat(*r.Points, 'f', 2, 64)
}

// Cells renders the record in Columns order
func (r ResultRecord) Cells() []string {
	return []string{
		r.RankText(),
		strconv.Itoa(r.Bib),
		r.Name,
		r.Nation,
		r.TimeText(),
		r.PointsText(),
	}
}

// MarshalJSON keeps the canonical field order and adds the time in seconds
func (r ResultRecord) MarshalJSON() ([]byte, error) {
	var seconds *float64
	if r.Time != nil {
		s := r.Time.Seconds()
		seconds = &s
	}
	var text *string
	if t := r.TimeText(); t != "" {
		text = &t
	}

	return json.Marshal(struct {
		Rank        *int     `json:"rank"`
		Bib         int      `json:"bib"`
		Name        string   `json:"name"`
		Nation      string   `json:"nation"`
		Time        *string  `json:"time"`
		TimeSeconds *float64 `json:"time_seconds"`
		Points      *float64 `json:"points"`
		Status      Status   `json:"status"`
	}{r.Rank, r.Bib, r.Name, r.Nation, text, seconds, r.Points, r.Status})
}

// FormatDuration renders d as m:ss.hh, or h:mm:ss.hh from one hour up
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	hundredths := int64((d + 5*time.Millisecond) / (10 * time.Millisecond))
	h := hundredths / (100 * 3600)
	m := (hundredths / (100 * 60)) % 60
	s := (hundredths / 100) % 60
	cs := hundredths % 100
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
	}
	return fmt.Sprintf("%d:%02d.%02d", m, s, cs)
}
