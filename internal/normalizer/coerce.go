package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/fis-results/internal/race"
)

// Accepts m:ss.hh, h:mm:ss.hh and ss.hh with one or two fractional digits
var timePattern = regexp.MustCompile(`^(?:(?:(\d+):)?(\d+):)?(\d{1,2})\.(\d{1,2})$`)

// ParseTime converts a published race time to a duration
func ParseTime(text string) (time.Duration, bool) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}

	var hours, minutes int
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
	}
	if m[2] != "" {
		minutes, _ = strconv.Atoi(m[2])
	}
	seconds, _ := strconv.Atoi(m[3])
	frac := m[4]
	if len(frac) == 1 {
		frac += "0"
	}
	hundredths, _ := strconv.Atoi(frac)

	if m[2] != "" && seconds >= 60 {
		return 0, false
	}
	if m[1] != "" && minutes >= 60 {
		return 0, false
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(hundredths)*10*time.Millisecond
	return d, true
}

// ParsePoints converts a points cell, accepting a comma decimal separator
func ParsePoints(text string) (float64, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ParseRank converts a rank cell. It reports the status for sentinels and
// false when the cell holds neither a positive rank nor a sentinel.
func ParseRank(text string) (*int, race.Status, bool) {
	text = strings.TrimSpace(text)
	if status, ok := race.ParseStatus(text); ok {
		return nil, status, true
	}
	n, err := strconv.Atoi(strings.TrimSuffix(text, "."))
	if err != nil || n <= 0 {
		return nil, race.StatusFinished, false
	}
	return &n, race.StatusFinished, true
}

// ParseBib converts a bib cell to a positive integer
func ParseBib(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
