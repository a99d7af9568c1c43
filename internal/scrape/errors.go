package scrape

import (
	"fmt"

	"github.com/pfrederiksen/fis-results/internal/race"
)

// Kind classifies a scrape failure
type Kind int

const (
	KindFetchFailed Kind = iota
	KindPageStructureUnrecognized
	KindInvalidIdentifier
)

func (k Kind) String() string {
	switch k {
	case KindPageStructureUnrecognized:
		return "pageStructureUnrecognized"
	case KindInvalidIdentifier:
		return "invalidIdentifier"
	default:
		return "fetchFailed"
	}
}

// ScrapeError reports why no result could be produced for a race
type ScrapeError struct {
	Kind     Kind
	Source   race.Identifier
	Attempts int
	Cause    error
}

func (e *ScrapeError) Error() string {
	switch e.Kind {
	case KindInvalidIdentifier:
		return fmt.Sprintf("invalid race identifier: %v", e.Cause)
	case KindPageStructureUnrecognized:
		return fmt.Sprintf("race %s: page structure unrecognized: %v", e.Source, e.Cause)
	default:
		return fmt.Sprintf("race %s: fetch failed after %d attempt(s): %v", e.Source, e.Attempts, e.Cause)
	}
}

func (e *ScrapeError) Unwrap() error {
	return e.Cause
}
