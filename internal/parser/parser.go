package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/fis-results/internal/race"
)

// PreviewLength is the number of characters kept in ParseError.Preview
const PreviewLength = 1000

// Table is the located result table
type Table struct {
	Header race.RawRow   // nil when the page has no header row
	Rows   []race.RawRow // data rows only, in page order
	Marker string        // name of the marker that located the table

	// Candidates is the number of elements matching the marker
	Candidates int
}

// Kind classifies a parse failure
type Kind int

const (
	KindTableNotFound Kind = iota
)

func (k Kind) String() string {
	return "tableNotFound"
}

// ParseError reports a page without a recognizable result table
type ParseError struct {
	Kind    Kind
	Preview string // leading part of the page, for diagnostics
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no result table found: %v", e.Err)
	}
	return "no result table found"
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse locates the result table in body
func Parse(body []byte) (Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Table{}, &ParseError{Kind: KindTableNotFound, Preview: preview(body), Err: fmt.Errorf("parsing HTML: %w", err)}
	}

	for _, m := range Markers {
		if table, ok := m.Find(doc); ok {
			table.Marker = m.Name
			return table, nil
		}
	}

	return Table{}, &ParseError{Kind: KindTableNotFound, Preview: preview(body)}
}

func preview(body []byte) string {
	s := string(body)
	if utf8.RuneCountInString(s) <= PreviewLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:PreviewLength])
}

var whitespace = regexp.MustCompile(`\s+`)

// cellText trims the cell and collapses inner whitespace runs
func cellText(sel *goquery.Selection) string {
	text := strings.ReplaceAll(sel.Text(), "\u00a0", " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
