package parser

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"

	"github.com/pfrederiksen/fis-results/internal/race"
)

// Marker locates a result table by a structural feature of one page layout
type Marker struct {
	Name string
	Find func(doc *goquery.Document) (Table, bool)
}

// Markers are tried in order; the first that finds a table wins
var Markers = []Marker{
	{Name: "compact-styled-table", Find: findCompactTable},
	{Name: "events-info-results", Find: findFISGrid},
	{Name: "table-results", Find: findResultsTable},
}

// findCompactTable handles live-timing pages. Several compact tables may be
// present; the first with a real header and data rows is the result table.
func findCompactTable(doc *goquery.Document) (Table, bool) {
	tables := doc.Find("table.compact-styled-table")
	if tables.Length() == 0 {
		return Table{}, false
	}

	var first *Table
	var found *Table
	tables.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		t := extractTable(sel)
		if first == nil {
			first = &t
		}
		if len(t.Header) >= 2 && len(t.Rows) > 0 {
			found = &t
			return false
		}
		return true
	})

	result := *first
	if found != nil {
		result = *found
	}
	result.Candidates = tables.Length()
	return result, true
}

// findFISGrid handles the div-based layout of the federation's results pages
func findFISGrid(doc *goquery.Document) (Table, bool) {
	container := doc.Find("#events-info-results").First()
	if container.Length() == 0 {
		return Table{}, false
	}

	t := Table{Candidates: 1}
	if head := container.Find(".table__head").First(); head.Length() > 0 {
		t.Header = gridCells(head)
	}
	rankCol := rankColumn(t.Header)

	container.Find(".table-row").Each(func(i int, row *goquery.Selection) {
		cells := gridCells(row)
		switch Classify(cells, false, rankCol) {
		case ClassHeader:
			if t.Header == nil {
				t.Header = cells
				rankCol = rankColumn(cells)
			}
		case ClassData:
			t.Rows = append(t.Rows, cells)
		}
	})
	return t, true
}

// gridCells returns the text of the innermost g-* grid cells of sel
func gridCells(sel *goquery.Selection) race.RawRow {
	const cellSelector = "div[class*='g-']"
	var cells race.RawRow
	sel.Find(cellSelector).Each(func(i int, cell *goquery.Selection) {
		if cell.Find(cellSelector).Length() > 0 {
			return
		}
		cells = append(cells, cellText(cell))
	})
	return cells
}

// findResultsTable handles generic result tables
func findResultsTable(doc *goquery.Document) (Table, bool) {
	tables := doc.Find("table.table-results, table[data-results]")
	if tables.Length() == 0 {
		return Table{}, false
	}
	t := extractTable(tables.First())
	t.Candidates = tables.Length()
	return t, true
}

// extractTable reads the rows of a table element
func extractTable(sel *goquery.Selection) Table {
	var t Table
	rankCol := 0
	first := true
	tentative := false

	sel.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if tr.Closest("table").Get(0) != sel.Get(0) {
			return
		}

		var cells race.RawRow
		allTh := true
		tr.Children().Each(func(j int, cell *goquery.Selection) {
			node := cell.Get(0)
			switch node.DataAtom {
			case atom.Th:
			case atom.Td:
				allTh = false
			default:
				return
			}
			cells = append(cells, cellText(cell))
		})
		if len(cells) == 0 {
			return
		}

		class := Classify(cells, allTh, rankCol)
		// The leading row names the columns unless it already holds a
		// result. Such a row is only tentative: a caption above the real
		// header is replaced by it.
		if first && class == ClassNoise {
			t.Header = cells
			rankCol = rankColumn(cells)
			tentative = true
			first = false
			return
		}
		if class != ClassSeparator {
			first = false
		}

		switch class {
		case ClassHeader:
			if t.Header == nil || (tentative && len(t.Rows) == 0) {
				t.Header = cells
				rankCol = rankColumn(cells)
				tentative = false
			}
		case ClassData:
			t.Rows = append(t.Rows, cells)
		}
	})
	return t
}
