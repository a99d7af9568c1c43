package parser

import (
	"regexp"

	"github.com/pfrederiksen/fis-results/internal/race"
)

// RowClass is the result of classifying one table row
type RowClass int

const (
	ClassNoise RowClass = iota
	ClassSeparator
	ClassHeader
	ClassData
)

func (c RowClass) String() string {
	switch c {
	case ClassSeparator:
		return "separator"
	case ClassHeader:
		return "header"
	case ClassData:
		return "data"
	default:
		return "noise"
	}
}

var rankPattern = regexp.MustCompile(`^\d+\.?$`)

// headerWords are normalized cell texts that only appear in header rows
var headerWords = map[string]bool{
	"bib": true, "no": true, "bib no": true, "start no": true,
	"name": true, "athlete": true, "competitor": true, "team": true,
	"nation": true, "nat": true, "nsa": true, "nsa code": true, "country": true,
	"time": true, "total": true, "total time": true, "run 1": true, "run 2": true,
	"points": true, "fis points": true, "race points": true, "diff": true,
	"year": true, "yb": true, "birth": true, "fis code": true, "code": true,
}

func init() {
	for _, alias := range race.RankAliases {
		headerWords[alias] = true
	}
}

// IsHeaderWord reports whether text names a known result column
func IsHeaderWord(text string) bool {
	return headerWords[race.NormalizeHeader(text)]
}

// looksLikeHeader reports whether at least two cells name known columns
func looksLikeHeader(cells race.RawRow) bool {
	matches := 0
	for _, c := range cells {
		if IsHeaderWord(c) {
			matches++
		}
	}
	return matches >= 2
}

// Classify decides the class of a row. allHeaderCells is true when every cell
// came from a th element; rankCol is the index of the rank column.
func Classify(cells race.RawRow, allHeaderCells bool, rankCol int) RowClass {
	if cells.Blank() {
		return ClassSeparator
	}
	if allHeaderCells || looksLikeHeader(cells) {
		return ClassHeader
	}

	rank := cells.Cell(rankCol)
	if rankPattern.MatchString(rank) {
		return ClassData
	}
	if _, ok := race.ParseStatus(rank); ok {
		return ClassData
	}
	if rank == "" {
		for i, c := range cells {
			if i == rankCol {
				continue
			}
			if _, ok := race.ParseStatus(c); ok {
				return ClassData
			}
		}
	}
	return ClassNoise
}

// rankColumn returns the header position of the rank column, or 0
func rankColumn(header race.RawRow) int {
	for i, c := range header {
		if race.IsRankHeader(c) {
			return i
		}
	}
	return 0
}
