package normalizer

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/pfrederiksen/fis-results/internal/race"
)

// Field is one column of the canonical record
type Field int

const (
	FieldRank Field = iota
	FieldBib
	FieldName
	FieldNation
	FieldTime
	FieldPoints

	numFields
)

func (f Field) String() string {
	if f >= 0 && f < numFields {
		return race.Columns[f]
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// FuzzyThreshold is the minimum Jaro-Winkler similarity of a fuzzy header match
const FuzzyThreshold = 0.9

// Schema describes how one kind of result table names its columns
type Schema struct {
	Name    string
	Aliases [numFields][]string

	// NationFromName fills a missing nation from a 3-letter name cell
	NationFromName bool
}

var (
	Individual = Schema{
		Name: "individual",
		Aliases: [numFields][]string{
			FieldRank:   race.RankAliases,
			FieldBib:    {"bib", "no", "bib no", "start no", "number"},
			FieldName:   {"name", "athlete", "competitor", "skier", "athlete name"},
			FieldNation: {"nation", "nat", "nsa", "nsa code", "country", "nation code"},
			FieldTime:   {"time", "total", "total time", "final time", "tot time"},
			FieldPoints: {"points", "fis points", "race points", "pts", "fis pts"},
		},
	}

	Team = Schema{
		Name: "team",
		Aliases: [numFields][]string{
			FieldRank:   race.RankAliases,
			FieldBib:    {"bib", "no", "bib no", "start no", "number"},
			FieldName:   {"team", "team name", "nation team", "nation"},
			FieldNation: {"nsa", "nsa code", "country", "nation code", "code"},
			FieldTime:   {"time", "total", "total time", "final time", "tot time"},
			FieldPoints: {"points", "fis points", "race points", "pts", "fis pts"},
		},
		NationFromName: true,
	}

	schemas = map[string]Schema{
		Individual.Name: Individual,
		Team.Name:       Team,
	}
)

// SchemaByName returns the schema registered under name
func SchemaByName(name string) (Schema, error) {
	s, ok := schemas[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Schema{}, fmt.Errorf("unknown schema: %s (want individual or team)", name)
	}
	return s, nil
}

// SchemaNames lists the registered schema names
func SchemaNames() []string {
	return []string{Individual.Name, Team.Name}
}

// Mapping holds the column index of every field, -1 when absent
type Mapping [numFields]int

// Positional is the declared column order used without a usable header
var Positional = Mapping{0, 1, 2, 3, 4, 5}

// Index returns the column of f
func (m Mapping) Index(f Field) int {
	return m[f]
}

// Map builds the column mapping for header. It reports false and returns
// Positional when the header is missing or lacks a required column.
func (s Schema) Map(header race.RawRow) (Mapping, bool) {
	if len(header) == 0 {
		return Positional, false
	}

	var m Mapping
	for i := range m {
		m[i] = -1
	}
	claimed := make([]bool, len(header))
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = race.NormalizeHeader(h)
	}

	// Exact matches claim their columns first, earlier aliases winning
	for f := Field(0); f < numFields; f++ {
		if col := s.exact(f, names, claimed); col >= 0 {
			m[f] = col
			claimed[col] = true
		}
	}

	for f := Field(0); f < numFields; f++ {
		if m[f] >= 0 {
			continue
		}
		best, bestScore := -1, FuzzyThreshold
		for col, name := range names {
			if claimed[col] || name == "" {
				continue
			}
			for _, alias := range s.Aliases[f] {
				if score := matchr.JaroWinkler(alias, name, false); score >= bestScore {
					best, bestScore = col, score
				}
			}
		}
		if best >= 0 {
			m[f] = best
			claimed[best] = true
		}
	}

	if m[FieldBib] < 0 || m[FieldName] < 0 {
		return Positional, false
	}
	return m, true
}

func (s Schema) exact(f Field, names []string, claimed []bool) int {
	for _, alias := range s.Aliases[f] {
		for col, name := range names {
			if !claimed[col] && name == alias {
				return col
			}
		}
	}
	return -1
}
