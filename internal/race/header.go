package race

import "strings"

// RankAliases are the normalized header names of the rank column
var RankAliases = []string{"rank", "rk", "pl", "place", "pos", "position"}

// NormalizeHeader lower-cases a header cell, drops dots and collapses spaces,
// so "Rk." and "rk" compare equal
func NormalizeHeader(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.ReplaceAll(text, ".", "")
	return strings.Join(strings.Fields(text), " ")
}

// IsRankHeader reports whether text names the rank column
func IsRankHeader(text string) bool {
	name := NormalizeHeader(text)
	for _, alias := range RankAliases {
		if name == alias {
			return true
		}
	}
	return false
}
