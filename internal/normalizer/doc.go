// Package normalizer converts raw table rows into ResultRecords.
//
// Columns are mapped from the table header through the aliases of a Schema,
// first by exact name and then by Jaro-Winkler similarity. Without a usable
// header the positional order Rank, Bib, Name, Nation, Time, Points applies.
//
// Rows lacking a bib or a name are skipped and reported; unparseable times
// and points become null. Rank order violations are counted as anomalies,
// the affected rows are still returned.
package normalizer
