// Package parser locates the results table in a fetched page and extracts
// its rows as raw cell text.
//
// Tables are found by structural markers (CSS classes and ids of the known
// page layouts), tried in a fixed order. Every row of the located table is
// classified as a separator, a header, a data row or noise; only data rows
// are returned. A page with no recognizable table is a *ParseError, while a
// recognizable table without data rows is a valid, empty result.
package parser
