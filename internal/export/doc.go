// Package export renders a ScrapeResult as a table, CSV or JSON.
//
// CSV and table columns follow the ResultRecord field order: Rank, Bib,
// Name, Nation, Time, Points. Non-finishers show their DNF/DSQ/DNS sentinel
// in the Rank column.
package export
