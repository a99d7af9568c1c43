// Package race provides the data model shared by the scraping pipeline.
//
// A race is selected by an opaque Identifier. The pipeline turns the published
// result page into RawRows and then into canonical ResultRecords, which are
// returned to the caller inside a ScrapeResult together with fetch metadata and
// the per-row issues found while normalizing.
package race
