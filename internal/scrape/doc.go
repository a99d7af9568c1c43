// Package scrape runs the fetch, parse and normalize pipeline for one race.
//
// A Service is stateless between calls and safe for concurrent use. Each
// Scrape call walks the states Idle, Fetching, Parsing, Normalizing and Done;
// retryable fetch failures pass through Retrying and back to Fetching under
// the configured RetryPolicy. Failures end in the Failed state and are
// reported as *ScrapeError.
package scrape
