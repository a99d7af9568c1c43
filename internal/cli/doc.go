// Package cli implements the command-line interface for fis-results.
//
// The scrape command prints one race's results as a table, CSV or JSON.
// The serve command exposes the same results over HTTP with a session cache
// and Prometheus metrics.
package cli
