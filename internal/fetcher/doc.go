// Package fetcher retrieves race result pages from the results website.
//
// A Fetcher builds the page URL from a fixed template by substituting the
// race identifier into its {id} placeholder, then performs exactly one GET
// with a bounded timeout. Redirects to a host other than the template's are
// refused. Failures are reported as *FetchError, classified as network,
// timeout or status failures so the caller can decide whether to retry.
package fetcher
