package fetcher

import (
	"fmt"
	"net/http"
)

// Kind classifies a fetch failure
type Kind int

const (
	KindNetwork Kind = iota
	KindTimeout
	KindStatus
	KindRedirect
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	case KindRedirect:
		return "redirect"
	default:
		return "network"
	}
}

// FetchError reports a failed page retrieval
type FetchError struct {
	Kind   Kind
	Status int // HTTP status code, set for KindStatus
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("fetching %s: unexpected status code: %d %s", e.URL, e.Status, http.StatusText(e.Status))
	case KindTimeout:
		return fmt.Sprintf("fetching %s: timed out: %v", e.URL, e.Err)
	case KindRedirect:
		return fmt.Sprintf("fetching %s: redirect refused: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt could succeed.
// Network failures, timeouts and 5xx responses are retryable; 4xx and
// refused redirects are not.
func (e *FetchError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindStatus:
		return e.Status >= 500
	default:
		return false
	}
}

// ClientError reports an upstream 4xx response, usually an unknown race
func (e *FetchError) ClientError() bool {
	return e.Kind == KindStatus && e.Status >= 400 && e.Status < 500
}

// redirectError marks a redirect refused by the fetcher's redirect policy
type redirectError struct {
	err error
}

func (e *redirectError) Error() string {
	return e.err.Error()
}

func (e *redirectError) Unwrap() error {
	return e.err
}
