package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pfrederiksen/fis-results/internal/race"
)

const (
	DefaultURLTemplate = "https://www.fis-ski.com/DB/general/results.html?sectorcode=AL&raceid={id}"
	DefaultUserAgent   = "fis-results/1.0 (github.com/pfrederiksen/fis-results)"
	DefaultTimeout     = 10 * time.Second

	// Placeholder is replaced by the query-escaped race identifier
	Placeholder = "{id}"
)

var tracer = otel.Tracer("fis-results/internal/fetcher")

// RawContent is one fetched page
type RawContent struct {
	URL        string
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// Options configures a Fetcher. Zero values select the defaults.
type Options struct {
	URLTemplate string
	Timeout     time.Duration
	UserAgent   string
}

// Fetcher retrieves result pages. It is safe for concurrent use.
type Fetcher struct {
	template string
	host     string
	client   *resty.Client
}

// ValidateTemplate checks that template is an absolute http(s) URL
// carrying the {id} placeholder outside its host
func ValidateTemplate(template string) (*url.URL, error) {
	if !strings.Contains(template, Placeholder) {
		return nil, fmt.Errorf("url template %q has no %s placeholder", template, Placeholder)
	}
	const marker = "xraceidx"
	u, err := url.Parse(strings.ReplaceAll(template, Placeholder, marker))
	if err != nil {
		return nil, fmt.Errorf("parsing url template: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url template scheme must be http or https, got %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("url template %q has no host", template)
	}
	if strings.Contains(u.Host, marker) {
		return nil, fmt.Errorf("url template must not place %s in the host", Placeholder)
	}
	return u, nil
}

// New creates a Fetcher for the given options
func New(opts Options) (*Fetcher, error) {
	if opts.URLTemplate == "" {
		opts.URLTemplate = DefaultURLTemplate
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	u, err := ValidateTemplate(opts.URLTemplate)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetRedirectPolicy(redirectPolicy(
		resty.FlexibleRedirectPolicy(5),
		resty.DomainCheckRedirectPolicy(u.Hostname()),
	))

	return &Fetcher{
		template: opts.URLTemplate,
		host:     u.Host,
		client:   client,
	}, nil
}

// redirectPolicy applies policies in order and marks a refusal as permanent
func redirectPolicy(policies ...resty.RedirectPolicy) resty.RedirectPolicy {
	return resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		for _, p := range policies {
			if err := p.Apply(req, via); err != nil {
				return &redirectError{err: err}
			}
		}
		return nil
	})
}

// URL returns the page URL for id
func (f *Fetcher) URL(id race.Identifier) string {
	return strings.ReplaceAll(f.template, Placeholder, url.QueryEscape(id.String()))
}

// Host returns the host every request targets
func (f *Fetcher) Host() string {
	return f.host
}

// Fetch performs one GET for the result page of id
func (f *Fetcher) Fetch(ctx context.Context, id race.Identifier) (RawContent, error) {
	target := f.URL(id)

	ctx, span := tracer.Start(ctx, "fetcher.Fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("race.id", id.String()), attribute.String("http.url", target))

	res, err := f.client.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		fetchErr := classify(target, err)
		span.RecordError(fetchErr)
		span.SetStatus(codes.Error, fetchErr.Kind.String())
		return RawContent{}, fetchErr
	}

	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode()))
	if !res.IsSuccess() {
		fetchErr := &FetchError{Kind: KindStatus, Status: res.StatusCode(), URL: target}
		span.SetStatus(codes.Error, fetchErr.Error())
		return RawContent{}, fetchErr
	}

	return RawContent{
		URL:        target,
		Body:       res.Body(),
		StatusCode: res.StatusCode(),
		FetchedAt:  res.ReceivedAt(),
	}, nil
}

func classify(target string, err error) *FetchError {
	var redirectErr *redirectError
	if errors.As(err, &redirectErr) {
		return &FetchError{Kind: KindRedirect, URL: target, Err: redirectErr.err}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{Kind: KindTimeout, URL: target, Err: err}
	}
	return &FetchError{Kind: KindNetwork, URL: target, Err: err}
}
