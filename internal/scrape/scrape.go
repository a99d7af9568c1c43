package scrape

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pfrederiksen/fis-results/internal/fetcher"
	"github.com/pfrederiksen/fis-results/internal/logger"
	"github.com/pfrederiksen/fis-results/internal/normalizer"
	"github.com/pfrederiksen/fis-results/internal/parser"
	"github.com/pfrederiksen/fis-results/internal/race"
)

var tracer = otel.Tracer("fis-results/internal/scrape")

// Fetcher retrieves the page of one race
type Fetcher interface {
	Fetch(ctx context.Context, id race.Identifier) (fetcher.RawContent, error)
}

// Recorder receives pipeline measurements
type Recorder interface {
	FetchAttempt(outcome string)
	ScrapeFinished(outcome string, duration time.Duration)
	RowsNormalized(records, skipped, anomalies int)
}

type nopRecorder struct{}

func (nopRecorder) FetchAttempt(string)                  {}
func (nopRecorder) ScrapeFinished(string, time.Duration) {}
func (nopRecorder) RowsNormalized(int, int, int)         {}

// Service orchestrates fetching, parsing and normalizing
type Service struct {
	fetcher    Fetcher
	policy     RetryPolicy
	normalizer *normalizer.Normalizer
	log        *logger.Logger
	recorder   Recorder
	onChange   TransitionFunc
	now        func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithRetryPolicy replaces the default retry policy
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithSchema selects the normalizer schema
func WithSchema(schema normalizer.Schema) Option {
	return func(s *Service) { s.normalizer = normalizer.New(schema) }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// OnTransition registers a hook called on every state change
func OnTransition(fn TransitionFunc) Option {
	return func(s *Service) { s.onChange = fn }
}

// WithClock overrides the completion timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service around f
func New(f Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:    f,
		policy:     DefaultRetryPolicy(),
		normalizer: normalizer.New(normalizer.Individual),
		log:        logger.Default(),
		recorder:   nopRecorder{},
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the retry policy in use
func (s *Service) Policy() RetryPolicy {
	return s.policy
}

// Scrape produces the normalized results of race id
func (s *Service) Scrape(ctx context.Context, id race.Identifier) (*race.ScrapeResult, error) {
	started := time.Now()
	runID := uuid.NewString()
	m := &machine{runID: runID, hook: s.onChange}
	fields := logger.Fields{"run_id": runID, "race_id": id.String()}

	ctx, span := tracer.Start(ctx, "scrape.Scrape")
	defer span.End()
	span.SetAttributes(attribute.String("race.id", id.String()), attribute.String("run.id", runID))

	fail := func(err *ScrapeError) (*race.ScrapeResult, error) {
		m.to(StateFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Kind.String())
		s.recorder.ScrapeFinished(err.Kind.String(), time.Since(started))
		s.log.Error("scrape failed", mergeFields(fields, logger.Fields{
			"kind":     err.Kind.String(),
			"attempts": err.Attempts,
		}), err.Cause)
		return nil, err
	}

	if err := id.Validate(); err != nil {
		return fail(&ScrapeError{Kind: KindInvalidIdentifier, Source: id, Cause: err})
	}

	content, attempts, err := s.fetch(ctx, m, id, fields)
	span.SetAttributes(attribute.Int("scrape.attempts", attempts))
	if err != nil {
		return fail(&ScrapeError{Kind: KindFetchFailed, Source: id, Attempts: attempts, Cause: err})
	}

	m.to(StateParsing)
	table, err := parser.Parse(content.Body)
	if err != nil {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) && s.log.Enabled(logger.LevelDebug) {
			s.log.Debug("html preview", mergeFields(fields, logger.Fields{
				"bytes":   len(content.Body),
				"preview": parseErr.Preview,
			}))
		}
		return fail(&ScrapeError{Kind: KindPageStructureUnrecognized, Source: id, Attempts: attempts, Cause: err})
	}
	s.log.Debug("result table located", mergeFields(fields, logger.Fields{
		"marker":     table.Marker,
		"candidates": table.Candidates,
		"header":     []string(table.Header),
		"rows":       len(table.Rows),
	}))

	m.to(StateNormalizing)
	norm := s.normalizer.Normalize(table)
	for _, issue := range norm.Issues {
		s.log.Warn("row issue", mergeFields(fields, logger.Fields{
			"row":     issue.Row,
			"reason":  issue.Reason,
			"anomaly": issue.Anomaly,
		}))
	}
	if norm.Positional && len(table.Rows) > 0 {
		s.log.Warn("columns mapped by position", mergeFields(fields, logger.Fields{
			"header": []string(table.Header),
		}))
	}
	s.recorder.RowsNormalized(len(norm.Records), norm.Skipped, norm.Anomalies)

	result := &race.ScrapeResult{
		Source:    id,
		URL:       content.URL,
		RunID:     runID,
		FetchedAt: s.now(),
		Attempts:  attempts,
		Records:   norm.Records,
		Skipped:   norm.Skipped,
		Anomalies: norm.Anomalies,
		Issues:    norm.Issues,
	}

	m.to(StateDone)
	s.recorder.ScrapeFinished("success", time.Since(started))
	s.log.Info("scrape finished", mergeFields(fields, logger.Fields{
		"attempts":  attempts,
		"records":   len(result.Records),
		"skipped":   result.Skipped,
		"anomalies": result.Anomalies,
		"marker":    table.Marker,
	}))
	span.SetAttributes(attribute.Int("scrape.records", len(result.Records)))
	return result, nil
}

// fetch runs the fetch attempts under the retry policy. It returns the last
// fetch error, or the context error when the scrape was abandoned.
func (s *Service) fetch(ctx context.Context, m *machine, id race.Identifier, fields logger.Fields) (fetcher.RawContent, int, error) {
	var (
		content  fetcher.RawContent
		attempts int
		lastErr  error
	)

	operation := func() error {
		attempts++
		if m.current == StateRetrying || m.current == StateIdle {
			m.to(StateFetching)
		}

		c, err := s.fetcher.Fetch(ctx, id)
		if err == nil {
			s.recorder.FetchAttempt("success")
			content = c
			return nil
		}
		lastErr = err

		var fetchErr *fetcher.FetchError
		if !errors.As(err, &fetchErr) {
			s.recorder.FetchAttempt("error")
			return backoff.Permanent(err)
		}
		s.recorder.FetchAttempt(fetchErr.Kind.String())
		if !fetchErr.Retryable() || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		m.to(StateRetrying)
		s.log.Warn("fetch attempt failed, retrying", mergeFields(fields, logger.Fields{
			"attempt": attempts,
			"wait":    wait.String(),
			"error":   err.Error(),
		}))
	}

	err := backoff.RetryNotify(operation, s.policy.backOff(ctx), notify)
	if err == nil {
		return content, attempts, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fetcher.RawContent{}, attempts, ctxErr
	}
	if lastErr != nil {
		return fetcher.RawContent{}, attempts, lastErr
	}
	return fetcher.RawContent{}, attempts, err
}

func mergeFields(base, extra logger.Fields) logger.Fields {
	out := make(logger.Fields, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
