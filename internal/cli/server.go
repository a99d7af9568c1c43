package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pfrederiksen/fis-results/internal/export"
	"github.com/pfrederiksen/fis-results/internal/fetcher"
	"github.com/pfrederiksen/fis-results/internal/logger"
	"github.com/pfrederiksen/fis-results/internal/metrics"
	"github.com/pfrederiksen/fis-results/internal/race"
	"github.com/pfrederiksen/fis-results/internal/resultcache"
	"github.com/pfrederiksen/fis-results/internal/scrape"
)

// Scraper produces the results of one race
type Scraper interface {
	Scrape(ctx context.Context, id race.Identifier) (*race.ScrapeResult, error)
}

// Server serves race results over HTTP
type Server struct {
	scraper Scraper
	cache   *resultcache.Cache
	metrics *metrics.Manager
	log     *logger.Logger
}

// NewServer creates a server. Results are cached per race in cache.
func NewServer(s Scraper, cache *resultcache.Cache, m *metrics.Manager, log *logger.Logger) *Server {
	return &Server{scraper: s, cache: cache, metrics: m, log: log}
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "/races/{id}/results", s.handleResults(export.FormatJSON))
	s.handle(mux, "/races/{id}/results.csv", s.handleResults(export.FormatCSV))
	s.handle(mux, "/healthz", http.HandlerFunc(handleHealth))
	mux.Handle("GET /metrics", s.metrics.Handler())
	return mux
}

// handle registers a GET route; the path pattern is the metrics route label
func (s *Server) handle(mux *http.ServeMux, route string, h http.Handler) {
	mux.Handle(http.MethodGet+" "+route, s.instrument(route, h))
}

// statusRecorder captures the response status for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(started)
		s.metrics.RecordHTTPRequest(route, r.Method, rec.status, elapsed)
		s.log.Debug("request served", logger.Fields{
			"route":       route,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": elapsed.Milliseconds(),
		})
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleResults scrapes or looks up a race. refresh=true bypasses the cache.
func (s *Server) handleResults(format export.Format) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := race.ParseIdentifier(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, scrape.KindInvalidIdentifier.String(), err)
			return
		}

		if r.URL.Query().Get("refresh") == "true" {
			s.cache.Remove(id)
		}

		result, hit, err := s.cache.Load(r.Context(), id, s.scraper.Scrape)
		s.metrics.CacheLookup(hit)
		if err != nil {
			status, kind := errorStatus(err)
			writeError(w, status, kind, err)
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		if format == export.FormatCSV {
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", export.Filename(result.Source, result.FetchedAt)))
			if err := export.WriteCSV(w, result.Records); err != nil {
				s.log.Error("writing csv response", logger.Fields{"race_id": id.String()}, err)
			}
			return
		}
		if err := export.WriteJSON(w, result); err != nil {
			s.log.Error("writing json response", logger.Fields{"race_id": id.String()}, err)
		}
	})
}

// errorStatus maps a scrape failure to an HTTP status and error kind
func errorStatus(err error) (int, string) {
	var scrapeErr *scrape.ScrapeError
	if !errors.As(err, &scrapeErr) {
		return http.StatusInternalServerError, "internal"
	}

	switch scrapeErr.Kind {
	case scrape.KindInvalidIdentifier:
		return http.StatusBadRequest, scrapeErr.Kind.String()
	case scrape.KindPageStructureUnrecognized:
		return http.StatusUnprocessableEntity, scrapeErr.Kind.String()
	}

	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) && fetchErr.ClientError() {
		return http.StatusNotFound, scrapeErr.Kind.String()
	}
	return http.StatusBadGateway, scrapeErr.Kind.String()
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(v)
}
