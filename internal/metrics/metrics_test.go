package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManager_Recording(t *testing.T) {
	m := NewManager(WithRegistry(prometheus.NewRegistry()))

	m.FetchAttempt("network")
	m.FetchAttempt("success")
	m.FetchAttempt("success")
	m.ScrapeFinished("success", 150*time.Millisecond)
	m.RowsNormalized(58, 2, 1)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.RecordHTTPRequest("/races/{id}/results", http.MethodGet, http.StatusOK, 10*time.Millisecond)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"success attempts", testutil.ToFloat64(m.fetchAttempts.WithLabelValues("success")), 2},
		{"network attempts", testutil.ToFloat64(m.fetchAttempts.WithLabelValues("network")), 1},
		{"scrapes", testutil.ToFloat64(m.scrapes.WithLabelValues("success")), 1},
		{"records", testutil.ToFloat64(m.rowsRecorded.WithLabelValues("record")), 58},
		{"skipped", testutil.ToFloat64(m.rowsRecorded.WithLabelValues("skipped")), 2},
		{"anomalies", testutil.ToFloat64(m.rowsRecorded.WithLabelValues("anomaly")), 1},
		{"cache hits", testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")), 1},
		{"http requests", testutil.ToFloat64(m.httpRequests.WithLabelValues("/races/{id}/results", "GET", "200")), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestManager_Handler(t *testing.T) {
	m := NewManager()
	m.ScrapeFinished("fetchFailed", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `fisresults_scrape_total{outcome="fetchFailed"} 1`) {
		t.Errorf("metrics output missing scrape counter:\n%s", rec.Body.String())
	}
}

func TestNewManager_SeparateRegistries(t *testing.T) {
	// Each manager registers on its own registry, so creating two must not panic
	a := NewManager()
	b := NewManager(WithNamespace("other"))
	if a.Registry() == b.Registry() {
		t.Error("managers should not share a registry")
	}
}
