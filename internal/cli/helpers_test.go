package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/pfrederiksen/fis-results/internal/logger"
)

const resultsPage = `<html><body>
<table class="table-results">
  <thead><tr><th>Rank</th><th>Bib</th><th>Name</th><th>Nation</th><th>Time</th><th>FIS Points</th></tr></thead>
  <tbody>
    <tr><td>1</td><td>15</td><td>A. Skier</td><td>NOR</td><td>1:23.45</td><td>20.00</td></tr>
    <tr><td>DNF</td><td>7</td><td>B. Racer</td><td>ITA</td><td></td><td></td></tr>
  </tbody>
</table>
</body></html>`

const emptyPage = `<html><body>
<table class="table-results">
  <thead><tr><th>Rank</th><th>Bib</th><th>Name</th><th>Nation</th><th>Time</th><th>FIS Points</th></tr></thead>
  <tbody></tbody>
</table>
</body></html>`

// upstream serves result pages keyed by the raceid query parameter
type upstream struct {
	*httptest.Server
	hits atomic.Int32
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		switch r.URL.Query().Get("raceid") {
		case "123":
			fmt.Fprint(w, resultsPage)
		case "empty":
			fmt.Fprint(w, emptyPage)
		case "broken":
			fmt.Fprint(w, "<html><body><p>maintenance</p></body></html>")
		case "down":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) template() string {
	return u.URL + "/results?raceid={id}"
}

// writeConfig points the fetcher at u with a fast retry schedule
func writeConfig(t *testing.T, u *upstream) string {
	t.Helper()
	content := fmt.Sprintf(`url_template: %q
timeout: 2s
log_level: error
retry:
  attempts: 1
  initial_interval: 1ms
  max_interval: 2ms
`, u.template())

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// restoreLogger undoes the logger.SetDefault done by command setup
func restoreLogger(t *testing.T) {
	t.Helper()
	prev := logger.Default()
	t.Cleanup(func() { logger.SetDefault(prev) })
}
