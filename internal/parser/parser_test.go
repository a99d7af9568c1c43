package parser

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pfrederiksen/fis-results/internal/race"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return data
}

func TestParse_LiveTiming(t *testing.T) {
	table, err := Parse(loadFixture(t, "live_timing.html"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if table.Marker != "compact-styled-table" {
		t.Errorf("Marker = %q, want compact-styled-table", table.Marker)
	}
	if table.Candidates != 2 {
		t.Errorf("Candidates = %d, want 2", table.Candidates)
	}

	wantHeader := race.RawRow{"Place", "Bib", "Name", "Nation", "Time", "Points"}
	if diff := cmp.Diff(wantHeader, table.Header); diff != "" {
		t.Errorf("Header mismatch (-want +got):\n%s", diff)
	}

	wantRows := []race.RawRow{
		{"1", "15", "A. Skier", "NOR", "1:23.45", "20.0"},
		{"2.", "3", "C. Carver", "AUT", "1:24.01", "25.61"},
		{"DNF", "7", "B. Racer", "ITA", "", "∞"},
	}
	if diff := cmp.Diff(wantRows, table.Rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_FISGrid(t *testing.T) {
	table, err := Parse(loadFixture(t, "fis_grid.html"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if table.Marker != "events-info-results" {
		t.Errorf("Marker = %q, want events-info-results", table.Marker)
	}

	wantHeader := race.RawRow{"Rank", "Bib", "Athlete", "Nation", "Time", "FIS Points"}
	if diff := cmp.Diff(wantHeader, table.Header); diff != "" {
		t.Errorf("Header mismatch (-want +got):\n%s", diff)
	}

	wantRows := []race.RawRow{
		{"1", "15", "SKIER A.", "NOR", "1:23.45", "0.00"},
		{"2", "21", "CARVER C.", "AUT", "1:24.12", "8,07"},
		{"", "7", "RACER B.", "ITA", "DNF1", ""},
	}
	if diff := cmp.Diff(wantRows, table.Rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_GenericTable(t *testing.T) {
	table, err := Parse(loadFixture(t, "generic.html"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if table.Marker != "table-results" {
		t.Errorf("Marker = %q, want table-results", table.Marker)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if table.Rows[1].Cell(3) != "DSQ" {
		t.Errorf("rank cell of second row = %q, want DSQ", table.Rows[1].Cell(3))
	}
}

func TestParse_EmptyTable(t *testing.T) {
	table, err := Parse(loadFixture(t, "cancelled.html"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(table.Rows))
	}
	if len(table.Header) != 6 {
		t.Errorf("got %d header cells, want 6", len(table.Header))
	}
}

func TestParse_TableNotFound(t *testing.T) {
	body := []byte("<html><body><table class=\"layout\"><tr><td>1</td><td>2</td></tr></table></body></html>")

	_, err := Parse(body)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if parseErr.Kind != KindTableNotFound {
		t.Errorf("Kind = %v, want tableNotFound", parseErr.Kind)
	}
	if parseErr.Preview != string(body) {
		t.Errorf("Preview = %q, want the page", parseErr.Preview)
	}
}

func TestParse_PreviewTruncated(t *testing.T) {
	body := []byte("<html><body>" + strings.Repeat("é", 2*PreviewLength) + "</body></html>")

	_, err := Parse(body)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if got := len([]rune(parseErr.Preview)); got != PreviewLength {
		t.Errorf("Preview has %d characters, want %d", got, PreviewLength)
	}
}

func TestParse_WhitespaceNoiseIndependent(t *testing.T) {
	clean := `<table class="table-results">
<tr><th>Rank</th><th>Bib</th><th>Name</th><th>Nation</th><th>Time</th><th>Points</th></tr>
<tr><td>1</td><td>15</td><td>A. Skier</td><td>NOR</td><td>1:23.45</td><td>20.0</td></tr>
<tr><td>2</td><td>9</td><td>D. Downhill</td><td>SUI</td><td>1:23.99</td><td>24.3</td></tr>
</table>`
	noisy := `<table class="table-results">
<tr><th> Rank </th><th>Bib</th><th>Name</th><th>Nation</th><th>Time</th><th>Points</th></tr>
<tr><td colspan="6">Official results</td></tr>
<tr><td>
   1 </td><td>15</td><td><b>A.</b>&nbsp;Skier</td><td>NOR</td><td>1:23.45</td><td>20.0</td></tr>
<tr><td> </td><td></td><td></td><td></td><td></td><td></td></tr>
<tr><th>Rank</th><th>Bib</th><th>Name</th><th>Nation</th><th>Time</th><th>Points</th></tr>
<tr><td>2</td><td>9</td><td><span>D. Downhill</span></td><td>SUI</td><td>1:23.99</td><td>24.3</td></tr>
</table>`

	want, err := Parse([]byte(clean))
	if err != nil {
		t.Fatalf("Parse(clean) failed: %v", err)
	}
	got, err := Parse([]byte(noisy))
	if err != nil {
		t.Fatalf("Parse(noisy) failed: %v", err)
	}

	if diff := cmp.Diff(want.Rows, got.Rows); diff != "" {
		t.Errorf("noise changed the rows (-clean +noisy):\n%s", diff)
	}
}

func TestParse_NestedTablesIgnored(t *testing.T) {
	body := `<table class="table-results">
<tr><th>Rank</th><th>Bib</th><th>Name</th></tr>
<tr><td>1</td><td>15</td><td>A. Skier<table><tr><td>9</td><td>x</td></tr></table></td></tr>
</table>`

	table, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Errorf("got %d rows, want 1", len(table.Rows))
	}
}

func TestParse_CaptionAboveHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"td header", `<tr><td>Bib</td><td>Rank</td><td>Name</td><td>Nation</td><td>Time</td><td>Points</td></tr>`},
		{"th header", `<tr><th>Bib</th><th>Rk.</th><th>Name</th><th>Nation</th><th>Time</th><th>Points</th></tr>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `<table class="table-results">
<tr><td colspan="6">Official results</td></tr>
` + tt.header + `
<tr><td>15</td><td>1</td><td>A. Skier</td><td>NOR</td><td>1:23.45</td><td>20.0</td></tr>
<tr><td>7</td><td>2</td><td>B. Racer</td><td>ITA</td><td>1:24.00</td><td>22.5</td></tr>
</table>`

			table, err := Parse([]byte(body))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(table.Header) != 6 || table.Header[0] != "Bib" {
				t.Errorf("Header = %q, want the column header row", table.Header)
			}
			if len(table.Rows) != 2 {
				t.Errorf("got %d rows, want 2", len(table.Rows))
			}
		})
	}
}

func TestParse_CaptionAfterDataIsNotHeader(t *testing.T) {
	body := `<table class="table-results">
<tr><td>Rg</td><td>Startnr</td><td>Läufer</td></tr>
<tr><td>1</td><td>15</td><td>A. Skier</td></tr>
<tr><td>Bib</td><td>Name</td><td>Time</td></tr>
</table>`

	table, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diff := cmp.Diff(race.RawRow{"Rg", "Startnr", "Läufer"}, table.Header); diff != "" {
		t.Errorf("Header mismatch (-want +got):\n%s", diff)
	}
	if len(table.Rows) != 1 {
		t.Errorf("got %d rows, want 1", len(table.Rows))
	}
}

func TestRankColumn(t *testing.T) {
	tests := []struct {
		header race.RawRow
		want   int
	}{
		{race.RawRow{"Bib", "Rank", "Name"}, 1},
		{race.RawRow{"Bib", "Name", "Rk."}, 2},
		{race.RawRow{"Bib", "Position", "Name"}, 1},
		{race.RawRow{"Bib", "PL.", "Name"}, 1},
		{race.RawRow{"Bib", "Name"}, 0},
	}

	for _, tt := range tests {
		if got := rankColumn(tt.header); got != tt.want {
			t.Errorf("rankColumn(%q) = %d, want %d", tt.header, got, tt.want)
		}
	}

	for _, word := range []string{"Rk.", "position", "No.", "Nat.", " Diff. "} {
		if !IsHeaderWord(word) {
			t.Errorf("IsHeaderWord(%q) = false, want true", word)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		cells race.RawRow
		allTh bool
		want  RowClass
	}{
		{"numeric rank", race.RawRow{"1", "15", "A. Skier"}, false, ClassData},
		{"rank with dot", race.RawRow{"12.", "15", "A. Skier"}, false, ClassData},
		{"sentinel rank", race.RawRow{"DNS", "15", "A. Skier"}, false, ClassData},
		{"blank rank sentinel elsewhere", race.RawRow{"", "15", "A. Skier", "DSQ"}, false, ClassData},
		{"empty cells", race.RawRow{"", " ", ""}, false, ClassSeparator},
		{"th cells", race.RawRow{"Foo", "Bar"}, true, ClassHeader},
		{"header words", race.RawRow{"Rank", "Bib", "Name"}, false, ClassHeader},
		{"caption", race.RawRow{"Did not finish"}, false, ClassNoise},
		{"blank rank no sentinel", race.RawRow{"", "15", "A. Skier"}, false, ClassNoise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.cells, tt.allTh, 0); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.cells, got, tt.want)
			}
		})
	}
}
