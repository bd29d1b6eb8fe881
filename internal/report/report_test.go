package report

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pable/go-cod-stats/internal/aggregator"
	"github.com/pable/go-cod-stats/internal/model"
	"github.com/pable/go-cod-stats/internal/query"
)

func match(ts time.Time, gt, mp string, o model.Outcome, kills, deaths float64) *model.CanonicalMatch {
	return &model.CanonicalMatch{
		Timestamp: ts,
		GameType:  gt,
		Map:       mp,
		Outcome:   o,
		Kills:     model.Float(kills),
		Deaths:    model.Float(deaths),
		KDRatio:   model.Float(kills / deaths),
	}
}

// ---- export ----

func TestWriteCSV_Columns(t *testing.T) {
	ts := time.Date(2025, 3, 1, 18, 5, 0, 0, time.UTC)
	rows := []*model.CanonicalMatch{
		match(ts, "Hardpoint", "Vault, Upper", model.OutcomeWin, 20, 10),
		{Timestamp: ts, GameType: "Control", Map: "Rewind"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records = %d, want 3", len(recs))
	}
	if len(recs[0]) != 16 || recs[0][0] != "Date" || recs[0][15] != "Damage Taken" {
		t.Errorf("header = %v", recs[0])
	}
	first := recs[1]
	if first[0] != "2025-03-01 18:05" {
		t.Errorf("date = %q", first[0])
	}
	if first[2] != "Vault, Upper" {
		t.Errorf("map with comma = %q", first[2])
	}
	if first[3] != "Win" || first[4] != "20.00" || first[7] != "2.00" {
		t.Errorf("row = %v", first)
	}
	second := recs[2]
	if second[3] != "" {
		t.Errorf("unknown outcome = %q, want empty", second[3])
	}
	for i := 4; i < 16; i++ {
		if second[i] != "" {
			t.Errorf("column %s = %q, want empty", recs[0][i], second[i])
		}
	}
}

func TestWriteCSV_QuotesEmbeddedQuotes(t *testing.T) {
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []*model.CanonicalMatch{{Timestamp: ts, Map: `The "Pit"`}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"The ""Pit"""`) {
		t.Errorf("quote escaping missing: %s", buf.String())
	}
}

func TestExportFilename(t *testing.T) {
	got := ExportFilename(time.Date(2025, 1, 9, 23, 0, 0, 0, time.UTC))
	if got != "cod-matches-2025-01-09.csv" {
		t.Errorf("ExportFilename = %q", got)
	}
}

// ---- tables ----

func TestNum_NaN(t *testing.T) {
	if got := num(math.NaN(), 2); got != "N/A" {
		t.Errorf("num(NaN) = %q", got)
	}
	if got := num(1.234, 2); got != "1.23" {
		t.Errorf("num = %q", got)
	}
}

func TestPrintMatchTable(t *testing.T) {
	ts := time.Date(2025, 3, 1, 18, 5, 0, 0, time.UTC)
	data := []*model.CanonicalMatch{
		match(ts, "Hardpoint", "Vault", model.OutcomeWin, 20, 10),
		match(ts.Add(time.Hour), "Control", "Rewind", model.OutcomeLoss, 5, 10),
	}
	var buf bytes.Buffer
	PrintMatchTable(&buf, query.Table(data, query.TableQuery{}))
	out := buf.String()
	for _, want := range []string{"Hardpoint", "Rewind", "Win", "Loss", "2.00", "page 1/1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintVeto_TooFewMaps(t *testing.T) {
	var buf bytes.Buffer
	PrintVeto(&buf, aggregator.Veto{})
	if !strings.Contains(buf.String(), "Play more ranked matches") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintConsistency_NA(t *testing.T) {
	var buf bytes.Buffer
	c := aggregator.ConsistencyOf(nil)
	PrintConsistency(&buf, c)
	if !strings.Contains(buf.String(), "N/A") {
		t.Errorf("output = %q", buf.String())
	}
}
