package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/pable/go-cod-stats/internal/ingest"
	"github.com/pable/go-cod-stats/internal/model"
)

type staticCSV struct {
	rows  []model.RawCSVRow
	calls int
}

func (s *staticCSV) LoadCSV(ctx context.Context) ([]model.RawCSVRow, error) {
	s.calls++
	return s.rows, nil
}

func rows() []model.RawCSVRow {
	return []model.RawCSVRow{
		{"UTC Timestamp": "2024-01-01 10:00", "Game Type": "Hardpoint", "Map": "Vault", "Match Outcome": "win", "Kills": "20", "Deaths": "10", "Skill": "300", "Total XP": "900"},
		{"UTC Timestamp": "2024-01-01 10:20", "Game Type": "Control", "Map": "Rewind", "Match Outcome": "loss", "Kills": "8", "Deaths": "16", "Skill": "250", "Total XP": "700"},
		{"UTC Timestamp": "2024-01-01 10:40", "Game Type": "Hardpoint", "Map": "Rewind", "Match Outcome": "win", "Kills": "15", "Deaths": "10", "Skill": "280", "Total XP": "800"},
		{"UTC Timestamp": "2024-01-01 11:00", "Game Type": "Team Deathmatch", "Map": "Vault", "Match Outcome": "loss", "Kills": "12", "Deaths": "12", "Skill": "260", "Total XP": "600"},
	}
}

func newServer(t *testing.T, load bool) (*Server, *staticCSV) {
	t.Helper()
	csv := &staticCSV{rows: rows()}
	o := ingest.New(ingest.NewStore(), nil, nil, csv, ingest.Options{})
	if load {
		if res := o.Load(context.Background()); res.State != ingest.StateReady {
			t.Fatalf("load = %+v", res)
		}
	}
	return New(o, Options{}), csv
}

func get(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v (%s)", target, err, rec.Body.String())
	}
	return rec, body
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("data = %#v", body["data"])
	}
	return d
}

// ---- readiness ----

func TestNotReady_Returns503(t *testing.T) {
	s, _ := newServer(t, false)
	rec, body := get(t, s, "/api/summary")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body["status"] != "error" {
		t.Errorf("body = %v", body)
	}

	rec, body = get(t, s, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	if d := data(t, body); d["ready"] != false || d["state"] != "idle" {
		t.Errorf("health = %v", d)
	}
}

// ---- data routes ----

func TestOptions(t *testing.T) {
	s, _ := newServer(t, true)
	rec, body := get(t, s, "/api/options")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	maps, _ := data(t, body)["maps"].([]any)
	if len(maps) != 3 || maps[0] != "all" || maps[1] != "Rewind" || maps[2] != "Vault" {
		t.Errorf("maps = %v", maps)
	}
}

func TestView_FiltersByQuery(t *testing.T) {
	s, _ := newServer(t, true)
	_, body := get(t, s, "/api/view?mode=Hardpoint&metric=Kills")
	d := data(t, body)
	if d["count"] != float64(2) {
		t.Errorf("count = %v, want 2", d["count"])
	}
	vals, _ := d["values"].([]any)
	if len(vals) != 2 || vals[0] != float64(20) || vals[1] != float64(15) {
		t.Errorf("values = %v", vals)
	}
}

func TestView_UnknownMetric(t *testing.T) {
	s, _ := newServer(t, true)
	rec, _ := get(t, s, "/api/view?metric=Nope")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSummary(t *testing.T) {
	s, _ := newServer(t, true)
	_, body := get(t, s, "/api/summary")
	sum, _ := data(t, body)["summary"].(map[string]any)
	if sum["games"] != float64(4) || sum["wins"] != float64(2) || sum["winRate"] != float64(50) {
		t.Errorf("summary = %v", sum)
	}
}

func TestMatches_Paging(t *testing.T) {
	s, _ := newServer(t, true)
	_, body := get(t, s, "/api/matches?pageSize=3&page=2")
	d := data(t, body)
	if d["totalPages"] != float64(2) || d["page"] != float64(2) {
		t.Errorf("page = %v", d)
	}
	if rows, _ := d["rows"].([]any); len(rows) != 1 {
		t.Errorf("rows = %d, want 1", len(rows))
	}

	rec, _ := get(t, s, "/api/matches?pageSize=abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad pageSize status = %d", rec.Code)
	}
}

func TestMaps(t *testing.T) {
	s, _ := newServer(t, true)
	_, body := get(t, s, "/api/maps")
	perf, _ := data(t, body)["performance"].([]any)
	if len(perf) != 2 {
		t.Fatalf("performance = %v", perf)
	}
}

func TestClearCache_Reloads(t *testing.T) {
	s, csv := newServer(t, true)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if csv.calls != 2 {
		t.Errorf("csv calls = %d, want 2", csv.calls)
	}
	if !s.store.Ready() {
		t.Error("store not ready after reload")
	}
}

type brokenCSV struct{}

func (brokenCSV) LoadCSV(ctx context.Context) ([]model.RawCSVRow, error) {
	return nil, errors.New("csv unavailable")
}

func TestEmptyState_ReportsNoData(t *testing.T) {
	o := ingest.New(ingest.NewStore(), nil, nil, brokenCSV{}, ingest.Options{})
	if res := o.Load(context.Background()); res.State != ingest.StateEmpty {
		t.Fatalf("load = %+v, want empty", res)
	}
	s := New(o, Options{})

	rec, body := get(t, s, "/api/summary")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	e, _ := body["error"].(map[string]any)
	if e["code"] != "NO_DATA" {
		t.Errorf("error = %v, want NO_DATA", e)
	}
	if msg, _ := e["message"].(string); !strings.Contains(msg, "codstats upload") {
		t.Errorf("message = %q, want upload hint", msg)
	}

	_, body = get(t, s, "/api/health")
	if d := data(t, body); d["state"] != "empty" || d["ready"] != false {
		t.Errorf("health = %v", d)
	}
}
