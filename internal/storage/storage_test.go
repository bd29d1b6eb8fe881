package storage

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pable/go-cod-stats/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKVRoundTrip(t *testing.T) {
	db := openMemDB(t)

	if _, err := db.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}
	if err := db.Put("k", []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := db.Put("k", []byte("v2")); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	got, err := db.Get("k")
	if err != nil || string(got) != "v2" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := db.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: %v", err)
	}
	if err := db.Delete("k"); err != nil {
		t.Errorf("delete missing key: %v", err)
	}
}

func sampleMatches() []model.CanonicalMatch {
	base := time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)
	return []model.CanonicalMatch{
		{
			Timestamp: base, Source: model.SourceAPI,
			GameType: "Hardpoint", Map: "Vault", Outcome: model.OutcomeWin, MatchOutcomeRaw: "win",
			Ranked: true, Kills: model.Float(25), Deaths: model.Float(10), KDRatio: model.Float(2.5),
			HeadshotPct: model.Float(0), TotalXP: model.Float(12000),
		},
		{
			Timestamp: base.Add(40 * time.Minute), Source: model.SourceCSV,
			GameType: "FFA", Map: "Rewind", Outcome: model.OutcomeUnknown,
			Kills: model.Float(12), Deaths: model.Float(0), KDRatio: model.Float(99),
		},
		{
			Timestamp: base.Add(2 * time.Hour), TimestampSynthesized: true, Source: model.SourceUpload,
			GameType: "Control", Outcome: model.OutcomeLoss, MatchOutcomeRaw: "loss",
			PctTimeMoving: model.Float(81.25),
		},
	}
}

// equalMatches compares timestamps as instants and everything else deeply.
func equalMatches(t *testing.T, got, want []model.CanonicalMatch) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if !g.Timestamp.Equal(w.Timestamp) {
			t.Errorf("[%d] timestamp %v, want %v", i, g.Timestamp, w.Timestamp)
		}
		g.Timestamp, w.Timestamp = time.Time{}, time.Time{}
		if !reflect.DeepEqual(g, w) {
			t.Errorf("[%d] got %+v\nwant %+v", i, g, w)
		}
	}
}

func TestMatchCacheRoundTrip(t *testing.T) {
	db := openMemDB(t)
	c := NewMatchCache(db, "codStatsData")

	want := sampleMatches()
	if err := c.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := c.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	equalMatches(t, got, want)
	if got[1].HeadshotPct != nil {
		t.Error("absent headshot % came back set")
	}
	if got[0].HeadshotPct == nil || *got[0].HeadshotPct != 0 {
		t.Error("zero headshot % lost in round trip")
	}
}

func TestMatchCacheCorrupt(t *testing.T) {
	db := openMemDB(t)
	c := NewMatchCache(db, "codStatsData")
	if err := db.Put("codStatsData", []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	_, err := c.Load()
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("want decode error, got %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("after clear: %v", err)
	}
}

func TestLoadsHistory(t *testing.T) {
	db := openMemDB(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, src := range []string{"api", "csv"} {
		err := db.InsertLoad(LoadRecord{
			LoadedAt: now.Add(time.Duration(i) * time.Minute), Source: src, State: "ready",
			Input: 10, Kept: 8, Malformed: 1, Invalid: 1, FromCache: i == 1,
		})
		if err != nil {
			t.Fatalf("InsertLoad: %v", err)
		}
	}
	loads, err := db.ListLoads(10)
	if err != nil {
		t.Fatalf("ListLoads: %v", err)
	}
	if len(loads) != 2 || loads[0].Source != "csv" || !loads[0].FromCache {
		t.Fatalf("loads = %+v", loads)
	}
	if !loads[1].LoadedAt.Equal(now) {
		t.Errorf("loaded_at = %v", loads[1].LoadedAt)
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if db.Path() != path {
		t.Errorf("Path = %q", db.Path())
	}
	if err := db.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
}
