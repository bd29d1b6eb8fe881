package normalize

import (
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/pable/go-cod-stats/internal/model"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newNorm(src model.Source) *Normalizer {
	n := New(src)
	n.Now = func() time.Time { return fixedNow }
	return n
}

func decodeAPI(t *testing.T, s string) model.RawAPIRecord {
	t.Helper()
	var r model.RawAPIRecord
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return r
}

func csvRow(kv ...string) model.RawCSVRow {
	r := model.RawCSVRow{}
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i]] = kv[i+1]
	}
	return r
}

// ---- CSV path ----

func TestFromCSV_RecomputesDerived(t *testing.T) {
	n := newNorm(model.SourceCSV)
	m, err := n.FromCSV(csvRow(
		"UTC Timestamp", "2024-11-02 21:15",
		"Game Type", "Hardpoint",
		"Map", "Vault",
		"Match Outcome", "WIN",
		"Kills", " 20 ",
		"Deaths", "8",
		"Assists", "4",
		"Headshots", "5",
		"K/D Ratio", "7.77",
		"Total XP", "9000",
		"Percentage Of Time Moving", "83.5%",
	))
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	want := time.Date(2024, 11, 2, 21, 15, 0, 0, time.UTC)
	if !m.Timestamp.Equal(want) || m.TimestampSynthesized {
		t.Errorf("timestamp = %v (synth=%v), want %v", m.Timestamp, m.TimestampSynthesized, want)
	}
	if *m.KDRatio != 2.5 {
		t.Errorf("K/D = %v, want 2.5 (recomputed)", *m.KDRatio)
	}
	if *m.EKIA != 24 || *m.EKIAOverD != 3 {
		t.Errorf("EKIA = %v, EKIA/D = %v", *m.EKIA, *m.EKIAOverD)
	}
	if *m.HeadshotPct != 25 {
		t.Errorf("HS%% = %v, want 25", *m.HeadshotPct)
	}
	if *m.PctTimeMoving != 83.5 {
		t.Errorf("time moving = %v", *m.PctTimeMoving)
	}
	if !m.Ranked {
		t.Error("Hardpoint should be ranked")
	}
	if m.Outcome != model.OutcomeWin {
		t.Errorf("outcome = %v", m.Outcome)
	}
}

func TestFromCSV_ZeroDeathCap(t *testing.T) {
	n := newNorm(model.SourceCSV)
	m, _ := n.FromCSV(csvRow("Game Type", "Control", "Kills", "6", "Deaths", "0"))
	if *m.KDRatio != 99 || *m.EKIAOverD != 99 {
		t.Errorf("K/D = %v, EKIA/D = %v, want 99/99", *m.KDRatio, *m.EKIAOverD)
	}
	m, _ = n.FromCSV(csvRow("Game Type", "Control", "Kills", "0", "Deaths", "0"))
	if *m.KDRatio != 0 || *m.EKIAOverD != 0 {
		t.Errorf("K/D = %v, EKIA/D = %v, want 0/0", *m.KDRatio, *m.EKIAOverD)
	}
}

func TestFromCSV_NoKillsLeavesRatiosUndefined(t *testing.T) {
	n := newNorm(model.SourceCSV)
	for _, kills := range []string{"n/a", ""} {
		row := csvRow("Game Type", "Hardpoint", "Deaths", "5", "Assists", "2", "Total XP", "900")
		if kills != "" {
			row["Kills"] = kills
		}
		m, err := n.FromCSV(row)
		if err != nil {
			t.Fatalf("FromCSV(kills=%q): %v", kills, err)
		}
		if m.KDRatio != nil || m.EKIA != nil || m.EKIAOverD != nil {
			t.Errorf("kills=%q: K/D=%v EKIA=%v EKIA/D=%v, want all unset", kills, m.KDRatio, m.EKIA, m.EKIAOverD)
		}
		if _, ok := m.Metric(model.MetricKD); ok {
			t.Errorf("kills=%q: K/D metric should be undefined", kills)
		}
	}
}

func TestFromCSV_HeadshotAbsentNotZero(t *testing.T) {
	n := newNorm(model.SourceCSV)
	m, _ := n.FromCSV(csvRow("Game Type", "FFA", "Kills", "10", "Deaths", "5"))
	if m.HeadshotPct != nil {
		t.Errorf("headshot %% = %v, want unset", *m.HeadshotPct)
	}
	if m.Ranked {
		t.Error("FFA is not ranked")
	}
}

func TestFromCSV_MissingOutcomeIsUnknown(t *testing.T) {
	n := newNorm(model.SourceCSV)
	m, _ := n.FromCSV(csvRow("Game Type", "FFA", "Kills", "1"))
	if m.Outcome != model.OutcomeUnknown {
		t.Errorf("outcome = %v, want unknown", m.Outcome)
	}
	m, _ = n.FromCSV(csvRow("Game Type", "FFA", "Match Outcome", "loss"))
	if m.Outcome != model.OutcomeLoss {
		t.Errorf("outcome = %v, want loss", m.Outcome)
	}
}

func TestFromCSV_BadTimestampSynthesized(t *testing.T) {
	n := newNorm(model.SourceCSV)
	m, err := n.FromCSV(csvRow("UTC Timestamp", "yesterday", "Game Type", "FFA"))
	if err != nil {
		t.Fatal(err)
	}
	if !m.TimestampSynthesized || !m.Timestamp.Equal(fixedNow) {
		t.Errorf("want synthesized %v, got %v (%v)", fixedNow, m.Timestamp, m.TimestampSynthesized)
	}
}

func TestFromCSV_EmptyRow(t *testing.T) {
	n := newNorm(model.SourceCSV)
	if _, err := n.FromCSV(model.RawCSVRow{}); err == nil {
		t.Error("expected error for empty row")
	}
	if _, err := n.FromCSV(csvRow("Notes", "hello")); err == nil {
		t.Error("expected error for row without match fields")
	}
}

// ---- API / upload path ----

func TestFromAPI_TrustsSource(t *testing.T) {
	n := newNorm(model.SourceAPI)
	m, err := n.FromAPI(decodeAPI(t, `{
		"match_start_timestamp": "2024-11-02T21:15:00Z",
		"game_type": "Team Deathmatch", "map": "Skyline",
		"kills": 20, "deaths": 8, "kd_ratio": 7.77,
		"is_ranked": true, "match_outcome": "loss", "total_xp": 100}`))
	if err != nil {
		t.Fatal(err)
	}
	if *m.KDRatio != 7.77 {
		t.Errorf("K/D = %v, want source value 7.77", *m.KDRatio)
	}
	if !m.Ranked {
		t.Error("API ranked flag should be trusted")
	}
	if m.Outcome != model.OutcomeLoss {
		t.Errorf("outcome = %v", m.Outcome)
	}
	if m.HeadshotPct != nil {
		t.Error("headshot % absent in source should stay absent")
	}
}

func TestFromAPI_UntrustedRecomputes(t *testing.T) {
	n := newNorm(model.SourceAPI)
	n.TrustPrecomputedMetrics = false
	m, _ := n.FromAPI(decodeAPI(t, `{"game_type": "Control", "kills": 20, "deaths": 8, "kd_ratio": 7.77, "is_ranked": false}`))
	if *m.KDRatio != 2.5 {
		t.Errorf("K/D = %v, want 2.5", *m.KDRatio)
	}
	if !m.Ranked {
		t.Error("Control should be classified ranked when recomputing")
	}
}

func TestFromAPI_NoOutcomeUnknown(t *testing.T) {
	n := newNorm(model.SourceAPI)
	m, _ := n.FromAPI(decodeAPI(t, `{"game_type": "FFA", "kills": 3}`))
	if m.Outcome != model.OutcomeUnknown {
		t.Errorf("outcome = %v, want unknown", m.Outcome)
	}
	if !m.TimestampSynthesized {
		t.Error("missing timestamp should be synthesized")
	}
}

func TestFromAPI_SecondaryTimestampUploadOnly(t *testing.T) {
	rec := decodeAPI(t, `{"utc_timestamp": "2024-05-05 10:00:00", "game_type": "FFA"}`)
	want := time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)

	m, _ := newNorm(model.SourceUpload).FromAPI(rec)
	if !m.Timestamp.Equal(want) || m.TimestampSynthesized {
		t.Errorf("upload: got %v synth=%v", m.Timestamp, m.TimestampSynthesized)
	}
	m, _ = newNorm(model.SourceAPI).FromAPI(rec)
	if !m.TimestampSynthesized {
		t.Error("api path should not read utc_timestamp")
	}
}

func TestFromAPI_UploadZeroFills(t *testing.T) {
	m, _ := newNorm(model.SourceUpload).FromAPI(decodeAPI(t, `{"game_type": "FFA", "kills": 3}`))
	if m.Deaths == nil || *m.Deaths != 0 || m.TotalXP == nil || *m.TotalXP != 0 {
		t.Errorf("upload should zero-fill numerics: deaths=%v xp=%v", m.Deaths, m.TotalXP)
	}
}

func TestFromAPI_Empty(t *testing.T) {
	if _, err := newNorm(model.SourceAPI).FromAPI(model.RawAPIRecord{}); err == nil {
		t.Error("expected ErrEmptyRecord")
	}
}

// ---- validity + batch ----

func TestIsValidMatch(t *testing.T) {
	if IsValidMatch(&model.CanonicalMatch{TotalXP: model.Float(0)}) {
		t.Error("zero XP should be invalid")
	}
	if !IsValidMatch(&model.CanonicalMatch{}) {
		t.Error("absent XP should be valid")
	}
	if !IsValidMatch(&model.CanonicalMatch{TotalXP: model.Float(1)}) {
		t.Error("XP 1 should be valid")
	}
	if !IsValidUpload(&model.CanonicalMatch{TotalXP: model.Float(0)}) {
		t.Error("upload keeps zero XP")
	}
	if IsValidUpload(&model.CanonicalMatch{TotalXP: model.Float(-5)}) {
		t.Error("upload rejects negative XP")
	}
}

func TestCSVBatch_FiltersAndSorts(t *testing.T) {
	rows := []model.RawCSVRow{
		csvRow("UTC Timestamp", "2024-01-02 10:00", "Game Type", "FFA", "Total XP", "500"),
		csvRow("UTC Timestamp", "2024-01-01 10:00", "Game Type", "FFA", "Total XP", "0"),
		{},
		csvRow("UTC Timestamp", "2024-01-01 09:00", "Game Type", "FFA"),
	}
	ms, st := newNorm(model.SourceCSV).CSVBatch(rows)
	if len(ms) != 2 {
		t.Fatalf("kept %d, want 2", len(ms))
	}
	if st.Malformed != 1 || st.Invalid != 1 || st.Kept() != 2 {
		t.Errorf("stats = %+v", st)
	}
	if !ms[0].Timestamp.Before(ms[1].Timestamp) {
		t.Error("batch not sorted ascending")
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Time{
		"2024-01-02T03:04:05Z":      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		"2024-01-02T05:04:05+02:00": time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		"2024-01-02 03:04":          time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
		"1700000000":                time.Unix(1700000000, 0).UTC(),
		"1700000000000":             time.Unix(1700000000, 0).UTC(),
	}
	for in, want := range cases {
		got, ok := ParseTimestamp(in)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v,%v want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseTimestamp("not a date"); ok {
		t.Error("garbage should not parse")
	}
}
