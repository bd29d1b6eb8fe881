package model

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestParseOutcome(t *testing.T) {
	cases := map[string]Outcome{
		"win":     OutcomeWin,
		" WIN ":   OutcomeWin,
		"Loss":    OutcomeLoss,
		"quit":    OutcomeLoss,
		"":        OutcomeUnknown,
		"draw":    OutcomeUnknown,
		"Tie":     OutcomeUnknown,
		"Unknown": OutcomeUnknown,
	}
	for in, want := range cases {
		if got := ParseOutcome(in); got != want {
			t.Errorf("ParseOutcome(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOutcome_TextRoundTrip(t *testing.T) {
	for _, o := range []Outcome{OutcomeUnknown, OutcomeWin, OutcomeLoss} {
		b, err := o.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Outcome
		if err := back.UnmarshalText(b); err != nil {
			t.Fatal(err)
		}
		if back != o {
			t.Errorf("round trip %v -> %q -> %v", o, b, back)
		}
	}
}

func TestMetric_Outcome(t *testing.T) {
	m := &CanonicalMatch{Outcome: OutcomeWin}
	if v, ok := m.Metric(MetricOutcome); !ok || v != 1 {
		t.Errorf("win: got %v,%v", v, ok)
	}
	m.Outcome = OutcomeLoss
	if v, ok := m.Metric(MetricOutcome); !ok || v != 0 {
		t.Errorf("loss: got %v,%v", v, ok)
	}
	m.Outcome = OutcomeUnknown
	if _, ok := m.Metric(MetricOutcome); ok {
		t.Error("unknown outcome should be undefined")
	}
}

func TestMetric_AbsentVsZero(t *testing.T) {
	m := &CanonicalMatch{Kills: Float(0)}
	if v, ok := m.Metric(MetricKills); !ok || v != 0 {
		t.Errorf("kills: got %v,%v, want 0,true", v, ok)
	}
	if _, ok := m.Metric(MetricHeadshotPct); ok {
		t.Error("headshot % should be undefined when unset")
	}
	if _, ok := m.Metric("Nope"); ok {
		t.Error("unknown metric should be undefined")
	}
}

func TestSortMetrics(t *testing.T) {
	names := []string{"Medal XP", MetricKD, "Challenge XP", MetricSkill, MetricOutcome}
	SortMetrics(names)
	want := []string{MetricSkill, MetricOutcome, MetricKD, "Challenge XP", "Medal XP"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestRawAPIRecord_Tolerant(t *testing.T) {
	in := `{"match_start_timestamp": 1700000000, "kills": "12", "deaths": 4,
	        "assists": null, "is_ranked": 1, "match_outcome": "win", "extra": "x"}`
	var r RawAPIRecord
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !r.Kills.Set || r.Kills.V != 12 {
		t.Errorf("kills = %+v", r.Kills)
	}
	if r.Assists.Set {
		t.Error("null assists should be unset")
	}
	if r.Headshots.Set {
		t.Error("missing headshots should be unset")
	}
	if !r.IsRanked.Set || !r.IsRanked.V {
		t.Errorf("is_ranked = %+v", r.IsRanked)
	}
	if r.MatchStartTimestamp.S != "1700000000" {
		t.Errorf("timestamp text = %q", r.MatchStartTimestamp.S)
	}
}

func TestIsRankedMode(t *testing.T) {
	if !IsRankedMode("Hardpoint") || IsRankedMode("Team Deathmatch") || IsRankedMode("hardpoint") {
		t.Error("ranked mode membership is exact")
	}
}
