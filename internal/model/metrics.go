package model

import (
	"math"
	"sort"
)

// Metric names as shown in selectors and table headers.
const (
	MetricSkill       = "Skill"
	MetricOutcome     = "Match Outcome"
	MetricKD          = "K/D Ratio"
	MetricKills       = "Kills"
	MetricEKIAD       = "EKIA/D Ratio"
	MetricEKIA        = "EKIA"
	MetricDeaths      = "Deaths"
	MetricDamageDone  = "Damage Done"
	MetricDamageTaken = "Damage Taken"
	MetricAssists     = "Assists"
	MetricScore       = "Score"
	MetricHeadshotPct = "Headshot %"
	MetricAccuracyPct = "Accuracy %"
	MetricTimeMoving  = "Percentage Of Time Moving"
	MetricHeadshots   = "Headshots"
	MetricShots       = "Shots"
	MetricHits        = "Hits"
	MetricTotalXP     = "Total XP"
	MetricScoreXP     = "Score XP"
	MetricChallengeXP = "Challenge XP"
	MetricMatchXP     = "Match XP"
	MetricMedalXP     = "Medal XP"
	DefaultMetric     = MetricSkill
)

// PreferredMetricOrder is the selector order; metrics not listed sort
// alphabetically after these.
var PreferredMetricOrder = []string{
	MetricSkill, MetricOutcome, MetricKD, MetricKills, MetricEKIAD, MetricEKIA,
	MetricDeaths, MetricDamageDone, MetricDamageTaken, MetricAssists, MetricScore,
	MetricHeadshotPct, MetricAccuracyPct, MetricTimeMoving,
}

var metricFields = map[string]func(m *CanonicalMatch) **float64{
	MetricSkill:       func(m *CanonicalMatch) **float64 { return &m.Skill },
	MetricKD:          func(m *CanonicalMatch) **float64 { return &m.KDRatio },
	MetricKills:       func(m *CanonicalMatch) **float64 { return &m.Kills },
	MetricEKIAD:       func(m *CanonicalMatch) **float64 { return &m.EKIAOverD },
	MetricEKIA:        func(m *CanonicalMatch) **float64 { return &m.EKIA },
	MetricDeaths:      func(m *CanonicalMatch) **float64 { return &m.Deaths },
	MetricDamageDone:  func(m *CanonicalMatch) **float64 { return &m.DamageDone },
	MetricDamageTaken: func(m *CanonicalMatch) **float64 { return &m.DamageTaken },
	MetricAssists:     func(m *CanonicalMatch) **float64 { return &m.Assists },
	MetricScore:       func(m *CanonicalMatch) **float64 { return &m.Score },
	MetricHeadshotPct: func(m *CanonicalMatch) **float64 { return &m.HeadshotPct },
	MetricAccuracyPct: func(m *CanonicalMatch) **float64 { return &m.AccuracyPct },
	MetricTimeMoving:  func(m *CanonicalMatch) **float64 { return &m.PctTimeMoving },
	MetricHeadshots:   func(m *CanonicalMatch) **float64 { return &m.Headshots },
	MetricShots:       func(m *CanonicalMatch) **float64 { return &m.Shots },
	MetricHits:        func(m *CanonicalMatch) **float64 { return &m.Hits },
	MetricTotalXP:     func(m *CanonicalMatch) **float64 { return &m.TotalXP },
	MetricScoreXP:     func(m *CanonicalMatch) **float64 { return &m.ScoreXP },
	MetricChallengeXP: func(m *CanonicalMatch) **float64 { return &m.ChallengeXP },
	MetricMatchXP:     func(m *CanonicalMatch) **float64 { return &m.MatchXP },
	MetricMedalXP:     func(m *CanonicalMatch) **float64 { return &m.MedalXP },
}

// IsMetric reports whether name is a known numeric metric.
func IsMetric(name string) bool {
	if name == MetricOutcome {
		return true
	}
	_, ok := metricFields[name]
	return ok
}

// MetricNames returns every known metric, preferred ones first.
func MetricNames() []string {
	names := make([]string, 0, len(metricFields)+1)
	names = append(names, MetricOutcome)
	for n := range metricFields {
		names = append(names, n)
	}
	SortMetrics(names)
	return names
}

// SortMetrics orders names by PreferredMetricOrder, then alphabetically.
func SortMetrics(names []string) {
	rank := make(map[string]int, len(PreferredMetricOrder))
	for i, n := range PreferredMetricOrder {
		rank[n] = i
	}
	sort.SliceStable(names, func(i, j int) bool {
		ri, iok := rank[names[i]]
		rj, jok := rank[names[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return names[i] < names[j]
		}
	})
}

// Metric returns the named metric's value and whether it is defined (present
// and not NaN). Match Outcome reads as 1 for a win, 0 for a loss, undefined
// when unknown.
func (m *CanonicalMatch) Metric(name string) (float64, bool) {
	if name == MetricOutcome {
		switch m.Outcome {
		case OutcomeWin:
			return 1, true
		case OutcomeLoss:
			return 0, true
		default:
			return 0, false
		}
	}
	get, ok := metricFields[name]
	if !ok {
		return 0, false
	}
	p := *get(m)
	if p == nil || math.IsNaN(*p) {
		return 0, false
	}
	return *p, true
}

// SetMetric assigns a numeric metric by display name. It reports false for
// names that are not numeric fields (including Match Outcome).
func (m *CanonicalMatch) SetMetric(name string, v *float64) bool {
	get, ok := metricFields[name]
	if !ok {
		return false
	}
	*get(m) = v
	return true
}

// FillMissing sets every absent numeric field to v.
func (m *CanonicalMatch) FillMissing(v float64) {
	for _, get := range metricFields {
		if p := get(m); *p == nil {
			*p = Float(v)
		}
	}
}
