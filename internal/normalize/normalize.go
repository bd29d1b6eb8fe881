// Package normalize converts raw API, CSV and upload records into
// model.CanonicalMatch values and applies the validity filter.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pable/go-cod-stats/internal/metric"
	"github.com/pable/go-cod-stats/internal/model"
)

// ErrEmptyRecord is returned for records that carry no match fields at all.
var ErrEmptyRecord = errors.New("record has no match fields")

// CSVTimeLayout is the human date format of the exported CSV.
const CSVTimeLayout = "2006-01-02 15:04"

// Normalizer maps raw records of one source into canonical matches.
//
// TrustPrecomputedMetrics controls whether source-supplied K/D, EKIA, EKIA/D,
// headshot % and the ranked flag are kept as-is or recomputed from raw counts.
// The API and upload sources are trusted; the CSV source is not.
type Normalizer struct {
	Source                  model.Source
	TrustPrecomputedMetrics bool
	// Now supplies the substitute instant for unresolvable timestamps.
	Now func() time.Time
}

// New returns a Normalizer with the default trust policy for src.
func New(src model.Source) *Normalizer {
	return &Normalizer{
		Source:                  src,
		TrustPrecomputedMetrics: src != model.SourceCSV,
		Now:                     time.Now,
	}
}

// FromAPI converts one API or upload record. A non-nil error means the record
// must be skipped; it never panics.
func (n *Normalizer) FromAPI(r model.RawAPIRecord) (m model.CanonicalMatch, err error) {
	defer recoverInto(&err)

	if isEmptyAPI(r) {
		return m, ErrEmptyRecord
	}

	ts, ok := ParseTimestamp(r.MatchStartTimestamp.S)
	if !ok && n.Source == model.SourceUpload {
		ts, ok = ParseTimestamp(r.UTCTimestamp.S)
	}
	n.setTimestamp(&m, ts, ok)

	m.Source = n.Source
	m.GameType = r.GameType.S
	m.Map = r.Map.S
	m.Team = r.Team.S
	m.Operator = r.Operator.S
	m.OperatorSkin = r.OperatorSkin.S
	m.MatchOutcomeRaw = r.MatchOutcome.S
	m.Outcome = model.ParseOutcome(r.MatchOutcome.S)
	m.Ranked = r.IsRanked.V

	m.Skill = r.Skill.Ptr()
	m.Score = r.Score.Ptr()
	m.Kills = r.Kills.Ptr()
	m.Deaths = r.Deaths.Ptr()
	m.Assists = r.Assists.Ptr()
	m.Headshots = r.Headshots.Ptr()
	m.Shots = r.Shots.Ptr()
	m.Hits = r.Hits.Ptr()
	m.DamageDone = r.DamageDone.Ptr()
	m.DamageTaken = r.DamageTaken.Ptr()
	m.KDRatio = r.KDRatio.Ptr()
	m.EKIA = r.EKIA.Ptr()
	m.EKIAOverD = r.EKIADRatio.Ptr()
	m.HeadshotPct = r.HeadshotPercentage.Ptr()
	m.AccuracyPct = r.AccuracyPercentage.Ptr()
	m.TotalXP = r.TotalXP.Ptr()
	m.ScoreXP = r.ScoreXP.Ptr()
	m.ChallengeXP = r.ChallengeXP.Ptr()
	m.MatchXP = r.MatchXP.Ptr()
	m.MedalXP = r.MedalXP.Ptr()
	m.PctTimeMoving = r.PercentageOfTimeMoving.Ptr()

	if n.Source == model.SourceUpload {
		m.FillMissing(0)
	}
	n.derive(&m)
	return m, nil
}

// FromCSV converts one CSV row. Every column holding a number is coerced;
// the time-moving column may carry a trailing '%'.
func (n *Normalizer) FromCSV(r model.RawCSVRow) (m model.CanonicalMatch, err error) {
	defer recoverInto(&err)

	if len(r) == 0 {
		return m, ErrEmptyRecord
	}

	raw, _ := r.Lookup(model.ColTimestamp)
	ts, ok := ParseTimestamp(raw)
	n.setTimestamp(&m, ts, ok)

	m.Source = n.Source
	m.GameType, _ = r.Lookup(model.ColGameType)
	m.Map, _ = r.Lookup(model.ColMap)
	m.Team, _ = r.Lookup(model.ColTeam)
	m.Operator, _ = r.Lookup(model.ColOperator)
	m.OperatorSkin, _ = r.Lookup(model.ColOperatorSkin)
	if out, ok := r.Lookup(model.ColMatchOutcome); ok {
		m.MatchOutcomeRaw = out
		m.Outcome = model.ParseOutcome(out)
	}
	if v, ok := r.Lookup("isRanked"); ok {
		m.Ranked = strings.EqualFold(v, "true") || v == "1"
	}

	fields := 0
	for col := range r {
		v, _ := r.Lookup(col)
		if col == model.MetricTimeMoving {
			v = strings.TrimSpace(strings.TrimSuffix(v, "%"))
		}
		f, ok := parseNumber(v)
		if !ok {
			continue
		}
		if m.SetMetric(col, &f) {
			fields++
		}
	}
	if fields == 0 && m.GameType == "" && m.Map == "" {
		return model.CanonicalMatch{}, ErrEmptyRecord
	}

	n.derive(&m)
	return m, nil
}

// derive fills or recomputes the derived ratios and the ranked flag.
func (n *Normalizer) derive(m *model.CanonicalMatch) {
	if m.AccuracyPct == nil {
		m.AccuracyPct = metric.AccuracyPercent(m.Hits, m.Shots)
	}
	if n.TrustPrecomputedMetrics {
		return
	}

	kills := model.Value(m.Kills)
	deaths := model.Value(m.Deaths)
	// without kills the kill ratios are undefined, not zero
	m.KDRatio, m.EKIA, m.EKIAOverD = nil, nil, nil
	if m.Kills != nil {
		kd := metric.KD(kills, deaths)
		m.KDRatio = &kd
		ekia := metric.EKIA(kills, model.Value(m.Assists))
		m.EKIA = &ekia
		ekiad := metric.RatioWithCap(ekia, deaths, metric.DefaultCap)
		m.EKIAOverD = &ekiad
	}

	if hs := metric.HeadshotPercent(m.Headshots, kills); hs != nil {
		m.HeadshotPct = hs
	}
	m.Ranked = model.IsRankedMode(m.GameType)
}

func (n *Normalizer) setTimestamp(m *model.CanonicalMatch, ts time.Time, ok bool) {
	if ok {
		m.Timestamp = ts
		return
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	m.Timestamp = now().UTC()
	m.TimestampSynthesized = true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	CSVTimeLayout,
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 variants, the CSV layout and epoch seconds
// or milliseconds. Zone-less values are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return time.Time{}, false
		}
		if v > 1e11 {
			return time.UnixMilli(int64(v)).UTC(), true
		}
		return time.Unix(int64(v), 0).UTC(), true
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isEmptyAPI(r model.RawAPIRecord) bool {
	return !r.GameType.Set && !r.Map.Set && !r.Kills.Set && !r.Deaths.Set &&
		!r.Skill.Set && !r.Score.Set && !r.TotalXP.Set && !r.MatchOutcome.Set
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("normalize record: %v", r)
	}
}
