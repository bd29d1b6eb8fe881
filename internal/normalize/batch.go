package normalize

import (
	"sort"

	"github.com/pable/go-cod-stats/internal/logging"
	"github.com/pable/go-cod-stats/internal/model"
)

// ValidityFunc decides whether a normalized match is kept.
type ValidityFunc func(m *model.CanonicalMatch) bool

// IsValidMatch keeps a match when total XP is absent or positive. Zero-XP
// matches are bot games.
func IsValidMatch(m *model.CanonicalMatch) bool {
	return m.TotalXP == nil || *m.TotalXP > 0
}

// IsValidUpload is the looser upload check: only negative XP is rejected,
// since uploaded sample data commonly carries no XP at all.
func IsValidUpload(m *model.CanonicalMatch) bool {
	return m.TotalXP == nil || *m.TotalXP >= 0
}

// ValidityFor returns the validity predicate applied to src.
func ValidityFor(src model.Source) ValidityFunc {
	if src == model.SourceUpload {
		return IsValidUpload
	}
	return IsValidMatch
}

// Stats counts what happened to a batch.
type Stats struct {
	Input       int
	Malformed   int
	Invalid     int
	Synthesized int
}

// Kept is the number of records that survived the batch.
func (s Stats) Kept() int { return s.Input - s.Malformed - s.Invalid }

// APIBatch normalizes, filters and sorts a batch of API or upload records.
func (n *Normalizer) APIBatch(recs []model.RawAPIRecord) ([]model.CanonicalMatch, Stats) {
	out := make([]model.CanonicalMatch, 0, len(recs))
	st := Stats{Input: len(recs)}
	for i, r := range recs {
		m, err := n.FromAPI(r)
		if n.keep(i, m, err, &st) {
			out = append(out, m)
		}
	}
	return finish(out), st
}

// CSVBatch normalizes, filters and sorts CSV rows.
func (n *Normalizer) CSVBatch(rows []model.RawCSVRow) ([]model.CanonicalMatch, Stats) {
	out := make([]model.CanonicalMatch, 0, len(rows))
	st := Stats{Input: len(rows)}
	for i, r := range rows {
		m, err := n.FromCSV(r)
		if n.keep(i, m, err, &st) {
			out = append(out, m)
		}
	}
	return finish(out), st
}

func (n *Normalizer) keep(i int, m model.CanonicalMatch, err error, st *Stats) bool {
	if err != nil {
		st.Malformed++
		logging.Warn().Err(err).Int("row", i+1).Str("source", n.Source.String()).Msg("dropping malformed record")
		return false
	}
	if m.TimestampSynthesized {
		st.Synthesized++
		logging.Warn().Int("row", i+1).Str("source", n.Source.String()).Msg("missing or invalid timestamp, using current time")
	}
	if !ValidityFor(n.Source)(&m) {
		st.Invalid++
		return false
	}
	return true
}

func finish(ms []model.CanonicalMatch) []model.CanonicalMatch {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].Timestamp.Before(ms[j].Timestamp)
	})
	return ms
}
