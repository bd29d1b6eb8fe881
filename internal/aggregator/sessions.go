package aggregator

import (
	"sort"
	"time"

	"github.com/pable/go-cod-stats/internal/model"
)

// Default session parameters.
const (
	DefaultSessionGap     = 2 * time.Hour
	DefaultMinSessionSize = 3
)

// Sessions groups matches into runs whose consecutive gaps are at most gap.
// Runs shorter than minSize are dropped. The input is not modified.
func Sessions(data []*model.CanonicalMatch, gap time.Duration, minSize int) [][]*model.CanonicalMatch {
	if len(data) == 0 {
		return nil
	}
	sorted := append([]*model.CanonicalMatch(nil), data...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var out [][]*model.CanonicalMatch
	cur := []*model.CanonicalMatch{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp.Sub(sorted[i-1].Timestamp) <= gap {
			cur = append(cur, sorted[i])
			continue
		}
		if len(cur) >= minSize {
			out = append(out, cur)
		}
		cur = []*model.CanonicalMatch{sorted[i]}
	}
	if len(cur) >= minSize {
		out = append(out, cur)
	}
	return out
}

// FatiguePoint is the average K/D at one position within a session.
type FatiguePoint struct {
	GameNum int   `json:"gameNum"`
	AvgKD   Float `json:"avgKd"`
	Count   int   `json:"count"`
}

// FatigueCurve averages K/D by game number across sessions. Positions
// reached by fewer than minSamples sessions are omitted.
func FatigueCurve(sessions [][]*model.CanonicalMatch, minSamples int) []FatiguePoint {
	longest := 0
	for _, s := range sessions {
		if len(s) > longest {
			longest = len(s)
		}
	}
	var out []FatiguePoint
	for pos := 1; pos <= longest; pos++ {
		var at []*model.CanonicalMatch
		for _, s := range sessions {
			if len(s) >= pos {
				at = append(at, s[pos-1])
			}
		}
		if len(at) < minSamples {
			continue
		}
		out = append(out, FatiguePoint{GameNum: pos, AvgKD: Float(Average(at, model.MetricKD)), Count: len(at)})
	}
	return out
}

// SessionSummary describes one session.
type SessionSummary struct {
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Games   int           `json:"games"`
	Record  WinLoss       `json:"record"`
	AvgKD   Float         `json:"avgKd"`
	Elapsed time.Duration `json:"elapsed"`
}

// Summarize reduces sessions to per-session summaries.
func Summarize(sessions [][]*model.CanonicalMatch) []SessionSummary {
	out := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		first, last := s[0].Timestamp, s[len(s)-1].Timestamp
		out = append(out, SessionSummary{
			Start:   first,
			End:     last,
			Games:   len(s),
			Record:  WinLossCounts(s),
			AvgKD:   Float(Average(s, model.MetricKD)),
			Elapsed: last.Sub(first),
		})
	}
	return out
}
