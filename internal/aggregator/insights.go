package aggregator

import (
	"fmt"
	"math"

	"github.com/pable/go-cod-stats/internal/model"
)

// RecentWindow is the number of most recent matches used for form and streak.
const RecentWindow = 10

// MaxInsights caps the number of quick insights.
const MaxInsights = 4

// Summary is the headline stats block for a view.
type Summary struct {
	Metric    string  `json:"metric"`
	Games     int     `json:"games"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	WinRate   float64 `json:"winRate"`
	AvgMetric Float   `json:"avgMetric"`
}

// SummaryOf computes the headline stats for metric. Games counts decided
// matches only; AvgMetric is NaN when metric is never defined.
func SummaryOf(data []*model.CanonicalMatch, metric string) Summary {
	wl := WinLossCounts(data)
	return Summary{
		Metric:    metric,
		Games:     wl.Total(),
		Wins:      wl.Wins,
		Losses:    wl.Losses,
		WinRate:   round1(wl.WinRate()),
		AvgMetric: Float(Average(data, metric)),
	}
}

// InsightKind classifies an insight for display.
type InsightKind string

const (
	InsightPositive InsightKind = "positive"
	InsightWarning  InsightKind = "warning"
	InsightTip      InsightKind = "tip"
	InsightNeutral  InsightKind = "neutral"
)

// Insight is one sentence of coaching feedback.
type Insight struct {
	Kind InsightKind `json:"kind"`
	Text string      `json:"text"`
}

// Insights derives up to MaxInsights observations from a chronologically
// ordered view.
func Insights(data []*model.CanonicalMatch) []Insight {
	if len(data) == 0 {
		return nil
	}
	var out []Insight
	add := func(k InsightKind, format string, args ...interface{}) {
		out = append(out, Insight{Kind: k, Text: fmt.Sprintf(format, args...)})
	}

	winRate := WinLossCounts(data).WinRate()
	recent := data
	if len(recent) > RecentWindow {
		recent = recent[len(recent)-RecentWindow:]
	}
	recentRate := WinLossCounts(recent).WinRate()

	switch {
	case recentRate > winRate+10:
		add(InsightPositive, "You're on fire! Recent win rate (%.0f%%) is up %.0f%% from your average.",
			recentRate, recentRate-winRate)
	case recentRate < winRate-10:
		add(InsightWarning, "Recent slump detected. Win rate dropped %.0f%%. Take a break or review your playstyle.",
			winRate-recentRate)
	default:
		add(InsightNeutral, "Consistent performance! Your recent win rate (%.0f%%) matches your overall average.",
			recentRate)
	}

	avgKD := Average(data, model.MetricKD)
	var wins, losses []*model.CanonicalMatch
	for _, m := range data {
		switch m.Outcome {
		case model.OutcomeWin:
			wins = append(wins, m)
		case model.OutcomeLoss:
			losses = append(losses, m)
		}
	}
	kdWins, kdLosses := Average(wins, model.MetricKD), Average(losses, model.MetricKD)
	switch {
	case math.IsNaN(avgKD):
	case avgKD < 1.0:
		add(InsightTip, "Focus on staying alive. Your K/D (%.2f) suggests playing more conservatively might help.", avgKD)
	case avgKD > 1.3:
		add(InsightPositive, "Strong gunfights! Your %.2f K/D shows you're winning most engagements.", avgKD)
	case !math.IsNaN(kdWins) && !math.IsNaN(kdLosses) && kdWins > kdLosses+0.3:
		add(InsightPositive, "You play better in wins (%.2f K/D) vs losses (%.2f). Keep that momentum!", kdWins, kdLosses)
	}

	var ranked []*model.CanonicalMatch
	for _, m := range data {
		if m.Ranked {
			ranked = append(ranked, m)
		}
	}
	if len(ranked) > 5 {
		rr := WinLossCounts(ranked).WinRate()
		switch {
		case rr > 55:
			add(InsightPositive, "Ranked dominance! %.0f%% win rate in ranked shows you're competitive.", rr)
		case rr < 45:
			add(InsightTip, "Ranked is tough (%.0f%% WR). Study pro gameplay or focus on one mode to improve.", rr)
		}
	}

	modes := map[string]bool{}
	for _, m := range data {
		modes[m.GameType] = true
	}
	switch {
	case len(modes) == 1:
		add(InsightTip, "You're specializing in one mode. Try others to develop diverse skills!")
	case len(modes) >= 5:
		add(InsightNeutral, "Versatile player! You've played %d different game modes.", len(modes))
	}

	if len(out) < 3 {
		avgScore := Average(data, model.MetricScore)
		if math.IsNaN(avgScore) {
			add(InsightNeutral, "You've logged %d matches.", len(data))
		} else {
			add(InsightNeutral, "You've logged %d matches with an average score of %.0f.", len(data), avgScore)
		}
	}

	if len(out) > MaxInsights {
		out = out[:MaxInsights]
	}
	return out
}

// Streak is the current trailing run of results among the recent matches.
type Streak struct {
	Kind   model.Outcome   `json:"kind"`
	Length int             `json:"length"`
	Recent []model.Outcome `json:"recent"`
}

// CurrentStreak walks the last RecentWindow matches backwards. An unknown
// outcome ends the streak; if the latest match is unknown the streak is empty.
func CurrentStreak(data []*model.CanonicalMatch) Streak {
	recent := data
	if len(recent) > RecentWindow {
		recent = recent[len(recent)-RecentWindow:]
	}
	s := Streak{Recent: make([]model.Outcome, len(recent))}
	for i, m := range recent {
		s.Recent[i] = m.Outcome
	}
	for i := len(recent) - 1; i >= 0; i-- {
		o := recent[i].Outcome
		if o == model.OutcomeUnknown {
			break
		}
		if s.Length == 0 {
			s.Kind = o
		} else if o != s.Kind {
			break
		}
		s.Length++
	}
	return s
}

// Consistency grades how stable K/D is across matches.
type Consistency struct {
	KD    Spread `json:"kd"`
	Skill Spread `json:"skill"`
	Score Spread `json:"score"`
	// HasSkill is false when fewer than two positive skill values exist.
	HasSkill bool `json:"hasSkill"`
	// Score100 is clamp(100-KD.CV, 0, 100); NaN when the K/D mean is not
	// positive.
	Score100  Float  `json:"consistencyScore"`
	Grade     string `json:"grade"`
	Histogram []Bin  `json:"histogram"`
}

// ConsistencyBins is the K/D histogram resolution.
const ConsistencyBins = 20

// ConsistencyOf considers only positive K/D, skill and score values.
func ConsistencyOf(data []*model.CanonicalMatch) Consistency {
	kd := positive(Values(data, model.MetricKD))
	skill := positive(Values(data, model.MetricSkill))
	score := positive(Values(data, model.MetricScore))

	c := Consistency{
		KD:        SpreadOf(kd),
		Skill:     SpreadOf(skill),
		Score:     SpreadOf(score),
		HasSkill:  len(skill) > 1,
		Score100:  Float(math.NaN()),
		Grade:     "N/A",
		Histogram: Histogram(kd, ConsistencyBins),
	}
	if c.KD.N > 0 && c.KD.Mean > 0 {
		score := math.Max(0, math.Min(100, 100-c.KD.CV))
		c.Score100 = Float(score)
		c.Grade = Grade(score)
	}
	return c
}

// Grade maps a 0-100 consistency score to a letter.
func Grade(score float64) string {
	switch {
	case score >= 80:
		return "S"
	case score >= 70:
		return "A"
	case score >= 60:
		return "B"
	case score >= 50:
		return "C"
	default:
		return "D"
	}
}

func positive(vs []float64) []float64 {
	out := vs[:0:0]
	for _, v := range vs {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}
