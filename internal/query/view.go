// Package query selects subsets of the canonical match set: the filtered
// view behind every chart, the paged match table, and selector options.
package query

import (
	"sort"

	"github.com/pable/go-cod-stats/internal/model"
)

// OutlierCap is the ratio above which K/D and EKIA/D rows are treated as
// corrupt and excluded from views on those metrics.
const OutlierCap = 30

// MatchesMode reports whether gameType satisfies a game-mode selector.
func MatchesMode(gameType, sel string) bool {
	switch sel {
	case "", model.AllModes:
		return true
	case model.RankedSel:
		return model.IsRankedMode(gameType)
	default:
		return gameType == sel
	}
}

// MatchesMap reports whether m satisfies a map selector.
func MatchesMap(m, sel string) bool {
	return sel == "" || sel == model.AllMaps || m == sel
}

// FilteredView returns the records matching q in input order. The result
// shares records with all; nothing is copied.
func FilteredView(all []*model.CanonicalMatch, q model.Query) []*model.CanonicalMatch {
	metric := q.Metric
	if metric == "" {
		metric = model.DefaultMetric
	}
	capped := metric == model.MetricKD || metric == model.MetricEKIAD

	out := make([]*model.CanonicalMatch, 0, len(all))
	for _, m := range all {
		if !MatchesMode(m.GameType, q.Gamemode) || !MatchesMap(m.Map, q.Map) {
			continue
		}
		v, ok := m.Metric(metric)
		if !ok {
			continue
		}
		if capped && v > OutlierCap {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Options lists the selector choices present in a match set.
type Options struct {
	Gamemodes []string `json:"gamemodes"`
	Maps      []string `json:"maps"`
	Metrics   []string `json:"metrics"`
}

// BuildOptions derives selector options. Game modes are limited to the
// ranked set; maps are every distinct map; metrics are those defined on at
// least one record, in preferred order.
func BuildOptions(all []*model.CanonicalMatch) Options {
	opts := Options{
		Gamemodes: []string{model.AllModes, model.RankedSel},
		Maps:      []string{model.AllMaps},
	}
	seenMode := map[string]bool{}
	seenMap := map[string]bool{}
	for _, m := range all {
		if model.IsRankedMode(m.GameType) && !seenMode[m.GameType] {
			seenMode[m.GameType] = true
			opts.Gamemodes = append(opts.Gamemodes, m.GameType)
		}
		if m.Map != "" && !seenMap[m.Map] {
			seenMap[m.Map] = true
			opts.Maps = append(opts.Maps, m.Map)
		}
	}
	sort.Strings(opts.Maps[1:])

	for _, name := range model.MetricNames() {
		for _, m := range all {
			if _, ok := m.Metric(name); ok {
				opts.Metrics = append(opts.Metrics, name)
				break
			}
		}
	}
	return opts
}
