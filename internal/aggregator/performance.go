package aggregator

import (
	"sort"
	"time"

	"github.com/pable/go-cod-stats/internal/model"
)

// MapStat is per-map performance.
type MapStat struct {
	Map     string  `json:"map"`
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"winRate"`
	AvgKD   Float   `json:"avgKd"`
}

// MapPerformance groups by map, sorted by win rate descending then name.
func MapPerformance(data []*model.CanonicalMatch) []MapStat {
	groups := groupBy(data, func(m *model.CanonicalMatch) string { return m.Map })
	out := make([]MapStat, 0, len(groups))
	for name, ms := range groups {
		wl := WinLossCounts(ms)
		out = append(out, MapStat{
			Map:     name,
			Matches: len(ms),
			Wins:    wl.Wins,
			WinRate: wl.WinRate(),
			AvgKD:   Float(Average(ms, model.MetricKD)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].Map < out[j].Map
	})
	return out
}

// HourStat is performance within one hour of the day.
type HourStat struct {
	Hour    int     `json:"hour"`
	Matches int     `json:"matches"`
	WinRate float64 `json:"winRate"`
	AvgKD   Float   `json:"avgKd"`
}

// HourOfDay buckets matches by the hour of their timestamp in loc, sorted by
// hour. Empty hours are omitted.
func HourOfDay(data []*model.CanonicalMatch, loc *time.Location) []HourStat {
	if loc == nil {
		loc = time.UTC
	}
	var buckets [24][]*model.CanonicalMatch
	for _, m := range data {
		h := m.Timestamp.In(loc).Hour()
		buckets[h] = append(buckets[h], m)
	}
	var out []HourStat
	for h, ms := range buckets {
		if len(ms) == 0 {
			continue
		}
		out = append(out, HourStat{
			Hour:    h,
			Matches: len(ms),
			WinRate: WinLossCounts(ms).WinRate(),
			AvgKD:   Float(Average(ms, model.MetricKD)),
		})
	}
	return out
}

// GridCell is the win rate of one map x mode combination.
type GridCell struct {
	Map     string  `json:"map"`
	Mode    string  `json:"mode"`
	Matches int     `json:"matches"`
	WinRate float64 `json:"winRate"`
	Ranked  bool    `json:"ranked"`
}

// WinRateGrid returns a cell for every map x main-mode pair with matches,
// ordered by map then mode.
func WinRateGrid(data []*model.CanonicalMatch) []GridCell {
	type key struct{ m, mode string }
	groups := map[key][]*model.CanonicalMatch{}
	for _, m := range data {
		if !contains(model.MainModes, m.GameType) {
			continue
		}
		k := key{m.Map, m.GameType}
		groups[k] = append(groups[k], m)
	}
	out := make([]GridCell, 0, len(groups))
	for k, ms := range groups {
		out = append(out, GridCell{
			Map:     k.m,
			Mode:    k.mode,
			Matches: len(ms),
			WinRate: WinLossCounts(ms).WinRate(),
			Ranked:  model.IsRankedMap(k.m) && model.IsRankedMode(k.mode),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Map != out[j].Map {
			return out[i].Map < out[j].Map
		}
		return out[i].Mode < out[j].Mode
	})
	return out
}

// ModeStat is a ranked map's record in one ranked mode.
type ModeStat struct {
	Mode    string  `json:"mode"`
	Matches int     `json:"matches"`
	WinRate float64 `json:"winRate"`
}

// VetoMap is a ranked map's standing in the veto guide.
type VetoMap struct {
	Map      string     `json:"map"`
	Matches  int        `json:"matches"`
	WinRate  float64    `json:"winRate"`
	AvgKD    Float      `json:"avgKd"`
	AvgScore Float      `json:"avgScore"`
	Score    float64    `json:"score"`
	Modes    []ModeStat `json:"modes"`
}

// Veto is the ban/protect recommendation. Ban holds the worst maps first,
// Protect the best first; both are empty when fewer than two ranked maps
// have been played.
type Veto struct {
	Maps    []VetoMap `json:"maps"`
	Ban     []VetoMap `json:"ban"`
	Protect []VetoMap `json:"protect"`
}

// VetoScore weights win rate, K/D and score into one ranking value.
func VetoScore(winRate, avgKD, avgScore float64) float64 {
	return winRate*0.5 + avgKD*20 + avgScore/100
}

// rankedOnly keeps matches on a ranked map in a ranked mode.
func rankedOnly(data []*model.CanonicalMatch) []*model.CanonicalMatch {
	var out []*model.CanonicalMatch
	for _, m := range data {
		if model.IsRankedMap(m.Map) && model.IsRankedMode(m.GameType) {
			out = append(out, m)
		}
	}
	return out
}

// VetoGuide ranks the ranked map pool. Maps.Score ascending; missing K/D or
// score averages count as 0 in the composite.
func VetoGuide(data []*model.CanonicalMatch) Veto {
	ranked := rankedOnly(data)
	var v Veto
	for _, name := range model.RankedMaps {
		var ms []*model.CanonicalMatch
		for _, m := range ranked {
			if m.Map == name {
				ms = append(ms, m)
			}
		}
		if len(ms) == 0 {
			continue
		}
		vm := VetoMap{
			Map:      name,
			Matches:  len(ms),
			WinRate:  WinLossCounts(ms).WinRate(),
			AvgKD:    Float(Average(ms, model.MetricKD)),
			AvgScore: Float(Average(ms, model.MetricScore)),
		}
		vm.Score = VetoScore(vm.WinRate, zeroNaN(float64(vm.AvgKD)), zeroNaN(float64(vm.AvgScore)))
		for _, mode := range model.RankedModes {
			var mm []*model.CanonicalMatch
			for _, m := range ms {
				if m.GameType == mode {
					mm = append(mm, m)
				}
			}
			if len(mm) > 0 {
				vm.Modes = append(vm.Modes, ModeStat{Mode: mode, Matches: len(mm), WinRate: WinLossCounts(mm).WinRate()})
			}
		}
		v.Maps = append(v.Maps, vm)
	}
	sort.SliceStable(v.Maps, func(i, j int) bool { return v.Maps[i].Score < v.Maps[j].Score })
	if len(v.Maps) < 2 {
		return v
	}
	n := 2
	v.Ban = append(v.Ban, v.Maps[:n]...)
	for i := len(v.Maps) - 1; i >= len(v.Maps)-n; i-- {
		v.Protect = append(v.Protect, v.Maps[i])
	}
	return v
}

// RankedOverview is the aggregate record on ranked maps in ranked modes.
type RankedOverview struct {
	Matches int     `json:"matches"`
	Record  WinLoss `json:"record"`
	WinRate float64 `json:"winRate"`
	AvgKD   Float   `json:"avgKd"`
}

// Ranked summarizes ranked play.
func Ranked(data []*model.CanonicalMatch) RankedOverview {
	ranked := rankedOnly(data)
	wl := WinLossCounts(ranked)
	return RankedOverview{
		Matches: len(ranked),
		Record:  wl,
		WinRate: wl.WinRate(),
		AvgKD:   Float(Average(ranked, model.MetricKD)),
	}
}

// TypeAverage is the mean of a metric within one game type.
type TypeAverage struct {
	GameType string  `json:"gameType"`
	Value    float64 `json:"value"`
	Count    int     `json:"count"`
}

// GameTypeAverages returns the mean of name per game type, in first-seen
// order. Game types where the metric is never defined report 0.
func GameTypeAverages(data []*model.CanonicalMatch, name string) []TypeAverage {
	var order []string
	groups := map[string][]*model.CanonicalMatch{}
	for _, m := range data {
		if _, ok := groups[m.GameType]; !ok {
			order = append(order, m.GameType)
		}
		groups[m.GameType] = append(groups[m.GameType], m)
	}
	out := make([]TypeAverage, 0, len(order))
	for _, gt := range order {
		ms := groups[gt]
		out = append(out, TypeAverage{GameType: gt, Value: zeroNaN(Average(ms, name)), Count: len(ms)})
	}
	return out
}

// Donut is the win/loss split for the donut chart.
type Donut struct {
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"`
}

// WinLossDonut counts wins and losses, optionally restricted to records
// flagged ranked.
func WinLossDonut(data []*model.CanonicalMatch, rankedFlagOnly bool) Donut {
	var sel []*model.CanonicalMatch
	for _, m := range data {
		if rankedFlagOnly && !m.Ranked {
			continue
		}
		sel = append(sel, m)
	}
	wl := WinLossCounts(sel)
	return Donut{Wins: wl.Wins, Losses: wl.Losses, WinRate: round1(wl.WinRate())}
}

func groupBy(data []*model.CanonicalMatch, key func(*model.CanonicalMatch) string) map[string][]*model.CanonicalMatch {
	out := map[string][]*model.CanonicalMatch{}
	for _, m := range data {
		k := key(m)
		out[k] = append(out[k], m)
	}
	return out
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
